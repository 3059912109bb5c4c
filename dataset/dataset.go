// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Movie is a row of the movie catalog.
type Movie struct {
	MovieId int      `json:"movie_id"`
	Title   string   `json:"title"`
	Genres  []string `json:"genres"`
}

// Rating is a row of the rating log.
type Rating struct {
	UserId  int     `json:"user_id"`
	MovieId int     `json:"movie_id"`
	Rating  float64 `json:"rating"`
}

// Catalog is an immutable table of movies kept in load order.
type Catalog struct {
	movies []Movie
	index  map[int]int
}

// NewCatalog creates a catalog. Movie ids must be unique.
func NewCatalog(movies []Movie) (*Catalog, error) {
	index := make(map[int]int, len(movies))
	for i, movie := range movies {
		if _, exist := index[movie.MovieId]; exist {
			return nil, errors.NotValidf("duplicate movieId %d", movie.MovieId)
		}
		index[movie.MovieId] = i
	}
	return &Catalog{movies: movies, index: index}, nil
}

func (c *Catalog) Len() int {
	return len(c.movies)
}

// Movie returns the movie at a catalog row.
func (c *Catalog) Movie(i int) Movie {
	return c.movies[i]
}

func (c *Catalog) Movies() []Movie {
	return c.movies
}

// Row returns the catalog row of a movie id.
func (c *Catalog) Row(movieId int) (int, bool) {
	i, ok := c.index[movieId]
	return i, ok
}

// Find returns the first row, in catalog order, whose title contains the query
// case-insensitively.
func (c *Catalog) Find(query string) (int, bool) {
	query = strings.ToLower(query)
	for i, movie := range c.movies {
		if strings.Contains(strings.ToLower(movie.Title), query) {
			return i, true
		}
	}
	return -1, false
}

// Search returns all rows whose title contains the query case-insensitively.
func (c *Catalog) Search(query string) []int {
	query = strings.ToLower(query)
	var rows []int
	for i, movie := range c.movies {
		if strings.Contains(strings.ToLower(movie.Title), query) {
			rows = append(rows, i)
		}
	}
	return rows
}

// RatingLog is an immutable table of ratings.
type RatingLog struct {
	ratings []Rating
}

// NewRatingLog creates a rating log. A (userId, movieId) pair may only be rated once.
func NewRatingLog(ratings []Rating) (*RatingLog, error) {
	pairs := mapset.NewThreadUnsafeSetWithSize[lo.Tuple2[int, int]](len(ratings))
	for _, rating := range ratings {
		if !pairs.Add(lo.Tuple2[int, int]{A: rating.UserId, B: rating.MovieId}) {
			return nil, errors.NotValidf("duplicate rating of movie %d by user %d", rating.MovieId, rating.UserId)
		}
	}
	return &RatingLog{ratings: ratings}, nil
}

func (l *RatingLog) Len() int {
	return len(l.ratings)
}

func (l *RatingLog) Ratings() []Rating {
	return l.ratings
}

// UserIds returns distinct user ids in ascending order.
func (l *RatingLog) UserIds() []int {
	return sortedUnique(lo.Map(l.ratings, func(r Rating, _ int) int { return r.UserId }))
}

// MovieIds returns distinct movie ids in ascending order.
func (l *RatingLog) MovieIds() []int {
	return sortedUnique(lo.Map(l.ratings, func(r Rating, _ int) int { return r.MovieId }))
}

func sortedUnique(ids []int) []int {
	ids = lo.Uniq(ids)
	slices.Sort(ids)
	return ids
}
