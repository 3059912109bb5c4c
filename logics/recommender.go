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

package logics

import (
	"github.com/gorse-io/movierec/dataset"
	"github.com/juju/errors"
)

// Options controls how the recommender is built.
type Options struct {
	// NumJobs is the number of goroutines computing similarity matrices. Values <= 1
	// build sequentially.
	NumJobs int
}

// ContentRecommendation is a movie similar to a seed movie by genres.
type ContentRecommendation struct {
	MovieId    int      `json:"movie_id"`
	Title      string   `json:"title"`
	Genres     []string `json:"genres"`
	Similarity float64  `json:"similarity"`
}

// UserRecommendation is an unrated movie with its predicted rating for a user.
type UserRecommendation struct {
	MovieId         int      `json:"movie_id"`
	Title           string   `json:"title"`
	Genres          []string `json:"genres"`
	PredictedRating float64  `json:"predicted_rating"`
}

// RatedMovie is a movie with its rating count and mean rating.
type RatedMovie struct {
	MovieId     int      `json:"movie_id"`
	Title       string   `json:"title"`
	Genres      []string `json:"genres"`
	RatingCount int      `json:"rating_count"`
	RatingMean  float64  `json:"rating_mean"`
}

// Recommender serves content-based, collaborative and top-rated recommendations. All
// indices are built by NewRecommender and never modified afterwards, so queries are safe
// for concurrent use.
type Recommender struct {
	catalog       *dataset.Catalog
	ratings       *dataset.RatingLog
	content       *contentIndex
	collaborative *collaborativeIndex
	stats         []movieStats
}

// NewRecommender builds the content similarity index from the catalog and the user
// similarity index from the rating log.
func NewRecommender(catalog *dataset.Catalog, ratings *dataset.RatingLog, opts *Options) (*Recommender, error) {
	if catalog == nil {
		return nil, errors.NotValidf("nil catalog")
	}
	if ratings == nil {
		return nil, errors.NotValidf("nil rating log")
	}
	numJobs := 1
	if opts != nil && opts.NumJobs > 1 {
		numJobs = opts.NumJobs
	}
	return &Recommender{
		catalog:       catalog,
		ratings:       ratings,
		content:       newContentIndex(catalog, numJobs),
		collaborative: newCollaborativeIndex(ratings, numJobs),
		stats:         newMovieStats(ratings),
	}, nil
}

// Catalog returns the movie catalog.
func (r *Recommender) Catalog() *dataset.Catalog {
	return r.catalog
}

// Ratings returns the rating log.
func (r *Recommender) Ratings() *dataset.RatingLog {
	return r.ratings
}

// SearchTitles returns every movie whose title contains the query case-insensitively, in
// catalog order.
func (r *Recommender) SearchTitles(query string) []dataset.Movie {
	rows := r.catalog.Search(query)
	movies := make([]dataset.Movie, len(rows))
	for i, row := range rows {
		movies[i] = r.catalog.Movie(row)
	}
	return movies
}
