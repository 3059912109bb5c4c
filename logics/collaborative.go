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
	"github.com/gorse-io/movierec/common/floats"
	"github.com/gorse-io/movierec/common/heap"
	"github.com/gorse-io/movierec/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// collaborativeIndex holds the user×movie rating matrix and the user×user similarity
// matrix. Users and movies are ordered by ascending id. Unrated entries are 0, which is
// indistinguishable from a rating of 0.
type collaborativeIndex struct {
	users      *dataset.Dict[int]
	movies     []int
	ratings    [][]float32
	similarity Matrix
}

func newCollaborativeIndex(log *dataset.RatingLog, numJobs int) *collaborativeIndex {
	users := dataset.NewDict[int]()
	for _, userId := range log.UserIds() {
		users.Add(userId)
	}
	movies := log.MovieIds()
	columns := dataset.NewDict[int]()
	for _, movieId := range movies {
		columns.Add(movieId)
	}
	ratings := make([][]float32, users.Count())
	for i := range ratings {
		ratings[i] = make([]float32, len(movies))
	}
	for _, rating := range log.Ratings() {
		u, _ := users.Id(rating.UserId)
		m, _ := columns.Id(rating.MovieId)
		ratings[u][m] = float32(rating.Rating)
	}
	return &collaborativeIndex{
		users:      users,
		movies:     movies,
		ratings:    ratings,
		similarity: NewCosineMatrix(ratings, numJobs),
	}
}

// predict returns the similarity-weighted average rating of every movie for user u:
//
//	p(u, m) = Σ_v sim(u, v) r(v, m) / Σ_v sim(u, v)
//
// v ranges over all users including u itself. Predictions are 0 if the weights sum to 0.
func (c *collaborativeIndex) predict(u int) []float32 {
	predictions := make([]float32, len(c.movies))
	var total float32
	for v, weight := range c.similarity.Row(u) {
		if weight == 0 {
			continue
		}
		floats.MulConstAdd(c.ratings[v], weight, predictions)
		total += weight
	}
	if total == 0 {
		floats.Zero(predictions)
		return predictions
	}
	floats.MulConst(predictions, 1/total)
	return predictions
}

// UserSimilarity returns the cosine similarity between the rating vectors of two users.
func (r *Recommender) UserSimilarity(a, b int) (float32, error) {
	i, ok := r.collaborative.users.Id(a)
	if !ok {
		return 0, errors.NotFoundf("user %d", a)
	}
	j, ok := r.collaborative.users.Id(b)
	if !ok {
		return 0, errors.NotFoundf("user %d", b)
	}
	return r.collaborative.similarity.At(i, j), nil
}

// RecommendByUser predicts ratings of the movies a user has not rated and returns the k
// movies with the highest predictions. Ties keep ascending movie id order. Movies missing
// from the catalog are skipped.
func (r *Recommender) RecommendByUser(userId int, k int) ([]UserRecommendation, error) {
	u, ok := r.collaborative.users.Id(userId)
	if !ok {
		return nil, errors.NotFoundf("user %d", userId)
	}
	predictions := r.collaborative.predict(u)
	filter := heap.NewTopKFilter[int, float32](k)
	for m, prediction := range predictions {
		if r.collaborative.ratings[u][m] > 0 {
			continue
		}
		row, exist := r.catalog.Row(r.collaborative.movies[m])
		if !exist {
			continue
		}
		filter.Push(row, prediction)
	}
	return lo.Map(filter.PopAll(), func(elem heap.Elem[int, float32], _ int) UserRecommendation {
		movie := r.catalog.Movie(elem.Value)
		return UserRecommendation{
			MovieId:         movie.MovieId,
			Title:           movie.Title,
			Genres:          movie.Genres,
			PredictedRating: float64(elem.Weight),
		}
	}), nil
}
