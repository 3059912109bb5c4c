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
	"math"
	"sort"

	"github.com/gorse-io/movierec/dataset"
	"github.com/samber/lo"
)

type movieStats struct {
	movieId int
	count   int
	mean    float64
}

// newMovieStats groups ratings by movie and returns count and mean rating per movie,
// ordered by ascending movie id.
func newMovieStats(log *dataset.RatingLog) []movieStats {
	groups := lo.GroupBy(log.Ratings(), func(r dataset.Rating) int {
		return r.MovieId
	})
	return lo.Map(log.MovieIds(), func(movieId int, _ int) movieStats {
		group := groups[movieId]
		sum := lo.SumBy(group, func(r dataset.Rating) float64 {
			return r.Rating
		})
		return movieStats{
			movieId: movieId,
			count:   len(group),
			mean:    sum / float64(len(group)),
		}
	})
}

// TopRated returns movies with at least minReviews ratings, ordered by decreasing mean
// rating. Ties keep ascending movie id order. Movies absent from the catalog are dropped.
func (r *Recommender) TopRated(minReviews int) []RatedMovie {
	result := make([]RatedMovie, 0)
	for _, stats := range r.stats {
		if stats.count < minReviews {
			continue
		}
		row, exist := r.catalog.Row(stats.movieId)
		if !exist {
			continue
		}
		movie := r.catalog.Movie(row)
		result = append(result, RatedMovie{
			MovieId:     movie.MovieId,
			Title:       movie.Title,
			Genres:      movie.Genres,
			RatingCount: stats.count,
			RatingMean:  stats.mean,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RatingMean > result[j].RatingMean
	})
	return result
}

// Bin is a histogram bucket [Lower, Upper). The last bucket also includes Upper.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// RatingDistribution returns a histogram of all ratings with equal-width buckets
// spanning the minimum to the maximum rating. If all ratings are equal, the range is
// widened by 0.5 on both sides.
func (r *Recommender) RatingDistribution(bins int) []Bin {
	ratings := r.ratings.Ratings()
	if bins <= 0 || len(ratings) == 0 {
		return []Bin{}
	}
	lower := lo.MinBy(ratings, func(a, b dataset.Rating) bool { return a.Rating < b.Rating }).Rating
	upper := lo.MaxBy(ratings, func(a, b dataset.Rating) bool { return a.Rating > b.Rating }).Rating
	if lower == upper {
		lower, upper = lower-0.5, upper+0.5
	}
	width := (upper - lower) / float64(bins)
	histogram := make([]Bin, bins)
	for i := range histogram {
		histogram[i].Lower = lower + float64(i)*width
		histogram[i].Upper = lower + float64(i+1)*width
	}
	histogram[bins-1].Upper = upper
	for _, rating := range ratings {
		i := int(math.Floor((rating.Rating - lower) / width))
		histogram[min(max(i, 0), bins-1)].Count++
	}
	return histogram
}
