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
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/movierec/common/heap"
	"github.com/gorse-io/movierec/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

type contentIndex struct {
	vocabulary *dataset.Dict[string]
	similarity Matrix
}

// newContentIndex encodes every movie as a binary genre vector and computes the pairwise
// cosine similarity between them. Repeated tags of a movie count once.
func newContentIndex(catalog *dataset.Catalog, numJobs int) *contentIndex {
	vocabulary := dataset.NewDict[string]()
	tokens := make([][]int, catalog.Len())
	for i, movie := range catalog.Movies() {
		seen := mapset.NewThreadUnsafeSet[string]()
		for _, genre := range movie.Genres {
			genre = strings.ToLower(genre)
			if seen.Add(genre) {
				tokens[i] = append(tokens[i], vocabulary.Add(genre))
			}
		}
	}
	vectors := make([][]float32, catalog.Len())
	for i := range vectors {
		vectors[i] = make([]float32, vocabulary.Count())
		for _, token := range tokens[i] {
			vectors[i][token] = 1
		}
	}
	return &contentIndex{
		vocabulary: vocabulary,
		similarity: NewCosineMatrix(vectors, numJobs),
	}
}

// ContentSimilarity returns the movie×movie genre similarity matrix indexed by catalog row.
func (r *Recommender) ContentSimilarity() Matrix {
	return r.content.similarity
}

// RecommendByContent finds the first movie in catalog order whose title contains the
// query case-insensitively and returns the k movies with the most similar genres. Ties
// keep catalog order. The matched movie itself is never returned.
func (r *Recommender) RecommendByContent(title string, k int) ([]ContentRecommendation, error) {
	row, ok := r.catalog.Find(title)
	if !ok {
		return nil, errors.NotFoundf("movie %q", title)
	}
	filter := heap.NewTopKFilter[int, float32](k)
	for i, score := range r.content.similarity.Row(row) {
		if i != row {
			filter.Push(i, score)
		}
	}
	return lo.Map(filter.PopAll(), func(elem heap.Elem[int, float32], _ int) ContentRecommendation {
		movie := r.catalog.Movie(elem.Value)
		return ContentRecommendation{
			MovieId:    movie.MovieId,
			Title:      movie.Title,
			Genres:     movie.Genres,
			Similarity: float64(elem.Weight),
		}
	}), nil
}

// GenreFrequency counts the movies tagged with a genre.
type GenreFrequency struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// GenreFrequencies returns the genre vocabulary ordered by decreasing frequency. Genres
// are compared case-insensitively and reported in lower case.
func (r *Recommender) GenreFrequencies() []GenreFrequency {
	frequencies := make([]GenreFrequency, r.content.vocabulary.Count())
	for i := range frequencies {
		genre, _ := r.content.vocabulary.Key(i)
		frequencies[i] = GenreFrequency{Genre: genre, Count: r.content.vocabulary.Freq(i)}
	}
	sort.SliceStable(frequencies, func(i, j int) bool {
		return frequencies[i].Count > frequencies[j].Count
	})
	return frequencies
}
