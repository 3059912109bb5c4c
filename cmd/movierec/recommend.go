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


package main

import (
	"strconv"

	"github.com/gorse-io/movierec/dataset"
	"github.com/gorse-io/movierec/logics"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newPrinter(cmd *cobra.Command) *printer {
	format, _ := cmd.Flags().GetString("format")
	return &printer{w: cmd.OutOrStdout(), format: format}
}

// numFlag returns the value of an int flag if it is set, otherwise the fallback.
func numFlag(cmd *cobra.Command, name string, fallback int) int {
	if cmd.Flags().Changed(name) {
		n, _ := cmd.Flags().GetInt(name)
		return n
	}
	return fallback
}

var contentCommand = &cobra.Command{
	Use:   "content TITLE",
	Short: "Recommend movies with genres similar to a movie",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, recommender, err := newRecommender(cmd)
		if err != nil {
			return errors.Trace(err)
		}
		n := numFlag(cmd, "num", conf.Recommend.NumRecommendations)
		results, err := recommender.RecommendByContent(args[0], n)
		if err != nil {
			return errors.Trace(err)
		}
		return newPrinter(cmd).Print(results, section{
			header: []string{"movie_id", "title", "genres", "similarity"},
			rows: lo.Map(results, func(r logics.ContentRecommendation, _ int) []string {
				return []string{strconv.Itoa(r.MovieId), r.Title, formatGenres(r.Genres), formatFloat(r.Similarity)}
			}),
		})
	},
}

var userCommand = &cobra.Command{
	Use:   "user ID",
	Short: "Recommend movies liked by users with similar ratings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userId, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.NotValidf("user id %q", args[0])
		}
		conf, recommender, err := newRecommender(cmd)
		if err != nil {
			return errors.Trace(err)
		}
		n := numFlag(cmd, "num", conf.Recommend.NumRecommendations)
		results, err := recommender.RecommendByUser(userId, n)
		if err != nil {
			return errors.Trace(err)
		}
		return newPrinter(cmd).Print(results, section{
			header: []string{"movie_id", "title", "genres", "predicted_rating"},
			rows: lo.Map(results, func(r logics.UserRecommendation, _ int) []string {
				return []string{strconv.Itoa(r.MovieId), r.Title, formatGenres(r.Genres), formatFloat(r.PredictedRating)}
			}),
		})
	},
}

var topRatedCommand = &cobra.Command{
	Use:   "top-rated",
	Short: "List movies with the highest mean rating",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, recommender, err := newRecommender(cmd)
		if err != nil {
			return errors.Trace(err)
		}
		minReviews := numFlag(cmd, "min-reviews", conf.Recommend.MinReviews)
		n := numFlag(cmd, "num", conf.Recommend.NumTopRated)
		results := recommender.TopRated(minReviews)
		results = results[:min(max(n, 0), len(results))]
		return newPrinter(cmd).Print(results, section{
			header: []string{"movie_id", "title", "genres", "rating_count", "rating_mean"},
			rows: lo.Map(results, func(r logics.RatedMovie, _ int) []string {
				return []string{strconv.Itoa(r.MovieId), r.Title, formatGenres(r.Genres), strconv.Itoa(r.RatingCount), formatFloat(r.RatingMean)}
			}),
		})
	},
}

var searchCommand = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search movies by title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, recommender, err := newRecommender(cmd)
		if err != nil {
			return errors.Trace(err)
		}
		movies := recommender.SearchTitles(args[0])
		return newPrinter(cmd).Print(movies, section{
			header: []string{"movie_id", "title", "genres"},
			rows: lo.Map(movies, func(m dataset.Movie, _ int) []string {
				return []string{strconv.Itoa(m.MovieId), m.Title, formatGenres(m.Genres)}
			}),
		})
	},
}

// Stats summarizes the loaded tables.
type Stats struct {
	NumMovies    int                     `json:"num_movies"`
	NumUsers     int                     `json:"num_users"`
	NumRatings   int                     `json:"num_ratings"`
	Genres       []logics.GenreFrequency `json:"genres"`
	Distribution []logics.Bin            `json:"distribution"`
}

var statsCommand = &cobra.Command{
	Use:   "stats",
	Short: "Show genre frequencies and the rating distribution",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, recommender, err := newRecommender(cmd)
		if err != nil {
			return errors.Trace(err)
		}
		stats := Stats{
			NumMovies:    recommender.Catalog().Len(),
			NumUsers:     len(recommender.Ratings().UserIds()),
			NumRatings:   recommender.Ratings().Len(),
			Genres:       recommender.GenreFrequencies(),
			Distribution: recommender.RatingDistribution(numFlag(cmd, "bins", conf.Recommend.DistributionBins)),
		}
		return newPrinter(cmd).Print(stats,
			section{
				title:  "Summary",
				header: []string{"name", "value"},
				rows: [][]string{
					{"movies", strconv.Itoa(stats.NumMovies)},
					{"users", strconv.Itoa(stats.NumUsers)},
					{"ratings", strconv.Itoa(stats.NumRatings)},
				},
			},
			section{
				title:  "Genres",
				header: []string{"genre", "count"},
				rows: lo.Map(stats.Genres, func(g logics.GenreFrequency, _ int) []string {
					return []string{g.Genre, strconv.Itoa(g.Count)}
				}),
			},
			section{
				title:  "Ratings",
				header: []string{"lower", "upper", "count"},
				rows: lo.Map(stats.Distribution, func(b logics.Bin, _ int) []string {
					return []string{formatFloat(b.Lower), formatFloat(b.Upper), strconv.Itoa(b.Count)}
				}),
			})
	},
}

func init() {
	contentCommand.Flags().IntP("num", "n", 0, "number of recommendations")
	userCommand.Flags().IntP("num", "n", 0, "number of recommendations")
	topRatedCommand.Flags().IntP("num", "n", 0, "number of movies")
	topRatedCommand.Flags().Int("min-reviews", 0, "minimal number of ratings")
	statsCommand.Flags().Int("bins", 0, "number of rating buckets")
	rootCommand.AddCommand(contentCommand, userCommand, topRatedCommand, searchCommand, statsCommand)
}
