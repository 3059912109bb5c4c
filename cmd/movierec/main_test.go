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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gorse-io/movierec/logics"
	"github.com/gorse-io/movierec/storage"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"
)

const testMovies = `movieId,title,genres
1,Toy Story (1995),Adventure|Animation|Children|Comedy|Fantasy
2,Jumanji (1995),Adventure|Children|Fantasy
3,Grumpier Old Men (1995),Comedy|Romance
4,"Heat, The (1995)",Action|Crime|Thriller
5,Toy Story 2 (1999),Adventure|Animation|Children|Comedy|Fantasy
6,Mystery (2000),(no genres listed)
`

const testRatings = `userId,movieId,rating,timestamp
1,1,4.0,964982703
1,3,4.0,964981247
1,4,5.0,964982224
2,1,5.0,964983815
2,2,3.0,964982931
2,5,4.5,964982400
3,2,2.0,964980868
3,4,4.0,964982176
3,5,5.0,964984041
`

type CommandTestSuite struct {
	suite.Suite
	movies  string
	ratings string
}

func (suite *CommandTestSuite) SetupTest() {
	dir := suite.T().TempDir()
	suite.movies = filepath.Join(dir, "movies.csv")
	suite.ratings = filepath.Join(dir, "ratings.csv")
	suite.NoError(os.WriteFile(suite.movies, []byte(testMovies), 0644))
	suite.NoError(os.WriteFile(suite.ratings, []byte(testRatings), 0644))
}

func resetFlags(cmd *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		_ = flag.Value.Set(flag.DefValue)
		flag.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// execute runs the command line with the test tables and returns the output.
func (suite *CommandTestSuite) execute(args ...string) (string, error) {
	viper.Reset()
	resetFlags(rootCommand)
	var output bytes.Buffer
	rootCommand.SetOut(&output)
	rootCommand.SetArgs(append([]string{"--movies", suite.movies, "--ratings", suite.ratings, "--quiet"}, args...))
	err := rootCommand.Execute()
	return output.String(), err
}

func (suite *CommandTestSuite) TestContent() {
	output, err := suite.execute("content", "toy story", "-n", "1", "--format", "json")
	suite.NoError(err)
	var results []logics.ContentRecommendation
	suite.NoError(json.Unmarshal([]byte(output), &results))
	suite.Equal([]logics.ContentRecommendation{{
		MovieId:    5,
		Title:      "Toy Story 2 (1999)",
		Genres:     []string{"Adventure", "Animation", "Children", "Comedy", "Fantasy"},
		Similarity: 1,
	}}, results)

	// default number of recommendations
	output, err = suite.execute("content", "Jumanji", "--format", "json")
	suite.NoError(err)
	suite.NoError(json.Unmarshal([]byte(output), &results))
	suite.Len(results, 5)

	_, err = suite.execute("content", "Casablanca")
	suite.True(errors.IsNotFound(err))
}

func (suite *CommandTestSuite) TestUser() {
	output, err := suite.execute("user", "1", "--format", "csv")
	suite.NoError(err)
	lines := strings.Split(strings.TrimSpace(output), "\n")
	suite.Equal("movie_id,title,genres,predicted_rating", lines[0])
	// user 1 has not rated movies 2 and 5
	suite.ElementsMatch([]string{"2", "5"}, lo.Map(lines[1:], func(line string, _ int) string {
		return strings.Split(line, ",")[0]
	}))

	_, err = suite.execute("user", "42")
	suite.True(errors.IsNotFound(err))
	_, err = suite.execute("user", "abc")
	suite.True(errors.IsNotValid(err))
}

func (suite *CommandTestSuite) TestTopRated() {
	output, err := suite.execute("top-rated", "--min-reviews", "2", "--format", "json")
	suite.NoError(err)
	var results []logics.RatedMovie
	suite.NoError(json.Unmarshal([]byte(output), &results))
	suite.Equal([]int{5, 1, 4, 2}, lo.Map(results, func(r logics.RatedMovie, _ int) int { return r.MovieId }))
	suite.Equal(4.75, results[0].RatingMean)
	suite.Equal(2, results[0].RatingCount)

	output, err = suite.execute("top-rated", "--min-reviews", "2", "-n", "2", "--format", "json")
	suite.NoError(err)
	suite.NoError(json.Unmarshal([]byte(output), &results))
	suite.Len(results, 2)

	// the default minimal number of ratings is 100
	output, err = suite.execute("top-rated", "--format", "json")
	suite.NoError(err)
	suite.Equal("[]\n", output)
}

func (suite *CommandTestSuite) TestSearch() {
	output, err := suite.execute("search", "toy")
	suite.NoError(err)
	suite.Contains(output, "Toy Story (1995)")
	suite.Contains(output, "Toy Story 2 (1999)")
	suite.NotContains(output, "Jumanji")

	output, err = suite.execute("search", "heat", "--format", "csv")
	suite.NoError(err)
	suite.Equal("movie_id,title,genres\n4,\"Heat, The (1995)\",Action|Crime|Thriller\n", output)
}

func (suite *CommandTestSuite) TestStats() {
	output, err := suite.execute("stats", "--bins", "4", "--format", "json")
	suite.NoError(err)
	var stats Stats
	suite.NoError(json.Unmarshal([]byte(output), &stats))
	suite.Equal(6, stats.NumMovies)
	suite.Equal(3, stats.NumUsers)
	suite.Equal(9, stats.NumRatings)
	suite.Equal(logics.GenreFrequency{Genre: "adventure", Count: 3}, stats.Genres[0])
	suite.Len(stats.Distribution, 4)
	suite.Equal(9, lo.SumBy(stats.Distribution, func(b logics.Bin) int { return b.Count }))

	output, err = suite.execute("stats")
	suite.NoError(err)
	suite.Contains(output, "Summary")
	suite.Contains(output, "Genres")
	suite.Contains(output, "Ratings")
}

func (suite *CommandTestSuite) TestImport() {
	database := storage.SQLitePrefix + filepath.Join(suite.T().TempDir(), "movierec.db")
	_, err := suite.execute("import", "--database", database, "--purge")
	suite.NoError(err)

	output, err := suite.execute("content", "toy story", "-n", "1", "--format", "json",
		"--database", database, "--movies", "missing.csv")
	suite.NoError(err)
	var results []logics.ContentRecommendation
	suite.NoError(json.Unmarshal([]byte(output), &results))
	suite.Len(results, 1)
	suite.Equal("Toy Story 2 (1999)", results[0].Title)

	_, err = suite.execute("import")
	suite.True(errors.IsNotValid(err))
}

func (suite *CommandTestSuite) TestProgress() {
	viper.Reset()
	resetFlags(rootCommand)
	var output bytes.Buffer
	rootCommand.SetOut(&output)
	rootCommand.SetArgs([]string{"--movies", suite.movies, "--ratings", suite.ratings, "search", "jumanji", "-f", "csv"})
	suite.NoError(rootCommand.Execute())
	suite.Equal("movie_id,title,genres\n2,Jumanji (1995),Adventure|Children|Fantasy\n", output.String())
}

func (suite *CommandTestSuite) TestInvalid() {
	_, err := suite.execute("search", "toy", "--format", "xml")
	suite.True(errors.IsNotValid(err))
	_, err = suite.execute("search", "toy", "--movies", filepath.Join(suite.T().TempDir(), "missing.csv"))
	suite.ErrorIs(err, os.ErrNotExist)
	_, err = suite.execute("search", "toy", "--jobs", "-1")
	suite.True(errors.IsNotValid(err))
}

func (suite *CommandTestSuite) TestVersion() {
	output, err := suite.execute("--version")
	suite.NoError(err)
	suite.Contains(output, "Version:")
}

func TestCommand(t *testing.T) {
	suite.Run(t, new(CommandTestSuite))
}
