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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const movieTable = `movieId,title,genres
1,Toy Story (1995),Adventure|Animation|Children|Comedy|Fantasy
2,Jumanji (1995),Adventure|Children|Fantasy
3,"American President, The (1995)",Comedy|Drama|Romance
4,Nowhere (1997),(no genres listed)
5,Untitled,
`

const ratingTable = `userId,movieId,rating,timestamp
1,1,4.0,964982703
1,3,4.0,964981247
2,1,3.5,1445714835

2,2,5,1445714836
`

type LoaderTestSuite struct {
	suite.Suite
}

func (suite *LoaderTestSuite) TestLoadMovies() {
	movies, err := LoadMovies(strings.NewReader(movieTable), DefaultLoadOptions())
	suite.NoError(err)
	suite.Equal([]Movie{
		{MovieId: 1, Title: "Toy Story (1995)", Genres: []string{"Adventure", "Animation", "Children", "Comedy", "Fantasy"}},
		{MovieId: 2, Title: "Jumanji (1995)", Genres: []string{"Adventure", "Children", "Fantasy"}},
		{MovieId: 3, Title: "American President, The (1995)", Genres: []string{"Comedy", "Drama", "Romance"}},
		{MovieId: 4, Title: "Nowhere (1997)"},
		{MovieId: 5, Title: "Untitled"},
	}, movies)
}

func (suite *LoaderTestSuite) TestLoadMoviesColumnOrder() {
	movies, err := LoadMovies(strings.NewReader("title,year,movieId,genres\nHeat (1995),1995,6,Action|Crime|Thriller\nSabrina (1995),1995,7\n"), DefaultLoadOptions())
	suite.NoError(err)
	suite.Equal([]Movie{
		{MovieId: 6, Title: "Heat (1995)", Genres: []string{"Action", "Crime", "Thriller"}},
		{MovieId: 7, Title: "Sabrina (1995)"},
	}, movies)
}

func (suite *LoaderTestSuite) TestLoadMoviesMalformed() {
	_, err := LoadMovies(strings.NewReader("movieId,title,genres\nabc,Toy Story,Comedy\n"), DefaultLoadOptions())
	suite.True(errors.IsNotValid(err))
	_, err = LoadMovies(strings.NewReader("movieId,name,genres\n1,Toy Story,Comedy\n"), DefaultLoadOptions())
	suite.True(errors.IsNotValid(err))
	_, err = LoadMovies(strings.NewReader("movieId,genres,title\n1,Comedy\n"), DefaultLoadOptions())
	suite.True(errors.IsNotValid(err))
	_, err = LoadMovies(strings.NewReader(""), DefaultLoadOptions())
	suite.True(errors.IsNotValid(err))
	_, err = LoadCatalog(strings.NewReader("movieId,title,genres\n1,Toy Story,Animation\n2,\"Broken,Comedy\n3,Die Hard,Action\n4,Heat,Crime\n"), DefaultLoadOptions())
	suite.True(errors.IsNotValid(err))
}

func (suite *LoaderTestSuite) TestLoadRatings() {
	ratings, err := LoadRatings(strings.NewReader(ratingTable))
	suite.NoError(err)
	suite.Equal([]Rating{
		{UserId: 1, MovieId: 1, Rating: 4},
		{UserId: 1, MovieId: 3, Rating: 4},
		{UserId: 2, MovieId: 1, Rating: 3.5},
		{UserId: 2, MovieId: 2, Rating: 5},
	}, ratings)
}

func (suite *LoaderTestSuite) TestLoadRatingsMalformed() {
	_, err := LoadRatings(strings.NewReader("userId,movieId,rating\n1,1,good\n"))
	suite.True(errors.IsNotValid(err))
	_, err = LoadRatings(strings.NewReader("userId,movieId,rating\n1,1,NaN\n"))
	suite.True(errors.IsNotValid(err))
	_, err = LoadRatings(strings.NewReader("userId,movieId,rating\n1,1\n"))
	suite.True(errors.IsNotValid(err))
	_, err = LoadRatings(strings.NewReader("userId,movieId\n1,1\n"))
	suite.True(errors.IsNotValid(err))
	_, err = LoadRatings(strings.NewReader("userId,movieId,rating\n1.5,1,2\n"))
	suite.True(errors.IsNotValid(err))
	_, err = LoadRatingLog(strings.NewReader("userId,movieId,rating\n1,1,5\n1,\"2,4\n2,1,3\n"))
	suite.True(errors.IsNotValid(err))
}

func (suite *LoaderTestSuite) TestLoadRatingLogDuplicate() {
	_, err := LoadRatingLog(strings.NewReader("userId,movieId,rating\n1,1,2\n1,2,3\n1,1,4\n"))
	suite.True(errors.IsNotValid(err))
}

func (suite *LoaderTestSuite) TestLoadFiles() {
	dir := suite.T().TempDir()
	moviesPath := filepath.Join(dir, "movies.csv")
	ratingsPath := filepath.Join(dir, "ratings.csv")
	suite.NoError(os.WriteFile(moviesPath, []byte(movieTable), 0644))
	suite.NoError(os.WriteFile(ratingsPath, []byte(ratingTable), 0644))

	catalog, err := LoadCatalogFile(moviesPath, DefaultLoadOptions())
	suite.NoError(err)
	suite.Equal(5, catalog.Len())
	log, err := LoadRatingLogFile(ratingsPath)
	suite.NoError(err)
	suite.Equal(4, log.Len())

	_, err = LoadCatalogFile(filepath.Join(dir, "missing.csv"), DefaultLoadOptions())
	suite.Error(err)
	suite.ErrorIs(err, os.ErrNotExist)
	_, err = LoadRatingLogFile(filepath.Join(dir, "missing.csv"))
	suite.Error(err)
}

func TestLoader(t *testing.T) {
	suite.Run(t, new(LoaderTestSuite))
}

func TestSplitGenres(t *testing.T) {
	opts := DefaultLoadOptions()
	assert.Equal(t, []string{"Action", "Sci-Fi"}, opts.SplitGenres("Action|Sci-Fi"))
	assert.Equal(t, []string{"Action", "Sci-Fi"}, opts.SplitGenres(" Action | |Sci-Fi "))
	assert.Nil(t, opts.SplitGenres(""))
	assert.Nil(t, opts.SplitGenres("|"))
	assert.Nil(t, opts.SplitGenres("(no genres listed)"))
	opts = LoadOptions{GenreSeparator: ";"}
	assert.Equal(t, []string{"(no genres listed)"}, opts.SplitGenres("(no genres listed)"))
	assert.Equal(t, []string{"Action", "Drama"}, opts.SplitGenres("Action;Drama"))
}

func TestCatalog(t *testing.T) {
	catalog, err := NewCatalog([]Movie{
		{MovieId: 1, Title: "Toy Story (1995)"},
		{MovieId: 2, Title: "Toy Story 2 (1999)"},
		{MovieId: 3, Title: "Die Hard (1988)"},
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, catalog.Len())

	row, ok := catalog.Find("toy story")
	assert.True(t, ok)
	assert.Equal(t, 0, row)
	row, ok = catalog.Find("DIE HARD")
	assert.True(t, ok)
	assert.Equal(t, 2, row)
	_, ok = catalog.Find("Heat")
	assert.False(t, ok)

	assert.Equal(t, []int{0, 1}, catalog.Search("TOY"))
	assert.Empty(t, catalog.Search("Heat"))

	row, ok = catalog.Row(3)
	assert.True(t, ok)
	assert.Equal(t, "Die Hard (1988)", catalog.Movie(row).Title)
	_, ok = catalog.Row(4)
	assert.False(t, ok)

	_, err = NewCatalog([]Movie{{MovieId: 1}, {MovieId: 1}})
	assert.True(t, errors.IsNotValid(err))
}

func TestRatingLog(t *testing.T) {
	log, err := NewRatingLog([]Rating{
		{UserId: 2, MovieId: 20, Rating: 1},
		{UserId: 1, MovieId: 10, Rating: 5},
		{UserId: 1, MovieId: 20, Rating: 3},
		{UserId: 2, MovieId: 10, Rating: 5},
	})
	assert.NoError(t, err)
	assert.Equal(t, 4, log.Len())
	assert.Equal(t, []int{1, 2}, log.UserIds())
	assert.Equal(t, []int{10, 20}, log.MovieIds())

	_, err = NewRatingLog([]Rating{{UserId: 1, MovieId: 1, Rating: 1}, {UserId: 1, MovieId: 1, Rating: 2}})
	assert.True(t, errors.IsNotValid(err))
}
