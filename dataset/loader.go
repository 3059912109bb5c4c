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
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gorse-io/movierec/base"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

const (
	DefaultGenreSeparator = "|"
	DefaultNoGenres       = "(no genres listed)"
)

// LoadOptions controls how the genre column is parsed.
type LoadOptions struct {
	// GenreSeparator joins genre tags in the raw genre field.
	GenreSeparator string
	// NoGenres is a placeholder value treated as an empty genre field.
	NoGenres string
}

func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		GenreSeparator: DefaultGenreSeparator,
		NoGenres:       DefaultNoGenres,
	}
}

// SplitGenres splits a raw genre field into genre tags. Missing values yield nil.
func (opts LoadOptions) SplitGenres(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || (opts.NoGenres != "" && raw == opts.NoGenres) {
		return nil
	}
	sep := opts.GenreSeparator
	if sep == "" {
		sep = DefaultGenreSeparator
	}
	genres := lo.FilterMap(strings.Split(raw, sep), func(genre string, _ int) (string, bool) {
		genre = strings.TrimSpace(genre)
		return genre, genre != ""
	})
	if len(genres) == 0 {
		return nil
	}
	return genres
}

// columns maps required column names to their positions in the header.
func columns(header []string, names ...string) (map[string]int, error) {
	positions := make(map[string]int, len(names))
	for _, name := range names {
		_, i, found := lo.FindIndexOf(header, func(column string) bool {
			return strings.EqualFold(strings.TrimSpace(column), name)
		})
		if !found {
			return nil, errors.NotValidf("header %v without column %s", header, name)
		}
		positions[name] = i
	}
	return positions, nil
}

func isBlank(fields []string) bool {
	return len(fields) == 1 && strings.TrimSpace(fields[0]) == ""
}

func parseInt(fields []string, pos, line int, name string) (int, error) {
	if pos >= len(fields) {
		return 0, errors.NotValidf("line %d: missing %s", line+1, name)
	}
	v, err := strconv.Atoi(strings.TrimSpace(fields[pos]))
	if err != nil {
		return 0, errors.NotValidf("line %d: %s %q", line+1, name, fields[pos])
	}
	return v, nil
}

// LoadMovies parses a movie table with columns movieId, title and genres. The first
// record is the header; extra columns are ignored.
func LoadMovies(r io.Reader, opts LoadOptions) ([]Movie, error) {
	var (
		movies []Movie
		pos    map[string]int
	)
	err := base.ReadLines(r, ',', func(line int, fields []string) error {
		if line == 0 {
			var err error
			pos, err = columns(fields, "movieId", "title", "genres")
			return err
		}
		if isBlank(fields) {
			return nil
		}
		movieId, err := parseInt(fields, pos["movieId"], line, "movieId")
		if err != nil {
			return err
		}
		if pos["title"] >= len(fields) {
			return errors.NotValidf("line %d: missing title", line+1)
		}
		movie := Movie{
			MovieId: movieId,
			Title:   strings.TrimSpace(fields[pos["title"]]),
		}
		if pos["genres"] < len(fields) {
			movie.Genres = opts.SplitGenres(fields[pos["genres"]])
		}
		movies = append(movies, movie)
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	if pos == nil {
		return nil, errors.NotValidf("empty movie table")
	}
	return movies, nil
}

// LoadRatings parses a rating table with columns userId, movieId and rating. The first
// record is the header; extra columns (e.g. timestamp) are ignored.
func LoadRatings(r io.Reader) ([]Rating, error) {
	var (
		ratings []Rating
		pos     map[string]int
	)
	err := base.ReadLines(r, ',', func(line int, fields []string) error {
		if line == 0 {
			var err error
			pos, err = columns(fields, "userId", "movieId", "rating")
			return err
		}
		if isBlank(fields) {
			return nil
		}
		userId, err := parseInt(fields, pos["userId"], line, "userId")
		if err != nil {
			return err
		}
		movieId, err := parseInt(fields, pos["movieId"], line, "movieId")
		if err != nil {
			return err
		}
		if pos["rating"] >= len(fields) {
			return errors.NotValidf("line %d: missing rating", line+1)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(fields[pos["rating"]]), 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return errors.NotValidf("line %d: rating %q", line+1, fields[pos["rating"]])
		}
		ratings = append(ratings, Rating{UserId: userId, MovieId: movieId, Rating: value})
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	if pos == nil {
		return nil, errors.NotValidf("empty rating table")
	}
	return ratings, nil
}

// LoadCatalog reads a movie table and builds a catalog.
func LoadCatalog(r io.Reader, opts LoadOptions) (*Catalog, error) {
	movies, err := LoadMovies(r, opts)
	if err != nil {
		return nil, errors.Annotate(err, "failed to load movies")
	}
	return NewCatalog(movies)
}

// LoadRatingLog reads a rating table and builds a rating log.
func LoadRatingLog(r io.Reader) (*RatingLog, error) {
	ratings, err := LoadRatings(r)
	if err != nil {
		return nil, errors.Annotate(err, "failed to load ratings")
	}
	return NewRatingLog(ratings)
}

// LoadCatalogFile reads a movie csv file.
func LoadCatalogFile(path string, opts LoadOptions) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	return LoadCatalog(file, opts)
}

// LoadRatingLogFile reads a rating csv file.
func LoadRatingLogFile(path string) (*RatingLog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	return LoadRatingLog(file)
}
