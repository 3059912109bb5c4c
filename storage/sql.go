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


package storage

import (
	"context"
	"database/sql"

	"github.com/goccy/go-json"
	"github.com/gorse-io/movierec/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SQLDriver int

const (
	MySQL SQLDriver = iota
	Postgres
	SQLite
)

func (d SQLDriver) String() string {
	switch d {
	case MySQL:
		return "mysql"
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	}
	return "unknown"
}

// SQLMovie is a row of the movies table. Genres are stored as a JSON array.
type SQLMovie struct {
	MovieId  int    `gorm:"column:movie_id;primaryKey;autoIncrement:false"`
	Position int    `gorm:"column:position;not null;index"`
	Title    string `gorm:"column:title;type:text;not null"`
	Genres   string `gorm:"column:genres;type:text;not null"`
}

// SQLRating is a row of the ratings table.
type SQLRating struct {
	UserId  int     `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	MovieId int     `gorm:"column:movie_id;primaryKey;autoIncrement:false;index"`
	Rating  float64 `gorm:"column:rating;not null"`
}

type SQLDatabase struct {
	TablePrefix
	gormDB *gorm.DB
	client *sql.DB
	driver SQLDriver
}

func (d *SQLDatabase) Init() error {
	db := d.gormDB
	if d.driver == MySQL {
		db = db.Set("gorm:table_options", "ENGINE=InnoDB")
	}
	if err := db.AutoMigrate(&SQLMovie{}, &SQLRating{}); err != nil {
		return errors.Trace(err)
	}
	return nil
}

func (d *SQLDatabase) Ping() error {
	return d.client.Ping()
}

func (d *SQLDatabase) Close() error {
	return d.client.Close()
}

func (d *SQLDatabase) Purge() error {
	tx := d.gormDB.Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := tx.Delete(&SQLMovie{}).Error; err != nil {
		return errors.Trace(err)
	}
	if err := tx.Delete(&SQLRating{}).Error; err != nil {
		return errors.Trace(err)
	}
	return nil
}

func (d *SQLDatabase) DeleteMovies(ctx context.Context) error {
	tx := d.gormDB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	return errors.Trace(tx.Delete(&SQLMovie{}).Error)
}

func (d *SQLDatabase) BatchInsertMovies(ctx context.Context, movies []dataset.Movie, offset int) error {
	if len(movies) == 0 {
		return nil
	}
	rows := make([]SQLMovie, len(movies))
	for i, movie := range movies {
		genres, err := json.Marshal(movie.Genres)
		if err != nil {
			return errors.Trace(err)
		}
		rows[i] = SQLMovie{
			MovieId:  movie.MovieId,
			Position: offset + i,
			Title:    movie.Title,
			Genres:   string(genres),
		}
	}
	err := d.gormDB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "movie_id"}},
		UpdateAll: true,
	}).Create(&rows).Error
	return errors.Trace(err)
}

func (d *SQLDatabase) BatchInsertRatings(ctx context.Context, ratings []dataset.Rating) error {
	if len(ratings) == 0 {
		return nil
	}
	rows := lo.Map(ratings, func(rating dataset.Rating, _ int) SQLRating {
		return SQLRating{
			UserId:  rating.UserId,
			MovieId: rating.MovieId,
			Rating:  rating.Rating,
		}
	})
	err := d.gormDB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		UpdateAll: true,
	}).Create(&rows).Error
	return errors.Trace(err)
}

func (d *SQLDatabase) GetMovies(ctx context.Context) ([]dataset.Movie, error) {
	result, err := d.gormDB.WithContext(ctx).Model(&SQLMovie{}).Order("position").Rows()
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer result.Close()
	var movies []dataset.Movie
	for result.Next() {
		var row SQLMovie
		if err = d.gormDB.ScanRows(result, &row); err != nil {
			return nil, errors.Trace(err)
		}
		movie := dataset.Movie{MovieId: row.MovieId, Title: row.Title}
		if err = json.Unmarshal([]byte(row.Genres), &movie.Genres); err != nil {
			return nil, errors.Annotatef(err, "movie %d", row.MovieId)
		}
		movies = append(movies, movie)
	}
	return movies, errors.Trace(result.Err())
}

func (d *SQLDatabase) GetRatings(ctx context.Context) ([]dataset.Rating, error) {
	result, err := d.gormDB.WithContext(ctx).Model(&SQLRating{}).Order("user_id, movie_id").Rows()
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer result.Close()
	var ratings []dataset.Rating
	for result.Next() {
		var row SQLRating
		if err = d.gormDB.ScanRows(result, &row); err != nil {
			return nil, errors.Trace(err)
		}
		ratings = append(ratings, dataset.Rating{
			UserId:  row.UserId,
			MovieId: row.MovieId,
			Rating:  row.Rating,
		})
	}
	return ratings, errors.Trace(result.Err())
}
