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
	"strings"

	"github.com/XSAM/otelsql"
	"github.com/gorse-io/movierec/base/log"
	"github.com/gorse-io/movierec/dataset"
	"github.com/juju/errors"
	_ "github.com/lib/pq"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

const batchSize = 1000

// Database stores the movie catalog and the rating log.
type Database interface {
	Init() error
	Ping() error
	Close() error
	Purge() error
	// DeleteMovies removes every stored movie and keeps ratings.
	DeleteMovies(ctx context.Context) error
	// BatchInsertMovies inserts movies. A movie already stored is replaced. The position
	// of a movie is its index in movies plus offset.
	BatchInsertMovies(ctx context.Context, movies []dataset.Movie, offset int) error
	// BatchInsertRatings inserts ratings. A rating of the same user and movie is replaced.
	BatchInsertRatings(ctx context.Context, ratings []dataset.Rating) error
	// GetMovies returns movies in position order.
	GetMovies(ctx context.Context) ([]dataset.Movie, error)
	// GetRatings returns ratings ordered by user and movie.
	GetRatings(ctx context.Context) ([]dataset.Rating, error)
}

// Open a connection to a database.
func Open(path, tablePrefix string) (Database, error) {
	var err error
	if strings.HasPrefix(path, MySQLPrefix) {
		name := path[len(MySQLPrefix):]
		// append parameters
		if name, err = AppendMySQLParams(name, map[string]string{
			"sql_mode":  "'ONLY_FULL_GROUP_BY,STRICT_TRANS_TABLES,ERROR_FOR_DIVISION_BY_ZERO,NO_ENGINE_SUBSTITUTION'",
			"parseTime": "true",
		}); err != nil {
			return nil, errors.Trace(err)
		}
		// connect to database
		database := new(SQLDatabase)
		database.driver = MySQL
		database.TablePrefix = TablePrefix(tablePrefix)
		if database.client, err = otelsql.Open("mysql", name,
			otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}),
		); err != nil {
			return nil, errors.Trace(err)
		}
		database.gormDB, err = gorm.Open(mysql.New(mysql.Config{Conn: database.client}), NewGORMConfig(tablePrefix))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	} else if strings.HasPrefix(path, PostgresPrefix) || strings.HasPrefix(path, PostgreSQLPrefix) {
		database := new(SQLDatabase)
		database.driver = Postgres
		database.TablePrefix = TablePrefix(tablePrefix)
		if database.client, err = otelsql.Open("postgres", path,
			otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}),
		); err != nil {
			return nil, errors.Trace(err)
		}
		database.gormDB, err = gorm.Open(postgres.New(postgres.Config{Conn: database.client}), NewGORMConfig(tablePrefix))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	} else if strings.HasPrefix(path, MongoPrefix) || strings.HasPrefix(path, MongoSrvPrefix) {
		// connect to database
		database := new(MongoDB)
		opts := options.Client()
		opts.Monitor = otelmongo.NewMonitor()
		opts.ApplyURI(path)
		if database.client, err = mongo.Connect(context.Background(), opts); err != nil {
			return nil, errors.Trace(err)
		}
		// parse DSN and extract database name
		if cs, err := connstring.ParseAndValidate(path); err != nil {
			return nil, errors.Trace(err)
		} else {
			database.dbName = cs.Database
			database.TablePrefix = TablePrefix(tablePrefix)
		}
		return database, nil
	} else if strings.HasPrefix(path, SQLitePrefix) {
		name := path[len(SQLitePrefix):]
		// append parameters
		if name, err = AppendURLParams(name, []lo.Tuple2[string, string]{
			{A: "_pragma", B: "busy_timeout(10000)"},
			{A: "_pragma", B: "journal_mode(wal)"},
		}); err != nil {
			return nil, errors.Trace(err)
		}
		// connect to database
		database := new(SQLDatabase)
		database.driver = SQLite
		database.TablePrefix = TablePrefix(tablePrefix)
		if database.client, err = otelsql.Open("sqlite", name,
			otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}),
		); err != nil {
			return nil, errors.Trace(err)
		}
		database.gormDB, err = gorm.Open(sqlite.Dialector{Conn: database.client}, NewGORMConfig(tablePrefix))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	}
	return nil, errors.NotSupportedf("database %s", log.RedactDBURL(path))
}

// LoadCatalog reads the movie catalog stored in a database.
func LoadCatalog(ctx context.Context, database Database) (*dataset.Catalog, error) {
	movies, err := database.GetMovies(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(movies) == 0 {
		return nil, errors.NotValidf("empty movie table")
	}
	return dataset.NewCatalog(movies)
}

// LoadRatingLog reads the rating log stored in a database.
func LoadRatingLog(ctx context.Context, database Database) (*dataset.RatingLog, error) {
	ratings, err := database.GetRatings(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(ratings) == 0 {
		return nil, errors.NotValidf("empty rating table")
	}
	return dataset.NewRatingLog(ratings)
}

// Import copies a movie catalog and a rating log into a database in batches. The stored
// catalog is replaced so positions stay unique; ratings are merged with stored ones.
func Import(ctx context.Context, database Database, catalog *dataset.Catalog, ratings *dataset.RatingLog) error {
	if err := database.Init(); err != nil {
		return errors.Trace(err)
	}
	if err := database.DeleteMovies(ctx); err != nil {
		return errors.Annotate(err, "failed to delete movies")
	}
	for i, chunk := range lo.Chunk(catalog.Movies(), batchSize) {
		if err := database.BatchInsertMovies(ctx, chunk, i*batchSize); err != nil {
			return errors.Annotate(err, "failed to insert movies")
		}
	}
	log.Logger().Info("import movies", zap.Int("n_movies", catalog.Len()))
	for _, chunk := range lo.Chunk(ratings.Ratings(), batchSize) {
		if err := database.BatchInsertRatings(ctx, chunk); err != nil {
			return errors.Annotate(err, "failed to insert ratings")
		}
	}
	log.Logger().Info("import ratings", zap.Int("n_ratings", ratings.Len()))
	return nil
}
