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

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/movierec/dataset"
	"github.com/juju/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoMovie struct {
	MovieId  int      `bson:"_id"`
	Position int      `bson:"position"`
	Title    string   `bson:"title"`
	Genres   []string `bson:"genres"`
}

type mongoRating struct {
	UserId  int     `bson:"user_id"`
	MovieId int     `bson:"movie_id"`
	Rating  float64 `bson:"rating"`
}

type MongoDB struct {
	TablePrefix
	client *mongo.Client
	dbName string
}

func (db *MongoDB) Init() error {
	ctx := context.Background()
	d := db.client.Database(db.dbName)
	// list collections
	collections, err := d.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return errors.Trace(err)
	}
	exists := mapset.NewThreadUnsafeSet(collections...)
	// create collections
	for _, name := range []string{db.MoviesTable(), db.RatingsTable()} {
		if !exists.Contains(name) {
			if err = d.CreateCollection(ctx, name); err != nil {
				return errors.Trace(err)
			}
		}
	}
	// create index
	_, err = d.Collection(db.MoviesTable()).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.M{"position": 1},
	})
	if err != nil {
		return errors.Trace(err)
	}
	_, err = d.Collection(db.RatingsTable()).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "movie_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errors.Trace(err)
}

func (db *MongoDB) Ping() error {
	return db.client.Ping(context.Background(), nil)
}

// Close connection to MongoDB.
func (db *MongoDB) Close() error {
	return db.client.Disconnect(context.Background())
}

func (db *MongoDB) Purge() error {
	ctx := context.Background()
	d := db.client.Database(db.dbName)
	for _, name := range []string{db.MoviesTable(), db.RatingsTable()} {
		if _, err := d.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (db *MongoDB) DeleteMovies(ctx context.Context) error {
	_, err := db.client.Database(db.dbName).Collection(db.MoviesTable()).DeleteMany(ctx, bson.M{})
	return errors.Trace(err)
}

func (db *MongoDB) BatchInsertMovies(ctx context.Context, movies []dataset.Movie, offset int) error {
	if len(movies) == 0 {
		return nil
	}
	c := db.client.Database(db.dbName).Collection(db.MoviesTable())
	var models []mongo.WriteModel
	for i, movie := range movies {
		models = append(models, mongo.NewReplaceOneModel().
			SetUpsert(true).
			SetFilter(bson.M{"_id": bson.M{"$eq": movie.MovieId}}).
			SetReplacement(mongoMovie{
				MovieId:  movie.MovieId,
				Position: offset + i,
				Title:    movie.Title,
				Genres:   movie.Genres,
			}))
	}
	_, err := c.BulkWrite(ctx, models)
	return errors.Trace(err)
}

func (db *MongoDB) BatchInsertRatings(ctx context.Context, ratings []dataset.Rating) error {
	if len(ratings) == 0 {
		return nil
	}
	c := db.client.Database(db.dbName).Collection(db.RatingsTable())
	var models []mongo.WriteModel
	for _, rating := range ratings {
		models = append(models, mongo.NewReplaceOneModel().
			SetUpsert(true).
			SetFilter(bson.M{
				"user_id":  bson.M{"$eq": rating.UserId},
				"movie_id": bson.M{"$eq": rating.MovieId},
			}).
			SetReplacement(mongoRating{
				UserId:  rating.UserId,
				MovieId: rating.MovieId,
				Rating:  rating.Rating,
			}))
	}
	_, err := c.BulkWrite(ctx, models)
	return errors.Trace(err)
}

func (db *MongoDB) GetMovies(ctx context.Context) ([]dataset.Movie, error) {
	c := db.client.Database(db.dbName).Collection(db.MoviesTable())
	opt := options.Find()
	opt.SetSort(bson.D{{Key: "position", Value: 1}})
	r, err := c.Find(ctx, bson.M{}, opt)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer r.Close(ctx)
	var movies []dataset.Movie
	for r.Next(ctx) {
		var movie mongoMovie
		if err = r.Decode(&movie); err != nil {
			return nil, errors.Trace(err)
		}
		movies = append(movies, dataset.Movie{
			MovieId: movie.MovieId,
			Title:   movie.Title,
			Genres:  movie.Genres,
		})
	}
	return movies, errors.Trace(r.Err())
}

func (db *MongoDB) GetRatings(ctx context.Context) ([]dataset.Rating, error) {
	c := db.client.Database(db.dbName).Collection(db.RatingsTable())
	opt := options.Find()
	opt.SetSort(bson.D{{Key: "user_id", Value: 1}, {Key: "movie_id", Value: 1}})
	r, err := c.Find(ctx, bson.M{}, opt)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer r.Close(ctx)
	var ratings []dataset.Rating
	for r.Next(ctx) {
		var rating mongoRating
		if err = r.Decode(&rating); err != nil {
			return nil, errors.Trace(err)
		}
		ratings = append(ratings, dataset.Rating{
			UserId:  rating.UserId,
			MovieId: rating.MovieId,
			Rating:  rating.Rating,
		})
	}
	return ratings, errors.Trace(r.Err())
}
