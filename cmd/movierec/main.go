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
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gorse-io/movierec/base/log"
	"github.com/gorse-io/movierec/cmd/version"
	"github.com/gorse-io/movierec/config"
	"github.com/gorse-io/movierec/dataset"
	"github.com/gorse-io/movierec/logics"
	"github.com/gorse-io/movierec/storage"
	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCommand = &cobra.Command{
	Use:           "movierec",
	Short:         "Movie recommendations from genres and ratings.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// setup logger
		debug, _ := cmd.Flags().GetBool("debug")
		if err := log.SetLogger(cmd.Flags(), debug); err != nil {
			return errors.Trace(err)
		}
		format, _ := cmd.Flags().GetString("format")
		if !isFormat(format) {
			return errors.NotValidf("format %q", format)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		// Show version
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), version.BuildInfo())
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	flags := rootCommand.PersistentFlags()
	log.AddFlags(flags)
	flags.Bool("debug", false, "use debug log mode")
	flags.StringP("config", "c", "", "configuration file path")
	flags.StringP("format", "f", formatTable, "output format (table, json or csv)")
	flags.String("movies", "", "path of the movie catalog")
	flags.String("ratings", "", "path of the rating log")
	flags.String("database", "", "database holding the movie catalog and the rating log")
	flags.Int("jobs", 0, "number of goroutines building similarity matrices")
	flags.BoolP("quiet", "q", false, "hide loading progress")
	rootCommand.Flags().BoolP("version", "v", false, "movierec version")
}

// loadConfig loads the configuration file and applies command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		log.Logger().Info("load config", zap.String("config", configPath))
	}
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Annotate(err, "failed to load config")
	}
	if cmd.Flags().Changed("movies") {
		conf.Dataset.Movies, _ = cmd.Flags().GetString("movies")
	}
	if cmd.Flags().Changed("ratings") {
		conf.Dataset.Ratings, _ = cmd.Flags().GetString("ratings")
	}
	if cmd.Flags().Changed("database") {
		conf.Dataset.Database, _ = cmd.Flags().GetString("database")
	}
	if cmd.Flags().Changed("jobs") {
		conf.Recommend.NumJobs, _ = cmd.Flags().GetInt("jobs")
	}
	if err = conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return conf, nil
}

// openFile opens a CSV file wrapped by a progress bar.
func openFile(path, description string) (io.Reader, io.Closer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, nil, errors.Trace(err)
	}
	reader := progressbar.NewReader(file, progressbar.DefaultBytes(stat.Size(), description))
	return &reader, file, nil
}

func loadFiles(conf *config.Config, quiet bool) (*dataset.Catalog, *dataset.RatingLog, error) {
	if quiet {
		catalog, err := dataset.LoadCatalogFile(conf.Dataset.Movies, conf.Dataset.LoadOptions())
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		ratings, err := dataset.LoadRatingLogFile(conf.Dataset.Ratings)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		return catalog, ratings, nil
	}
	reader, closer, err := openFile(conf.Dataset.Movies, "Loading movies")
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	defer closer.Close()
	catalog, err := dataset.LoadCatalog(reader, conf.Dataset.LoadOptions())
	if err != nil {
		return nil, nil, errors.Annotatef(err, "failed to load %s", conf.Dataset.Movies)
	}
	reader, closer, err = openFile(conf.Dataset.Ratings, "Loading ratings")
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	defer closer.Close()
	ratings, err := dataset.LoadRatingLog(reader)
	if err != nil {
		return nil, nil, errors.Annotatef(err, "failed to load %s", conf.Dataset.Ratings)
	}
	return catalog, ratings, nil
}

func loadDatabase(ctx context.Context, conf *config.Config) (*dataset.Catalog, *dataset.RatingLog, error) {
	log.Logger().Info("connect to database", zap.String("database", log.RedactDBURL(conf.Dataset.Database)))
	database, err := storage.Open(conf.Dataset.Database, conf.Dataset.TablePrefix)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	defer database.Close()
	catalog, err := storage.LoadCatalog(ctx, database)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	ratings, err := storage.LoadRatingLog(ctx, database)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	return catalog, ratings, nil
}

// newRecommender loads both tables and builds the recommender.
func newRecommender(cmd *cobra.Command) (*config.Config, *logics.Recommender, error) {
	conf, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	quiet, _ := cmd.Flags().GetBool("quiet")
	var (
		catalog *dataset.Catalog
		ratings *dataset.RatingLog
	)
	if conf.Dataset.Database != "" {
		catalog, ratings, err = loadDatabase(cmd.Context(), conf)
	} else {
		catalog, ratings, err = loadFiles(conf, quiet)
	}
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	start := time.Now()
	recommender, err := logics.NewRecommender(catalog, ratings, &logics.Options{NumJobs: conf.Recommend.NumJobs})
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	log.Logger().Info("build recommender",
		zap.Int("n_movies", catalog.Len()),
		zap.Int("n_ratings", ratings.Len()),
		zap.Int("n_jobs", conf.Recommend.NumJobs),
		zap.Duration("used_time", time.Since(start)))
	return conf, recommender, nil
}

func main() {
	defer log.CloseLogger()
	if err := rootCommand.ExecuteContext(context.Background()); err != nil {
		if errors.IsNotFound(err) {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
