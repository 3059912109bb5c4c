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


package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/movierec/base/log"
	"github.com/gorse-io/movierec/dataset"
	"github.com/gorse-io/movierec/storage"
	"github.com/juju/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the configuration for movierec.
type Config struct {
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Recommend RecommendConfig `mapstructure:"recommend"`
}

// DatasetConfig describes where the movie catalog and the rating log come from.
// Tables are read from Database if it is set, otherwise from the CSV files.
type DatasetConfig struct {
	Movies         string `mapstructure:"movies" validate:"required_without=Database"`
	Ratings        string `mapstructure:"ratings" validate:"required_without=Database"`
	Database       string `mapstructure:"database" validate:"omitempty,database"`
	TablePrefix    string `mapstructure:"table_prefix"`
	GenreSeparator string `mapstructure:"genre_separator" validate:"required"`
	NoGenres       string `mapstructure:"no_genres"`
}

// LoadOptions returns the options passed to the CSV loaders.
func (config *DatasetConfig) LoadOptions() dataset.LoadOptions {
	return dataset.LoadOptions{
		GenreSeparator: config.GenreSeparator,
		NoGenres:       config.NoGenres,
	}
}

type RecommendConfig struct {
	NumRecommendations int `mapstructure:"num_recommendations" validate:"gt=0"`
	MinReviews         int `mapstructure:"min_reviews" validate:"gte=0"`
	NumTopRated        int `mapstructure:"num_top_rated" validate:"gt=0"`
	NumJobs            int `mapstructure:"num_jobs" validate:"gt=0"`
	DistributionBins   int `mapstructure:"distribution_bins" validate:"gt=0"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Movies:         "movies.csv",
			Ratings:        "ratings.csv",
			GenreSeparator: dataset.DefaultGenreSeparator,
			NoGenres:       dataset.DefaultNoGenres,
		},
		Recommend: RecommendConfig{
			NumRecommendations: 5,
			MinReviews:         100,
			NumTopRated:        10,
			NumJobs:            1,
			DistributionBins:   10,
		},
	}
}

func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("database", func(fl validator.FieldLevel) bool {
		prefixes := []string{
			storage.MySQLPrefix,
			storage.PostgresPrefix,
			storage.PostgreSQLPrefix,
			storage.SQLitePrefix,
			storage.MongoPrefix,
			storage.MongoSrvPrefix,
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(fl.Field().String(), prefix) {
				return true
			}
		}
		return false
	}); err != nil {
		return errors.Trace(err)
	}
	if err := validate.Struct(config); err != nil {
		return errors.NewNotValid(err, "invalid config")
	}
	return nil
}

func setDefault() {
	defaultConfig := GetDefaultConfig()
	// [dataset]
	viper.SetDefault("dataset.movies", defaultConfig.Dataset.Movies)
	viper.SetDefault("dataset.ratings", defaultConfig.Dataset.Ratings)
	viper.SetDefault("dataset.database", defaultConfig.Dataset.Database)
	viper.SetDefault("dataset.table_prefix", defaultConfig.Dataset.TablePrefix)
	viper.SetDefault("dataset.genre_separator", defaultConfig.Dataset.GenreSeparator)
	viper.SetDefault("dataset.no_genres", defaultConfig.Dataset.NoGenres)
	// [recommend]
	viper.SetDefault("recommend.num_recommendations", defaultConfig.Recommend.NumRecommendations)
	viper.SetDefault("recommend.min_reviews", defaultConfig.Recommend.MinReviews)
	viper.SetDefault("recommend.num_top_rated", defaultConfig.Recommend.NumTopRated)
	viper.SetDefault("recommend.num_jobs", defaultConfig.Recommend.NumJobs)
	viper.SetDefault("recommend.distribution_bins", defaultConfig.Recommend.DistributionBins)
}

type configBinding struct {
	key string
	env string
}

// LoadConfig loads configuration from a TOML file. Defaults fill missing keys and
// environment variables override the file. An empty path loads defaults only.
func LoadConfig(path string) (*Config, error) {
	// set default config
	setDefault()

	// bind environment bindings
	bindings := []configBinding{
		{"dataset.movies", "MOVIEREC_MOVIES"},
		{"dataset.ratings", "MOVIEREC_RATINGS"},
		{"dataset.database", "MOVIEREC_DATABASE"},
		{"dataset.table_prefix", "MOVIEREC_TABLE_PREFIX"},
		{"recommend.num_recommendations", "MOVIEREC_NUM_RECOMMENDATIONS"},
		{"recommend.min_reviews", "MOVIEREC_MIN_REVIEWS"},
		{"recommend.num_jobs", "MOVIEREC_NUM_JOBS"},
	}
	for _, binding := range bindings {
		if err := viper.BindEnv(binding.key, binding.env); err != nil {
			log.Logger().Fatal("failed to bind a Viper key to a ENV variable", zap.Error(err))
		}
	}

	// load config file
	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}

	// unmarshal config file
	var conf Config
	if err := viper.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}
