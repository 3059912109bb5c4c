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
	"github.com/gorse-io/movierec/base/log"
	"github.com/gorse-io/movierec/storage"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importCommand = &cobra.Command{
	Use:   "import",
	Short: "Import the CSV movie catalog and rating log into the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd)
		if err != nil {
			return errors.Trace(err)
		}
		if conf.Dataset.Database == "" {
			return errors.NotValidf("empty database")
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		catalog, ratings, err := loadFiles(conf, quiet)
		if err != nil {
			return errors.Trace(err)
		}
		log.Logger().Info("connect to database", zap.String("database", log.RedactDBURL(conf.Dataset.Database)))
		database, err := storage.Open(conf.Dataset.Database, conf.Dataset.TablePrefix)
		if err != nil {
			return errors.Trace(err)
		}
		defer database.Close()
		if purge, _ := cmd.Flags().GetBool("purge"); purge {
			if err = database.Init(); err != nil {
				return errors.Trace(err)
			}
			if err = database.Purge(); err != nil {
				return errors.Trace(err)
			}
		}
		return errors.Trace(storage.Import(cmd.Context(), database, catalog, ratings))
	},
}

func init() {
	importCommand.Flags().Bool("purge", false, "delete stored ratings before importing (the stored catalog is always replaced)")
	rootCommand.AddCommand(importCommand)
}
