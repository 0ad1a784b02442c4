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
	"fmt"
	"os"

	"github.com/gorse-io/arules/base/log"
	"github.com/gorse-io/arules/cmd/version"
	"github.com/gorse-io/arules/config"
	"github.com/gorse-io/arules/dataset"
	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:          "gorse-rules",
		Short:        "Association rule recommender for purchase baskets.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// setup logger
			debug, _ := cmd.Flags().GetBool("debug")
			log.SetLogger(cmd.Flags(), debug)
		},
	}
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.PersistentFlags().StringP("data", "d", "", "purchase log path (overrides dataset.path)")
	rootCommand.PersistentFlags().Bool("skip-empty", false, "drop transactions without items")
	rootCommand.PersistentFlags().Float64("min-support", 0, "minimum support of frequent itemsets")
	rootCommand.PersistentFlags().Float64("min-threshold", 0, "minimum value of the rule metric")
	rootCommand.PersistentFlags().String("rule-metric", "", "metric used to filter rules")
	rootCommand.PersistentFlags().Int("max-length", 0, "maximum length of frequent itemsets (0 for unlimited)")
	rootCommand.PersistentFlags().Int("jobs", 0, "number of mining jobs")
	rootCommand.AddCommand(
		newMineCommand(),
		newRecommendCommand(),
		newCustomersCommand(),
		newVersionCommand(),
	)
	return rootCommand
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version of gorse-rules",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), version.BuildInfo())
		},
	}
}

// loadConfig loads the config file and applies flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	if configPath != "" {
		log.Logger().Info("load config", zap.String("config", configPath))
	}
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Annotate(err, "failed to load config")
	}
	if flags.Changed("data") {
		conf.Dataset.Path, _ = flags.GetString("data")
	}
	if flags.Changed("skip-empty") {
		conf.Dataset.SkipEmpty, _ = flags.GetBool("skip-empty")
	}
	if flags.Changed("min-support") {
		conf.Mining.MinSupport, _ = flags.GetFloat64("min-support")
	}
	if flags.Changed("min-threshold") {
		conf.Mining.MinThreshold, _ = flags.GetFloat64("min-threshold")
	}
	if flags.Changed("rule-metric") {
		conf.Mining.Metric, _ = flags.GetString("rule-metric")
	}
	if flags.Changed("max-length") {
		conf.Mining.MaxLength, _ = flags.GetInt("max-length")
	}
	if flags.Changed("jobs") {
		conf.Mining.NumJobs, _ = flags.GetInt("jobs")
	}
	if err = conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return conf, nil
}

// loadLog reads the purchase log with a progress bar on stderr.
func loadLog(conf *config.Config) (*dataset.Log, error) {
	if conf.Dataset.Path == "" {
		return nil, errors.NotValidf("empty dataset path")
	}
	file, err := os.Open(conf.Dataset.Path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	stat, err := file.Stat()
	if err != nil {
		return nil, errors.Trace(err)
	}
	pbReader := progressbar.NewReader(file, progressbar.DefaultBytes(
		stat.Size(),
		"Loading purchase log",
	))
	purchases, err := dataset.LoadCSV(&pbReader, conf.Dataset.CSVOptions())
	if err != nil {
		return nil, errors.Annotatef(err, "failed to load %s", conf.Dataset.Path)
	}
	log.Logger().Info("load purchase log",
		zap.String("path", conf.Dataset.Path),
		zap.Int("n_records", len(purchases.Records)),
		zap.Int("n_transactions", len(purchases.Transactions)))
	return purchases, nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
