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
	"strconv"

	"github.com/gorse-io/arules/mining"
	"github.com/gorse-io/arules/recommend"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const padding = "-"

func newRecommendCommand() *cobra.Command {
	recommendCommand := &cobra.Command{
		Use:   "recommend ITEM",
		Short: "Recommend items bought together with an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return errors.Trace(err)
			}
			if cmd.Flags().Changed("metric") {
				conf.Recommend.Metric, _ = cmd.Flags().GetString("metric")
			}
			if cmd.Flags().Changed("top-n") {
				conf.Recommend.TopN, _ = cmd.Flags().GetInt("top-n")
			}
			recommender, err := recommend.NewRecommender(conf.Recommend)
			if err != nil {
				return errors.Trace(err)
			}
			purchases, err := loadLog(conf)
			if err != nil {
				return errors.Trace(err)
			}
			if _, err = recommender.Fit(cmd.Context(), conf, purchases.Transactions); err != nil {
				return errors.Trace(err)
			}
			items, err := recommender.Recommend(args[0])
			if err != nil {
				return errors.Trace(err)
			}
			if pad, _ := cmd.Flags().GetBool("pad"); pad {
				for len(items) < conf.Recommend.TopN {
					items = append(items, padding)
				}
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("#", "item")
			for i, item := range items {
				if err = table.Append([]string{strconv.Itoa(i + 1), item}); err != nil {
					return errors.Trace(err)
				}
			}
			return table.Render()
		},
	}
	recommendCommand.Flags().String("metric", string(mining.MetricConfidence), "metric used to rank rules")
	recommendCommand.Flags().Int("top-n", 5, "number of recommended items")
	recommendCommand.Flags().Bool("pad", false, "pad the result to top-n rows")
	return recommendCommand
}
