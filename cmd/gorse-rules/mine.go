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
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/gorse-io/arules/dataset"
	"github.com/gorse-io/arules/mining"
	"github.com/gorse-io/arules/recommend"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newMineCommand() *cobra.Command {
	mineCommand := &cobra.Command{
		Use:   "mine",
		Short: "Mine frequent itemsets and association rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return errors.Trace(err)
			}
			purchases, err := loadLog(conf)
			if err != nil {
				return errors.Trace(err)
			}
			model, err := recommend.Fit(cmd.Context(), conf, purchases.Transactions)
			if err != nil {
				return errors.Trace(err)
			}
			limit, _ := cmd.Flags().GetInt("limit")
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "transactions: %d, items: %d, frequent itemsets: %d, rules: %d\n",
				model.Encoded.Len(), model.Encoded.Catalog.Count(), model.Frequent.Len(), len(model.Rules))
			if showItemsets, _ := cmd.Flags().GetBool("itemsets"); showItemsets {
				if err = renderItemsets(out, model.Encoded.Catalog, model.Frequent, limit); err != nil {
					return errors.Trace(err)
				}
			}
			return renderRules(out, model.Encoded.Catalog, model.Rules, mining.Metric(conf.Mining.Metric), limit)
		},
	}
	mineCommand.Flags().Int("limit", 20, "maximum number of rows to print (0 for all)")
	mineCommand.Flags().Bool("itemsets", false, "print frequent itemsets")
	return mineCommand
}

func limitRows[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatItems(catalog *dataset.Catalog, ids []int32) string {
	return strings.Join(catalog.Names(ids), ", ")
}

func renderItemsets(w io.Writer, catalog *dataset.Catalog, frequent *mining.FrequentItemsets, limit int) error {
	itemsets := frequent.Itemsets()
	slices.SortStableFunc(itemsets, func(a, b mining.Itemset) int {
		return cmp.Compare(b.Count, a.Count)
	})
	table := tablewriter.NewWriter(w)
	table.Header("itemset", "count", "support")
	for _, itemset := range limitRows(itemsets, limit) {
		if err := table.Append([]string{
			formatItems(catalog, itemset.Items),
			strconv.Itoa(itemset.Count),
			formatFloat(itemset.Support(frequent.Total())),
		}); err != nil {
			return errors.Trace(err)
		}
	}
	return table.Render()
}

// renderRules prints rules ranked by metric, best first.
func renderRules(w io.Writer, catalog *dataset.Catalog, rules []mining.Rule, metric mining.Metric, limit int) error {
	rules = slices.Clone(rules)
	slices.SortStableFunc(rules, func(a, b mining.Rule) int {
		return cmp.Compare(b.Value(metric), a.Value(metric))
	})
	table := tablewriter.NewWriter(w)
	table.Header("antecedents", "consequents", "support", "confidence", "lift", "leverage", "conviction")
	rows := lo.Map(limitRows(rules, limit), func(rule mining.Rule, _ int) []string {
		return []string{
			formatItems(catalog, rule.Antecedent),
			formatItems(catalog, rule.Consequent),
			formatFloat(rule.Support),
			formatFloat(rule.Confidence),
			formatFloat(rule.Lift),
			formatFloat(rule.Leverage),
			formatFloat(rule.Conviction),
		}
	})
	if err := table.Bulk(rows); err != nil {
		return errors.Trace(err)
	}
	return table.Render()
}
