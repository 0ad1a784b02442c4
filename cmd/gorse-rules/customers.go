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
	"time"

	"github.com/gorse-io/arules/dataset"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newCustomersCommand() *cobra.Command {
	customersCommand := &cobra.Command{
		Use:   "customers",
		Short: "Report the purchase period of every customer",
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
			limit, _ := cmd.Flags().GetInt("limit")
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("customer", "first purchase", "last purchase", "days")
			for _, period := range limitRows(dataset.CustomerPeriods(purchases.Records), limit) {
				if err = table.Append([]string{
					period.CustomerID,
					period.Start.Format(time.DateOnly),
					period.End.Format(time.DateOnly),
					strconv.Itoa(period.Days),
				}); err != nil {
					return errors.Trace(err)
				}
			}
			return table.Render()
		},
	}
	customersCommand.Flags().Int("limit", 20, "maximum number of customers to print (0 for all)")
	return customersCommand
}
