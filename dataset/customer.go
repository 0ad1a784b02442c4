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

package dataset

import (
	"sort"
	"time"
)

// CustomerPeriod is the span between the first and the last purchase of a customer.
type CustomerPeriod struct {
	CustomerID string
	Start      time.Time
	End        time.Time
	// Days counts both ends, so a single shopping day is a period of one day.
	Days int
}

// CustomerPeriods summarizes purchase periods, longest first. Customers with equal
// periods are ordered by id.
func CustomerPeriods(records []Record) []CustomerPeriod {
	index := make(map[string]int)
	var periods []CustomerPeriod
	for _, record := range records {
		i, ok := index[record.CustomerID]
		if !ok {
			index[record.CustomerID] = len(periods)
			periods = append(periods, CustomerPeriod{
				CustomerID: record.CustomerID,
				Start:      record.Date,
				End:        record.Date,
			})
			continue
		}
		if record.Date.Before(periods[i].Start) {
			periods[i].Start = record.Date
		}
		if record.Date.After(periods[i].End) {
			periods[i].End = record.Date
		}
	}
	for i := range periods {
		periods[i].Days = int(periods[i].End.Sub(periods[i].Start)/(24*time.Hour)) + 1
	}
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Days != periods[j].Days {
			return periods[i].Days > periods[j].Days
		}
		return periods[i].CustomerID < periods[j].CustomerID
	})
	return periods
}
