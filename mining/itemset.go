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

package mining

import (
	"slices"
	"strconv"
	"strings"
)

// Itemset is a set of item ids in ascending order and the number of transactions
// containing all of them.
type Itemset struct {
	Items []int32
	Count int
}

// Support returns Count/total.
func (s Itemset) Support(total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(s.Count) / float64(total)
}

func itemsetKey(items []int32) string {
	var builder strings.Builder
	for i, item := range items {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(strconv.FormatInt(int64(item), 10))
	}
	return builder.String()
}

// FrequentItemsets is the output of a mining run. Itemsets are ordered by size, then
// by item ids.
type FrequentItemsets struct {
	total    int
	itemsets []Itemset
	index    map[string]int
}

func newFrequentItemsets(total int, itemsets []Itemset) *FrequentItemsets {
	slices.SortFunc(itemsets, func(a, b Itemset) int {
		if len(a.Items) != len(b.Items) {
			return len(a.Items) - len(b.Items)
		}
		return slices.Compare(a.Items, b.Items)
	})
	index := make(map[string]int, len(itemsets))
	for i, itemset := range itemsets {
		index[itemsetKey(itemset.Items)] = i
	}
	return &FrequentItemsets{total: total, itemsets: itemsets, index: index}
}

// Total returns the number of mined transactions.
func (f *FrequentItemsets) Total() int {
	return f.total
}

// Len returns the number of frequent itemsets.
func (f *FrequentItemsets) Len() int {
	return len(f.itemsets)
}

// Itemsets returns a copy of all frequent itemsets.
func (f *FrequentItemsets) Itemsets() []Itemset {
	return slices.Clone(f.itemsets)
}

// MaxLength returns the size of the largest frequent itemset.
func (f *FrequentItemsets) MaxLength() int {
	if len(f.itemsets) == 0 {
		return 0
	}
	return len(f.itemsets[len(f.itemsets)-1].Items)
}

// Count returns the support count of an itemset. The second result is false if the
// itemset is not frequent.
func (f *FrequentItemsets) Count(items ...int32) (int, bool) {
	sorted := slices.Clone(items)
	slices.Sort(sorted)
	return f.count(slices.Compact(sorted))
}

// Support returns the support of an itemset. The second result is false if the itemset
// is not frequent.
func (f *FrequentItemsets) Support(items ...int32) (float64, bool) {
	count, ok := f.Count(items...)
	if !ok {
		return 0, false
	}
	return float64(count) / float64(f.total), true
}

// count looks up ids that are already sorted and distinct.
func (f *FrequentItemsets) count(items []int32) (int, bool) {
	i, ok := f.index[itemsetKey(items)]
	if !ok {
		return 0, false
	}
	return f.itemsets[i].Count, true
}
