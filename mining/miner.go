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
	"context"
	"math"

	"github.com/bits-and-blooms/bitset"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/arules/common/parallel"
	"github.com/gorse-io/arules/dataset"
	"github.com/juju/errors"
)

// rows between two cancellation checks inside a counting shard
const checkInterval = 4096

// Miner finds frequent itemsets level by level. A candidate of size k is only counted
// if all of its subsets of size k-1 are frequent.
type Miner struct {
	minSupport    float64
	maxLength     int
	maxCandidates int
	jobs          int
}

type MinerOption func(*Miner)

// WithMaxLength fails mining once itemsets longer than n would be counted. Zero means
// no limit.
func WithMaxLength(n int) MinerOption {
	return func(m *Miner) {
		m.maxLength = n
	}
}

// WithMaxCandidates fails mining once a level produces more than n candidates. Zero
// means no limit.
func WithMaxCandidates(n int) MinerOption {
	return func(m *Miner) {
		m.maxCandidates = n
	}
}

// WithJobs sets the number of counting workers.
func WithJobs(n int) MinerOption {
	return func(m *Miner) {
		m.jobs = n
	}
}

func NewMiner(minSupport float64, opts ...MinerOption) (*Miner, error) {
	if !(minSupport > 0 && minSupport <= 1) {
		return nil, errors.NotValidf("min support %v outside (0, 1]", minSupport)
	}
	m := &Miner{minSupport: minSupport, jobs: 1}
	for _, opt := range opts {
		opt(m)
	}
	if m.maxLength < 0 {
		return nil, errors.NotValidf("max length %d", m.maxLength)
	}
	if m.maxCandidates < 0 {
		return nil, errors.NotValidf("max candidates %d", m.maxCandidates)
	}
	if m.jobs < 1 {
		m.jobs = 1
	}
	return m, nil
}

// MinCount returns the smallest support count c with c/total >= min support. The
// float product is corrected in both directions so that a support exactly on the
// threshold is never rejected by rounding.
func (m *Miner) MinCount(total int) int {
	if total <= 0 {
		return 1
	}
	n := float64(total)
	c := int(math.Ceil(m.minSupport * n))
	for c > 1 && float64(c-1)/n >= m.minSupport {
		c--
	}
	for c < total && float64(c)/n < m.minSupport {
		c++
	}
	return max(c, 1)
}

type candidate struct {
	items []int32
	bits  *bitset.BitSet
}

// Mine returns all itemsets whose support count reaches MinCount.
func (m *Miner) Mine(ctx context.Context, encoded *dataset.Encoded) (*FrequentItemsets, error) {
	total := encoded.Len()
	if total == 0 {
		return newFrequentItemsets(0, nil), nil
	}
	numItems := encoded.Catalog.Count()
	threshold := m.MinCount(total)
	shards := parallel.Split(encoded.Rows, m.jobs)

	// level 1
	itemCounts, err := m.countItems(ctx, shards, numItems)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var (
		frequent      []Itemset
		level         []Itemset
		frequentItems []int32
	)
	for id, count := range itemCounts {
		if count >= threshold {
			level = append(level, Itemset{Items: []int32{int32(id)}, Count: count})
			frequentItems = append(frequentItems, int32(id))
		}
	}

	// level k
	for k := 2; len(level) > 0; k++ {
		frequent = append(frequent, level...)
		if k > numItems {
			break
		}
		if err = ctx.Err(); err != nil {
			return nil, errors.Trace(err)
		}
		limit := -1
		if m.maxCandidates > 0 {
			limit = m.maxCandidates
		}
		tooLong := m.maxLength > 0 && k > m.maxLength
		if tooLong {
			limit = 0
		}
		candidates, exceeded := generateCandidates(level, frequentItems, numItems, limit)
		if exceeded && tooLong {
			return nil, errors.QuotaLimitExceededf("itemsets of length %d exceed max length %d", k, m.maxLength)
		} else if exceeded {
			return nil, errors.QuotaLimitExceededf("candidates of length %d exceed max candidates %d",
				k, m.maxCandidates)
		}
		if len(candidates) == 0 {
			break
		}
		counts, err := m.countCandidates(ctx, shards, candidates, k)
		if err != nil {
			return nil, errors.Trace(err)
		}
		level = nil
		for i, c := range candidates {
			if counts[i] >= threshold {
				level = append(level, Itemset{Items: c.items, Count: counts[i]})
			}
		}
	}
	return newFrequentItemsets(total, frequent), nil
}

// generateCandidates extends each frequent itemset with frequent items larger than its
// last member and drops extensions with an infrequent subset. Generation stops and
// reports exceeded as soon as more than limit candidates survive; a negative limit
// means no limit.
func generateCandidates(level []Itemset, frequentItems []int32, numItems int, limit int) ([]candidate, bool) {
	keys := mapset.NewThreadUnsafeSetWithSize[string](len(level))
	for _, itemset := range level {
		keys.Add(itemsetKey(itemset.Items))
	}
	var candidates []candidate
	subset := make([]int32, 0, len(level[0].Items))
	for _, itemset := range level {
		last := itemset.Items[len(itemset.Items)-1]
		for _, item := range frequentItems {
			if item <= last {
				continue
			}
			items := make([]int32, len(itemset.Items)+1)
			copy(items, itemset.Items)
			items[len(itemset.Items)] = item
			// the subset without the new item is the itemset itself
			pruned := false
			for skip := 0; skip < len(itemset.Items); skip++ {
				subset = subset[:0]
				subset = append(subset, items[:skip]...)
				subset = append(subset, items[skip+1:]...)
				if !keys.Contains(itemsetKey(subset)) {
					pruned = true
					break
				}
			}
			if pruned {
				continue
			}
			if limit >= 0 && len(candidates) >= limit {
				return nil, true
			}
			bits := bitset.New(uint(numItems))
			for _, id := range items {
				bits.Set(uint(id))
			}
			candidates = append(candidates, candidate{items: items, bits: bits})
		}
	}
	return candidates, false
}

// countItems counts single items. Each shard owns its counters; they are summed after
// all shards finish.
func (m *Miner) countItems(ctx context.Context, shards [][]*bitset.BitSet, numItems int) ([]int, error) {
	partial := make([][]int, len(shards))
	err := parallel.Parallel(ctx, len(shards), m.jobs, func(_, shard int) error {
		counts := make([]int, numItems)
		for i, row := range shards[shard] {
			if i%checkInterval == 0 && ctx.Err() != nil {
				return ctx.Err()
			}
			for id, ok := row.NextSet(0); ok; id, ok = row.NextSet(id + 1) {
				counts[id]++
			}
		}
		partial[shard] = counts
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return sumCounts(partial, numItems), nil
}

// countCandidates counts candidates of size k with subset tests against every row.
func (m *Miner) countCandidates(ctx context.Context, shards [][]*bitset.BitSet, candidates []candidate, k int) ([]int, error) {
	partial := make([][]int, len(shards))
	err := parallel.Parallel(ctx, len(shards), m.jobs, func(_, shard int) error {
		counts := make([]int, len(candidates))
		for i, row := range shards[shard] {
			if i%checkInterval == 0 && ctx.Err() != nil {
				return ctx.Err()
			}
			if row.Count() < uint(k) {
				continue
			}
			for j, c := range candidates {
				if row.IsSuperSet(c.bits) {
					counts[j]++
				}
			}
		}
		partial[shard] = counts
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return sumCounts(partial, len(candidates)), nil
}

func sumCounts(partial [][]int, n int) []int {
	counts := make([]int, n)
	for _, p := range partial {
		for i, c := range p {
			counts[i] += c
		}
	}
	return counts
}
