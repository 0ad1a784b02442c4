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

package recommend

import (
	"cmp"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/arules/dataset"
	"github.com/gorse-io/arules/mining"
	"github.com/juju/errors"
)

// ConsequentPolicy decides which consequent items of a rule are recommended.
type ConsequentPolicy string

const (
	// ConsequentFirst recommends only the consequent item with the smallest id.
	ConsequentFirst ConsequentPolicy = "first"
	// ConsequentAll recommends every consequent item.
	ConsequentAll ConsequentPolicy = "all"
)

func ParseConsequentPolicy(name string) (ConsequentPolicy, error) {
	switch policy := ConsequentPolicy(name); policy {
	case ConsequentFirst, ConsequentAll:
		return policy, nil
	}
	return "", errors.NotValidf("consequent policy %q", name)
}

// Index maps every item to the rules containing it in their antecedent, ranked by each
// metric. It is never modified after NewIndex returns.
type Index struct {
	catalog  *dataset.Catalog
	rules    []mining.Rule
	policy   ConsequentPolicy
	distinct bool
	ranked   map[mining.Metric][][]int32
}

type IndexOption func(*Index)

func WithConsequentPolicy(policy ConsequentPolicy) IndexOption {
	return func(index *Index) {
		index.policy = policy
	}
}

// WithDistinct makes Lookup skip items already recommended by a better rule and read
// further rules until topN distinct items are found.
func WithDistinct(distinct bool) IndexOption {
	return func(index *Index) {
		index.distinct = distinct
	}
}

func NewIndex(catalog *dataset.Catalog, rules []mining.Rule, opts ...IndexOption) *Index {
	index := &Index{
		catalog: catalog,
		rules:   rules,
		policy:  ConsequentFirst,
		ranked:  make(map[mining.Metric][][]int32, len(mining.Metrics)),
	}
	for _, opt := range opts {
		opt(index)
	}
	byItem := make([][]int32, catalog.Count())
	for i, rule := range rules {
		for _, item := range rule.Antecedent {
			byItem[item] = append(byItem[item], int32(i))
		}
	}
	for _, metric := range mining.Metrics {
		ranked := make([][]int32, len(byItem))
		for item, matches := range byItem {
			if len(matches) == 0 {
				continue
			}
			ranked[item] = slices.Clone(matches)
			slices.SortFunc(ranked[item], index.compare(metric))
		}
		index.ranked[metric] = ranked
	}
	return index
}

// compare orders rules by metric desc, support desc, consequent ids and antecedent ids.
func (index *Index) compare(metric mining.Metric) func(a, b int32) int {
	return func(a, b int32) int {
		ra, rb := &index.rules[a], &index.rules[b]
		if c := cmp.Compare(rb.Value(metric), ra.Value(metric)); c != 0 {
			return c
		}
		if c := cmp.Compare(rb.Support, ra.Support); c != 0 {
			return c
		}
		if c := slices.Compare(ra.Consequent, rb.Consequent); c != 0 {
			return c
		}
		if c := slices.Compare(ra.Antecedent, rb.Antecedent); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	}
}

func (index *Index) Catalog() *dataset.Catalog {
	return index.catalog
}

func (index *Index) Policy() ConsequentPolicy {
	return index.policy
}

func (index *Index) Distinct() bool {
	return index.distinct
}

// NumRules returns the size of the rule set.
func (index *Index) NumRules() int {
	return len(index.rules)
}

func (index *Index) lookupRules(item string, metric mining.Metric, topN int) ([]int32, int32, error) {
	metric, err := mining.ParseMetric(string(metric))
	if err != nil {
		return nil, 0, errors.Trace(err)
	}
	if topN <= 0 {
		return nil, 0, errors.NotValidf("top n %d", topN)
	}
	id, ok := index.catalog.ID(item)
	if !ok {
		return nil, 0, errors.NotFoundf("item %q", item)
	}
	return index.ranked[metric][id], id, nil
}

// Rules returns at most topN rules whose antecedent contains the item, best first.
func (index *Index) Rules(item string, metric mining.Metric, topN int) ([]mining.Rule, error) {
	ranked, _, err := index.lookupRules(item, metric, topN)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ranked = ranked[:min(topN, len(ranked))]
	rules := make([]mining.Rule, len(ranked))
	for i, r := range ranked {
		rules[i] = index.rules[r]
	}
	return rules, nil
}

// Lookup returns the consequents of the topN best rules whose antecedent contains the
// item, one entry per rule under ConsequentFirst, so an item may appear more than once.
// The result is capped at topN entries. An item without rules gets an empty result; an
// item missing from the catalog is a not found error.
func (index *Index) Lookup(item string, metric mining.Metric, topN int) ([]string, error) {
	ranked, id, err := index.lookupRules(item, metric, topN)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if index.distinct {
		return index.lookupDistinct(ranked, id, topN), nil
	}
	recommended := make([]string, 0, min(topN, len(ranked)))
	for _, r := range ranked[:min(topN, len(ranked))] {
		for _, candidate := range index.consequent(r) {
			name, _ := index.catalog.Name(candidate)
			recommended = append(recommended, name)
		}
	}
	return recommended[:min(topN, len(recommended))], nil
}

// lookupDistinct skips items already recommended and the queried item itself.
func (index *Index) lookupDistinct(ranked []int32, id int32, topN int) []string {
	recommended := make([]string, 0, min(topN, len(ranked)))
	seen := mapset.NewThreadUnsafeSet(id)
	for _, r := range ranked {
		for _, candidate := range index.consequent(r) {
			if !seen.Add(candidate) {
				continue
			}
			name, _ := index.catalog.Name(candidate)
			recommended = append(recommended, name)
			if len(recommended) == topN {
				return recommended
			}
		}
	}
	return recommended
}

func (index *Index) consequent(rule int32) []int32 {
	if index.policy == ConsequentFirst {
		return index.rules[rule].Consequent[:1]
	}
	return index.rules[rule].Consequent
}
