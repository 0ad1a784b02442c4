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
	"strings"

	"github.com/gorse-io/arules/common/parallel"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Metric names a rule interestingness measure.
type Metric string

const (
	MetricSupport    Metric = "support"
	MetricConfidence Metric = "confidence"
	MetricLift       Metric = "lift"
	MetricLeverage   Metric = "leverage"
	MetricConviction Metric = "conviction"
)

// Metrics lists every supported metric.
var Metrics = []Metric{MetricSupport, MetricConfidence, MetricLift, MetricLeverage, MetricConviction}

func ParseMetric(name string) (Metric, error) {
	metric := Metric(strings.ToLower(strings.TrimSpace(name)))
	if !lo.Contains(Metrics, metric) {
		return "", errors.NotValidf("metric %q", name)
	}
	return metric, nil
}

// Rule is an association rule Antecedent -> Consequent. Both sides are disjoint,
// sorted, and their union is a frequent itemset.
type Rule struct {
	Antecedent        []int32
	Consequent        []int32
	AntecedentSupport float64
	ConsequentSupport float64
	Support           float64
	Confidence        float64
	Lift              float64
	Leverage          float64
	// Conviction is +Inf when the confidence is exactly one.
	Conviction float64
}

// Value returns the given metric of the rule.
func (r *Rule) Value(metric Metric) float64 {
	switch metric {
	case MetricSupport:
		return r.Support
	case MetricConfidence:
		return r.Confidence
	case MetricLift:
		return r.Lift
	case MetricLeverage:
		return r.Leverage
	case MetricConviction:
		return r.Conviction
	}
	return math.NaN()
}

func newRule(antecedent, consequent []int32, count, antecedentCount, consequentCount, total int) Rule {
	n := float64(total)
	rule := Rule{
		Antecedent:        antecedent,
		Consequent:        consequent,
		AntecedentSupport: float64(antecedentCount) / n,
		ConsequentSupport: float64(consequentCount) / n,
		Support:           float64(count) / n,
		Confidence:        float64(count) / float64(antecedentCount),
	}
	rule.Lift = rule.Confidence / rule.ConsequentSupport
	rule.Leverage = rule.Support - rule.AntecedentSupport*rule.ConsequentSupport
	if count == antecedentCount {
		rule.Conviction = math.Inf(1)
	} else {
		rule.Conviction = (1 - rule.ConsequentSupport) / (1 - rule.Confidence)
	}
	return rule
}

// RuleGenerator derives rules from frequent itemsets and keeps those whose metric
// reaches the threshold.
type RuleGenerator struct {
	metric       Metric
	minThreshold float64
	jobs         int
}

type GeneratorOption func(*RuleGenerator)

// WithGeneratorJobs sets the number of workers deriving rules.
func WithGeneratorJobs(n int) GeneratorOption {
	return func(g *RuleGenerator) {
		g.jobs = n
	}
}

func NewRuleGenerator(metric Metric, minThreshold float64, opts ...GeneratorOption) (*RuleGenerator, error) {
	metric, err := ParseMetric(string(metric))
	if err != nil {
		return nil, errors.Trace(err)
	}
	if math.IsNaN(minThreshold) || minThreshold < 0 {
		return nil, errors.NotValidf("min threshold %v", minThreshold)
	}
	g := &RuleGenerator{metric: metric, minThreshold: minThreshold, jobs: 1}
	for _, opt := range opts {
		opt(g)
	}
	if g.jobs < 1 {
		g.jobs = 1
	}
	return g, nil
}

// maxRuleLength bounds the subset masks of one itemset.
const maxRuleLength = 62

// Generate enumerates every non-empty proper subset of each frequent itemset as an
// antecedent. Rules come out grouped by parent itemset, in itemset order.
func (g *RuleGenerator) Generate(ctx context.Context, frequent *FrequentItemsets) ([]Rule, error) {
	buffers := make([][]Rule, len(frequent.itemsets))
	err := parallel.Parallel(ctx, len(frequent.itemsets), g.jobs, func(_, i int) error {
		parent := frequent.itemsets[i]
		if len(parent.Items) < 2 {
			return nil
		}
		if len(parent.Items) > maxRuleLength {
			return errors.QuotaLimitExceededf("itemset of length %d", len(parent.Items))
		}
		buffers[i] = g.derive(frequent, parent)
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return lo.Flatten(buffers), nil
}

func (g *RuleGenerator) derive(frequent *FrequentItemsets, parent Itemset) []Rule {
	var rules []Rule
	size := len(parent.Items)
	full := uint64(1)<<size - 1
	for mask := uint64(1); mask < full; mask++ {
		antecedent := make([]int32, 0, size)
		consequent := make([]int32, 0, size)
		for j, item := range parent.Items {
			if mask&(1<<j) != 0 {
				antecedent = append(antecedent, item)
			} else {
				consequent = append(consequent, item)
			}
		}
		// subsets of frequent itemsets are frequent
		antecedentCount, ok := frequent.count(antecedent)
		if !ok {
			continue
		}
		consequentCount, ok := frequent.count(consequent)
		if !ok {
			continue
		}
		rule := newRule(antecedent, consequent, parent.Count, antecedentCount, consequentCount, frequent.total)
		if rule.Value(g.metric) >= g.minThreshold {
			rules = append(rules, rule)
		}
	}
	return rules
}
