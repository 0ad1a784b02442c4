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
	"context"
	"time"

	"github.com/gorse-io/arules/base/log"
	"github.com/gorse-io/arules/config"
	"github.com/gorse-io/arules/dataset"
	"github.com/gorse-io/arules/mining"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Model holds every artifact of a training run.
type Model struct {
	Encoded  *dataset.Encoded
	Frequent *mining.FrequentItemsets
	Rules    []mining.Rule
	Index    *Index
}

// Fit encodes transactions, mines frequent itemsets, derives rules and indexes them.
func Fit(ctx context.Context, cfg *config.Config, transactions []dataset.Transaction) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	metric, err := mining.ParseMetric(cfg.Mining.Metric)
	if err != nil {
		return nil, errors.Trace(err)
	}
	policy, err := ParseConsequentPolicy(cfg.Recommend.Consequents)
	if err != nil {
		return nil, errors.Trace(err)
	}
	miner, err := mining.NewMiner(cfg.Mining.MinSupport, cfg.Mining.MinerOptions()...)
	if err != nil {
		return nil, errors.Trace(err)
	}
	generator, err := mining.NewRuleGenerator(metric, cfg.Mining.MinThreshold,
		mining.WithGeneratorJobs(cfg.Mining.NumJobs))
	if err != nil {
		return nil, errors.Trace(err)
	}
	fitStart := time.Now()

	// encode transactions
	start := time.Now()
	if cfg.Dataset.SkipEmpty {
		var dropped []string
		transactions, dropped = dataset.DropEmpty(transactions)
		if len(dropped) > 0 {
			log.Logger().Warn("drop transactions without items",
				zap.Int("n_dropped", len(dropped)),
				zap.Strings("transaction_ids", lo.Slice(dropped, 0, 10)))
		}
	}
	encoded, err := dataset.Encode(transactions)
	if err != nil {
		return nil, errors.Trace(err)
	}
	FitStepSecondsVec.WithLabelValues(StageEncode).Set(time.Since(start).Seconds())
	TransactionsTotal.Set(float64(encoded.Len()))
	ItemsTotal.Set(float64(encoded.Catalog.Count()))
	log.Logger().Info("encode transactions",
		zap.Int("n_transactions", encoded.Len()),
		zap.Int("n_items", encoded.Catalog.Count()),
		zap.Duration("used_time", time.Since(start)))

	// mine frequent itemsets
	start = time.Now()
	frequent, err := miner.Mine(ctx, encoded)
	if err != nil {
		return nil, errors.Trace(err)
	}
	FitStepSecondsVec.WithLabelValues(StageMine).Set(time.Since(start).Seconds())
	FrequentItemsetsTotal.Set(float64(frequent.Len()))
	log.Logger().Info("mine frequent itemsets",
		zap.Float64("min_support", cfg.Mining.MinSupport),
		zap.Int("min_count", miner.MinCount(encoded.Len())),
		zap.Int("n_itemsets", frequent.Len()),
		zap.Int("max_length", frequent.MaxLength()),
		zap.Duration("used_time", time.Since(start)))

	// generate rules
	start = time.Now()
	rules, err := generator.Generate(ctx, frequent)
	if err != nil {
		return nil, errors.Trace(err)
	}
	FitStepSecondsVec.WithLabelValues(StageGenerate).Set(time.Since(start).Seconds())
	RulesTotal.Set(float64(len(rules)))
	log.Logger().Info("generate association rules",
		zap.String("metric", string(metric)),
		zap.Float64("min_threshold", cfg.Mining.MinThreshold),
		zap.Int("n_rules", len(rules)),
		zap.Duration("used_time", time.Since(start)))

	// build index
	start = time.Now()
	index := NewIndex(encoded.Catalog, rules,
		WithConsequentPolicy(policy),
		WithDistinct(cfg.Recommend.Distinct))
	FitStepSecondsVec.WithLabelValues(StageIndex).Set(time.Since(start).Seconds())
	FitTotalSeconds.Set(time.Since(fitStart).Seconds())
	log.Logger().Debug("build recommendation index", zap.Duration("used_time", time.Since(start)))

	return &Model{
		Encoded:  encoded,
		Frequent: frequent,
		Rules:    rules,
		Index:    index,
	}, nil
}
