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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelStage  = "stage"
	LabelStatus = "status"

	StageEncode   = "encode"
	StageMine     = "mine"
	StageGenerate = "generate"
	StageIndex    = "index"

	StatusOK      = "ok"
	StatusEmpty   = "empty"
	StatusUnknown = "unknown_item"
	StatusInvalid = "invalid"
)

var (
	FitStepSecondsVec = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "arules",
		Subsystem: "fit",
		Name:      "step_seconds",
	}, []string{LabelStage})
	FitTotalSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "arules",
		Subsystem: "fit",
		Name:      "total_seconds",
	})
	TransactionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "arules",
		Subsystem: "fit",
		Name:      "transactions_total",
	})
	ItemsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "arules",
		Subsystem: "fit",
		Name:      "items_total",
	})
	FrequentItemsetsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "arules",
		Subsystem: "fit",
		Name:      "frequent_itemsets_total",
	})
	RulesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "arules",
		Subsystem: "fit",
		Name:      "rules_total",
	})

	LookupSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "arules",
		Subsystem: "recommend",
		Name:      "lookup_seconds",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
	})
	LookupTotalVec = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arules",
		Subsystem: "recommend",
		Name:      "lookup_total",
	}, []string{LabelStatus})
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arules",
		Subsystem: "recommend",
		Name:      "cache_hits_total",
	})
	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arules",
		Subsystem: "recommend",
		Name:      "cache_misses_total",
	})
)
