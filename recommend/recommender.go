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
	"fmt"
	"slices"
	"time"

	"github.com/gorse-io/arules/base/log"
	"github.com/gorse-io/arules/config"
	"github.com/gorse-io/arules/dataset"
	"github.com/gorse-io/arules/mining"
	"github.com/jellydator/ttlcache/v3"
	"github.com/juju/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type snapshot struct {
	index *Index
	cache *ttlcache.Cache[string, []string]
}

// Recommender serves lookups from the latest index. Fit and Swap replace the index
// atomically, so lookups never observe a partially built index.
type Recommender struct {
	config  config.RecommendConfig
	metric  mining.Metric
	current *atomic.Pointer[snapshot]
}

func NewRecommender(cfg config.RecommendConfig) (*Recommender, error) {
	metric, err := mining.ParseMetric(cfg.Metric)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if cfg.TopN <= 0 {
		return nil, errors.NotValidf("top n %d", cfg.TopN)
	}
	return &Recommender{
		config:  cfg,
		metric:  metric,
		current: atomic.NewPointer[snapshot](nil),
	}, nil
}

// Swap publishes a new index. Cached results of the previous index are dropped.
func (r *Recommender) Swap(index *Index) {
	s := &snapshot{index: index}
	if r.config.CacheSize > 0 {
		s.cache = ttlcache.New(
			ttlcache.WithTTL[string, []string](r.config.CacheTTL),
			ttlcache.WithCapacity[string, []string](uint64(r.config.CacheSize)),
		)
	}
	r.current.Store(s)
}

// Index returns the published index or nil.
func (r *Recommender) Index() *Index {
	if s := r.current.Load(); s != nil {
		return s.index
	}
	return nil
}

// Fit trains a model from transactions and publishes its index.
func (r *Recommender) Fit(ctx context.Context, cfg *config.Config, transactions []dataset.Transaction) (*Model, error) {
	model, err := Fit(ctx, cfg, transactions)
	if err != nil {
		return nil, errors.Trace(err)
	}
	r.Swap(model.Index)
	log.Logger().Info("publish recommendation index",
		zap.Int("n_items", model.Encoded.Catalog.Count()),
		zap.Int("n_rules", len(model.Rules)))
	return model, nil
}

// Recommend looks up an item with the configured metric and list size.
func (r *Recommender) Recommend(item string) ([]string, error) {
	return r.Lookup(item, r.metric, r.config.TopN)
}

func (r *Recommender) Lookup(item string, metric mining.Metric, topN int) ([]string, error) {
	start := time.Now()
	defer func() {
		LookupSeconds.Observe(time.Since(start).Seconds())
	}()
	s := r.current.Load()
	if s == nil {
		LookupTotalVec.WithLabelValues(StatusInvalid).Inc()
		return nil, errors.NotProvisionedf("recommendation index")
	}
	key := fmt.Sprintf("%s\x00%s\x00%d", item, metric, topN)
	if s.cache != nil {
		if cached := s.cache.Get(key); cached != nil {
			CacheHitsTotal.Inc()
			r.observe(cached.Value(), nil)
			return slices.Clone(cached.Value()), nil
		}
		CacheMissesTotal.Inc()
	}
	recommended, err := s.index.Lookup(item, metric, topN)
	r.observe(recommended, err)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if s.cache != nil {
		s.cache.Set(key, slices.Clone(recommended), ttlcache.DefaultTTL)
	}
	return recommended, nil
}

func (r *Recommender) observe(recommended []string, err error) {
	switch {
	case errors.Is(err, errors.NotFound):
		LookupTotalVec.WithLabelValues(StatusUnknown).Inc()
	case err != nil:
		LookupTotalVec.WithLabelValues(StatusInvalid).Inc()
	case len(recommended) == 0:
		LookupTotalVec.WithLabelValues(StatusEmpty).Inc()
	default:
		LookupTotalVec.WithLabelValues(StatusOK).Inc()
	}
}
