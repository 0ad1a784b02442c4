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
	"testing"

	"github.com/gorse-io/arules/base/log"
	"github.com/gorse-io/arules/config"
	"github.com/gorse-io/arules/dataset"
	"github.com/gorse-io/arules/mining"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PipelineTestSuite struct {
	suite.Suite
	config *config.Config
}

func (suite *PipelineTestSuite) SetupSuite() {
	log.CloseLogger()
}

func (suite *PipelineTestSuite) SetupTest() {
	suite.config = config.GetDefaultConfig()
	suite.config.Mining.MinSupport = 0.4
	suite.config.Mining.MinThreshold = 0.5
	suite.config.Mining.Metric = string(mining.MetricConfidence)
	suite.config.Mining.NumJobs = 2
}

func (suite *PipelineTestSuite) TestFit() {
	model, err := Fit(context.Background(), suite.config, groceries())
	suite.Require().NoError(err)
	suite.Equal(5, model.Encoded.Len())
	suite.Equal(4, model.Encoded.Catalog.Count())
	suite.Equal(7, model.Frequent.Len())
	suite.Len(model.Rules, 12)
	suite.Equal(12, model.Index.NumRules())
	suite.Equal(float64(12), testutil.ToFloat64(RulesTotal))
	suite.Equal(float64(7), testutil.ToFloat64(FrequentItemsetsTotal))

	recommended, err := model.Index.Lookup("A", mining.MetricConfidence, 5)
	suite.NoError(err)
	suite.Equal([]string{"B", "B", "C", "B", "C"}, recommended)
}

func (suite *PipelineTestSuite) TestFitDistinct() {
	suite.config.Recommend.Distinct = true
	model, err := Fit(context.Background(), suite.config, groceries())
	suite.Require().NoError(err)
	suite.True(model.Index.Distinct())
	recommended, err := model.Index.Lookup("A", mining.MetricConfidence, 5)
	suite.NoError(err)
	suite.Equal([]string{"B", "C"}, recommended)
}

func (suite *PipelineTestSuite) TestFitThreshold() {
	suite.config.Mining.MinThreshold = 0.7
	model, err := Fit(context.Background(), suite.config, groceries())
	suite.Require().NoError(err)
	suite.Len(model.Rules, 5)
	for _, rule := range model.Rules {
		suite.GreaterOrEqual(rule.Confidence, 0.7)
	}
}

func (suite *PipelineTestSuite) TestFitEmptyTransactions() {
	transactions := append(groceries(), dataset.Transaction{ID: "6", Items: []string{" "}})
	_, err := Fit(context.Background(), suite.config, transactions)
	suite.True(errors.Is(err, errors.BadRequest))

	suite.config.Dataset.SkipEmpty = true
	model, err := Fit(context.Background(), suite.config, transactions)
	suite.Require().NoError(err)
	suite.Equal(5, model.Encoded.Len())
	suite.Len(model.Rules, 12)
}

func (suite *PipelineTestSuite) TestFitInvalidConfig() {
	suite.config.Mining.MinSupport = 0
	_, err := Fit(context.Background(), suite.config, groceries())
	suite.True(errors.Is(err, errors.NotValid))
}

func (suite *PipelineTestSuite) TestFitResourceExceeded() {
	suite.config.Mining.MaxLength = 2
	_, err := Fit(context.Background(), suite.config, groceries())
	suite.True(errors.Is(err, errors.QuotaLimitExceeded))
}

func (suite *PipelineTestSuite) TestFitCanceled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Fit(ctx, suite.config, groceries())
	suite.ErrorIs(err, context.Canceled)
}

func (suite *PipelineTestSuite) TestRecommenderFit() {
	recommender, err := NewRecommender(suite.config.Recommend)
	suite.Require().NoError(err)
	model, err := recommender.Fit(context.Background(), suite.config, groceries())
	suite.Require().NoError(err)
	suite.Same(model.Index, recommender.Index())
	recommended, err := recommender.Recommend("C")
	suite.NoError(err)
	suite.Equal([]string{"B", "B", "A", "A", "A"}, recommended)
}

func TestPipeline(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func TestFitEmptyLog(t *testing.T) {
	cfg := config.GetDefaultConfig()
	model, err := Fit(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Zero(t, model.Encoded.Len())
	assert.Zero(t, model.Frequent.Len())
	assert.Empty(t, model.Rules)
}
