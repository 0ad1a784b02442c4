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
	"math/rand/v2"
	"strconv"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/arules/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// A=0, B=1, C=2
func fiveBaskets(t *testing.T) *dataset.Encoded {
	encoded, err := dataset.Encode([]dataset.Transaction{
		{ID: "1", Items: []string{"A", "B"}},
		{ID: "2", Items: []string{"A", "B", "C"}},
		{ID: "3", Items: []string{"A"}},
		{ID: "4", Items: []string{"B", "C"}},
		{ID: "5", Items: []string{"A", "B", "C"}},
	})
	require.NoError(t, err)
	return encoded
}

func randomBaskets(t *testing.T, seed uint64, numTransactions, numItems int) *dataset.Encoded {
	rng := rand.New(rand.NewPCG(seed, seed))
	transactions := make([]dataset.Transaction, numTransactions)
	for i := range transactions {
		var items []string
		for j := 0; j < numItems; j++ {
			if rng.Float64() < 0.35 {
				items = append(items, strconv.Itoa(j))
			}
		}
		if len(items) == 0 {
			items = append(items, strconv.Itoa(rng.IntN(numItems)))
		}
		transactions[i] = dataset.Transaction{ID: strconv.Itoa(i), Items: items}
	}
	encoded, err := dataset.Encode(transactions)
	require.NoError(t, err)
	return encoded
}

// bruteForce counts every subset of the catalog directly.
func bruteForce(encoded *dataset.Encoded, minCount int) map[string]int {
	numItems := encoded.Catalog.Count()
	result := make(map[string]int)
	for mask := 1; mask < 1<<numItems; mask++ {
		var items []int32
		for j := 0; j < numItems; j++ {
			if mask&(1<<j) != 0 {
				items = append(items, int32(j))
			}
		}
		count := 0
		for row := 0; row < encoded.Len(); row++ {
			contained := true
			for _, item := range items {
				if !encoded.Rows[row].Test(uint(item)) {
					contained = false
					break
				}
			}
			if contained {
				count++
			}
		}
		if count >= minCount {
			result[itemsetKey(items)] = count
		}
	}
	return result
}

type MinerTestSuite struct {
	suite.Suite
}

func (suite *MinerTestSuite) TestNewMinerInvalid() {
	for _, minSupport := range []float64{0, -0.1, 1.01, math.NaN()} {
		_, err := NewMiner(minSupport)
		suite.True(errors.Is(err, errors.NotValid), "min support %v", minSupport)
	}
	_, err := NewMiner(1)
	suite.NoError(err)
	_, err = NewMiner(0.5, WithMaxLength(-1))
	suite.True(errors.Is(err, errors.NotValid))
	_, err = NewMiner(0.5, WithMaxCandidates(-1))
	suite.True(errors.Is(err, errors.NotValid))
}

func (suite *MinerTestSuite) TestMinCount() {
	cases := []struct {
		minSupport float64
		total      int
		expected   int
	}{
		{0.4, 5, 2},
		{0.6, 5, 3},
		{0.7, 10, 7},
		{1, 5, 5},
		{0.1, 3, 1},
		{0.0045, 14963, 68},
	}
	for _, c := range cases {
		miner, err := NewMiner(c.minSupport)
		suite.Require().NoError(err)
		suite.Equal(c.expected, miner.MinCount(c.total), "%v of %d", c.minSupport, c.total)
	}
}

func (suite *MinerTestSuite) TestFiveBaskets() {
	miner, err := NewMiner(0.4)
	suite.Require().NoError(err)
	frequent, err := miner.Mine(context.Background(), fiveBaskets(suite.T()))
	suite.Require().NoError(err)

	suite.Equal(5, frequent.Total())
	suite.Equal(3, frequent.MaxLength())
	suite.Equal([]Itemset{
		{Items: []int32{0}, Count: 4},
		{Items: []int32{1}, Count: 4},
		{Items: []int32{2}, Count: 3},
		{Items: []int32{0, 1}, Count: 3},
		{Items: []int32{0, 2}, Count: 2},
		{Items: []int32{1, 2}, Count: 3},
		{Items: []int32{0, 1, 2}, Count: 2},
	}, frequent.Itemsets())

	support, ok := frequent.Support(0)
	suite.True(ok)
	suite.InDelta(0.8, support, 1e-12)
	support, _ = frequent.Support(1)
	suite.InDelta(0.8, support, 1e-12)
	support, _ = frequent.Support(2)
	suite.InDelta(0.6, support, 1e-12)
	// order and duplicates do not matter
	support, ok = frequent.Support(1, 0, 1)
	suite.True(ok)
	suite.InDelta(0.6, support, 1e-12)
	_, ok = frequent.Support(3)
	suite.False(ok)
}

func (suite *MinerTestSuite) TestPruning() {
	// three pairs are generated at level 2
	miner, err := NewMiner(0.5, WithMaxCandidates(1))
	suite.Require().NoError(err)
	_, err = miner.Mine(context.Background(), fiveBaskets(suite.T()))
	suite.True(errors.Is(err, errors.QuotaLimitExceeded))

	// {A,C} is infrequent at 0.5, so {A,B,C} is never counted
	miner, err = NewMiner(0.5, WithMaxCandidates(3))
	suite.Require().NoError(err)
	frequent, err := miner.Mine(context.Background(), fiveBaskets(suite.T()))
	suite.Require().NoError(err)
	suite.Equal(5, frequent.Len())
	_, ok := frequent.Count(0, 2)
	suite.False(ok)
	_, ok = frequent.Count(0, 1, 2)
	suite.False(ok)
}

func (suite *MinerTestSuite) TestResourceExceeded() {
	miner, err := NewMiner(0.4, WithMaxLength(2))
	suite.Require().NoError(err)
	_, err = miner.Mine(context.Background(), fiveBaskets(suite.T()))
	suite.True(errors.Is(err, errors.QuotaLimitExceeded))

	miner, err = NewMiner(0.4, WithMaxLength(3))
	suite.Require().NoError(err)
	_, err = miner.Mine(context.Background(), fiveBaskets(suite.T()))
	suite.NoError(err)
}

func (suite *MinerTestSuite) TestEmpty() {
	miner, err := NewMiner(0.1)
	suite.Require().NoError(err)
	encoded, err := dataset.Encode(nil)
	suite.Require().NoError(err)
	frequent, err := miner.Mine(context.Background(), encoded)
	suite.NoError(err)
	suite.Zero(frequent.Len())
	suite.Zero(frequent.MaxLength())
}

func (suite *MinerTestSuite) TestCancel() {
	miner, err := NewMiner(0.1, WithJobs(4))
	suite.Require().NoError(err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = miner.Mine(ctx, randomBaskets(suite.T(), 1, 100, 8))
	suite.ErrorIs(err, context.Canceled)
}

func (suite *MinerTestSuite) TestBruteForce() {
	for seed := uint64(0); seed < 5; seed++ {
		encoded := randomBaskets(suite.T(), seed, 60, 9)
		for _, minSupport := range []float64{0.05, 0.1, 0.2, 0.35} {
			for _, jobs := range []int{1, 3} {
				miner, err := NewMiner(minSupport, WithJobs(jobs))
				suite.Require().NoError(err)
				frequent, err := miner.Mine(context.Background(), encoded)
				suite.Require().NoError(err)

				expected := bruteForce(encoded, miner.MinCount(encoded.Len()))
				actual := make(map[string]int)
				for _, itemset := range frequent.Itemsets() {
					actual[itemsetKey(itemset.Items)] = itemset.Count
				}
				suite.Equal(expected, actual, "seed %d, min support %v, jobs %d", seed, minSupport, jobs)
			}
		}
	}
}

func (suite *MinerTestSuite) TestAntiMonotonicity() {
	miner, err := NewMiner(0.05)
	suite.Require().NoError(err)
	frequent, err := miner.Mine(context.Background(), randomBaskets(suite.T(), 42, 80, 10))
	suite.Require().NoError(err)
	for _, itemset := range frequent.Itemsets() {
		suite.GreaterOrEqual(itemset.Count, miner.MinCount(frequent.Total()))
		if len(itemset.Items) < 2 {
			continue
		}
		for skip := range itemset.Items {
			subset := mapset.NewSet(itemset.Items...)
			subset.Remove(itemset.Items[skip])
			count, ok := frequent.Count(subset.ToSlice()...)
			suite.True(ok)
			suite.GreaterOrEqual(count, itemset.Count)
		}
	}
}

func (suite *MinerTestSuite) TestDeterministic() {
	encoded := randomBaskets(suite.T(), 7, 200, 10)
	miner, err := NewMiner(0.05, WithJobs(4))
	suite.Require().NoError(err)
	a, err := miner.Mine(context.Background(), encoded)
	suite.Require().NoError(err)
	b, err := miner.Mine(context.Background(), encoded)
	suite.Require().NoError(err)
	suite.Equal(a.Itemsets(), b.Itemsets())
}

func TestGenerateCandidatesLimit(t *testing.T) {
	level := lo.Map(lo.Range(10), func(id int, _ int) Itemset {
		return Itemset{Items: []int32{int32(id)}, Count: 1}
	})
	items := lo.Map(level, func(itemset Itemset, _ int) int32 { return itemset.Items[0] })

	// 45 pairs
	candidates, exceeded := generateCandidates(level, items, 10, -1)
	assert.False(t, exceeded)
	assert.Len(t, candidates, 45)
	candidates, exceeded = generateCandidates(level, items, 10, 45)
	assert.False(t, exceeded)
	assert.Len(t, candidates, 45)

	// generation stops before the level is built
	candidates, exceeded = generateCandidates(level, items, 10, 5)
	assert.True(t, exceeded)
	assert.Nil(t, candidates)
	candidates, exceeded = generateCandidates(level, items, 10, 0)
	assert.True(t, exceeded)
	assert.Nil(t, candidates)
}

func TestMiner(t *testing.T) {
	suite.Run(t, new(MinerTestSuite))
}

func TestItemsetSupport(t *testing.T) {
	assert.Equal(t, 0.5, Itemset{Items: []int32{1}, Count: 2}.Support(4))
	assert.Zero(t, Itemset{Items: []int32{1}, Count: 2}.Support(0))
	assert.Equal(t, "1,20,3", itemsetKey([]int32{1, 20, 3}))
}
