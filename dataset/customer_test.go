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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2015, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestCustomerPeriods(t *testing.T) {
	periods := CustomerPeriods([]Record{
		{CustomerID: "b", Date: day(3)},
		{CustomerID: "a", Date: day(10)},
		{CustomerID: "b", Date: day(1)},
		{CustomerID: "c", Date: day(5)},
		{CustomerID: "a", Date: day(12)},
		{CustomerID: "b", Date: day(2)},
	})
	assert.Equal(t, []CustomerPeriod{
		{CustomerID: "a", Start: day(10), End: day(12), Days: 3},
		{CustomerID: "b", Start: day(1), End: day(3), Days: 3},
		{CustomerID: "c", Start: day(5), End: day(5), Days: 1},
	}, periods)
	assert.Empty(t, CustomerPeriods(nil))
}
