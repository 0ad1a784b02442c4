// Copyright 2025 gorse Project Authors
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

	"github.com/stretchr/testify/assert"
)

func TestCatalog(t *testing.T) {
	catalog := newCatalog()
	assert.Equal(t, int32(0), catalog.add("a"))
	assert.Equal(t, int32(1), catalog.add("b"))
	assert.Equal(t, int32(1), catalog.add("b"))
	assert.Equal(t, int32(2), catalog.add("c"))
	assert.Equal(t, int32(2), catalog.add("c"))
	assert.Equal(t, int32(2), catalog.add("c"))
	assert.Equal(t, 3, catalog.Count())
	assert.Equal(t, 1, catalog.Freq(0))
	assert.Equal(t, 2, catalog.Freq(1))
	assert.Equal(t, 3, catalog.Freq(2))
	assert.Equal(t, 0, catalog.Freq(3))

	id, ok := catalog.ID("b")
	assert.True(t, ok)
	assert.Equal(t, int32(1), id)
	_, ok = catalog.ID("z")
	assert.False(t, ok)

	name, ok := catalog.Name(2)
	assert.True(t, ok)
	assert.Equal(t, "c", name)
	_, ok = catalog.Name(3)
	assert.False(t, ok)
	_, ok = catalog.Name(-1)
	assert.False(t, ok)

	assert.Equal(t, []string{"c", "a"}, catalog.Names([]int32{2, 0, 7}))
	assert.Equal(t, []string{"a", "b", "c"}, catalog.Items())
}
