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

// Catalog maps item names to dense ids in first-seen order. Ids are never reused and
// the catalog is not modified once the encoder returns it.
type Catalog struct {
	si  map[string]int32
	is  []string
	cnt []int
}

func newCatalog() *Catalog {
	return &Catalog{si: map[string]int32{}}
}

// add returns the id of s, assigning the next id if s is new. The frequency of s is
// increased by one.
func (c *Catalog) add(s string) int32 {
	if y, ok := c.si[s]; ok {
		c.cnt[y]++
		return y
	}
	y := int32(len(c.is))
	c.si[s] = y
	c.is = append(c.is, s)
	c.cnt = append(c.cnt, 1)
	return y
}

// Count returns the number of distinct items.
func (c *Catalog) Count() int {
	return len(c.is)
}

// ID returns the id of an item name.
func (c *Catalog) ID(s string) (int32, bool) {
	y, ok := c.si[s]
	return y, ok
}

// Name returns the name of an item id.
func (c *Catalog) Name(id int32) (string, bool) {
	if id < 0 || int(id) >= len(c.is) {
		return "", false
	}
	return c.is[id], true
}

// Names converts ids to names. Unknown ids are skipped.
func (c *Catalog) Names(ids []int32) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := c.Name(id); ok {
			names = append(names, name)
		}
	}
	return names
}

// Items returns all item names ordered by id.
func (c *Catalog) Items() []string {
	return append([]string(nil), c.is...)
}

// Freq returns the number of transactions containing the item.
func (c *Catalog) Freq(id int32) int {
	if id < 0 || int(id) >= len(c.cnt) {
		return 0
	}
	return c.cnt[id]
}
