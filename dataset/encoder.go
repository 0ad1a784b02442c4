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
	"strings"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Transaction is one basket. ID is opaque and only used to report problems.
type Transaction struct {
	ID         string
	CustomerID string
	Date       time.Time
	Items      []string
}

// Encoded is the item-presence matrix of a transaction log. Row i belongs to the
// transaction IDs[i] and has bit j set iff the transaction contains item j.
type Encoded struct {
	Catalog *Catalog
	IDs     []string
	Rows    []*bitset.BitSet
}

// Len returns the number of transactions.
func (e *Encoded) Len() int {
	return len(e.Rows)
}

// Items returns the item ids of a row in ascending order.
func (e *Encoded) Items(row int) []int32 {
	ids := make([]int32, 0, e.Rows[row].Count())
	for i, ok := e.Rows[row].NextSet(0); ok; i, ok = e.Rows[row].NextSet(i + 1) {
		ids = append(ids, int32(i))
	}
	return ids
}

// Encode builds the item catalog and one bitset per transaction. Item names are
// trimmed, blank names are ignored and duplicates inside a basket collapse. A
// transaction left without items is an encoding error; nothing is skipped.
func Encode(transactions []Transaction) (*Encoded, error) {
	catalog := newCatalog()
	ids := make([][]int32, len(transactions))
	for i, tx := range transactions {
		names := normalizeItems(tx.Items)
		if len(names) == 0 {
			return nil, errors.BadRequestf("transaction %q has no items", tx.ID)
		}
		ids[i] = make([]int32, len(names))
		for j, name := range names {
			ids[i][j] = catalog.add(name)
		}
	}
	encoded := &Encoded{
		Catalog: catalog,
		IDs:     make([]string, len(transactions)),
		Rows:    make([]*bitset.BitSet, len(transactions)),
	}
	for i, tx := range transactions {
		encoded.IDs[i] = tx.ID
		row := bitset.New(uint(catalog.Count()))
		for _, id := range ids[i] {
			row.Set(uint(id))
		}
		encoded.Rows[i] = row
	}
	return encoded, nil
}

// DropEmpty removes transactions that would fail encoding and returns the ids of the
// removed ones so that callers can report them.
func DropEmpty(transactions []Transaction) ([]Transaction, []string) {
	var dropped []string
	kept := lo.Filter(transactions, func(tx Transaction, _ int) bool {
		if len(normalizeItems(tx.Items)) == 0 {
			dropped = append(dropped, tx.ID)
			return false
		}
		return true
	})
	return kept, dropped
}

func normalizeItems(items []string) []string {
	names := lo.FilterMap(items, func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, item != ""
	})
	return lo.Uniq(names)
}
