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
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/juju/errors"
)

const dateLayout = "2006-01-02"

// CSVOptions describes the layout of a purchase log. The defaults match the public
// groceries dataset: Member_number,Date,itemDescription.
type CSVOptions struct {
	Separator      rune
	CustomerColumn string
	DateColumn     string
	ItemColumn     string
}

func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Separator:      ',',
		CustomerColumn: "Member_number",
		DateColumn:     "Date",
		ItemColumn:     "itemDescription",
	}
}

// Record is a single purchased item.
type Record struct {
	CustomerID string
	Date       time.Time
	Item       string
}

// Log is a loaded purchase log. Transactions group records by customer and day and
// are ordered by customer id, then date.
type Log struct {
	Records      []Record
	Transactions []Transaction
}

// LoadCSV reads a purchase log with a header line.
func LoadCSV(r io.Reader, opts CSVOptions) (*Log, error) {
	reader := csv.NewReader(r)
	if opts.Separator != 0 {
		reader.Comma = opts.Separator
	}
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NotValidf("empty purchase log")
	} else if err != nil {
		return nil, errors.Trace(err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	indices := make([]int, 3)
	for i, name := range []string{opts.CustomerColumn, opts.DateColumn, opts.ItemColumn} {
		index, ok := columns[name]
		if !ok {
			return nil, errors.NotValidf("column %q in purchase log header", name)
		}
		indices[i] = index
	}

	purchases := &Log{}
	for lineNumber := 2; ; lineNumber++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Annotatef(err, "line %d", lineNumber)
		}
		customerID := strings.TrimSpace(fields[indices[0]])
		if customerID == "" {
			return nil, errors.NotValidf("customer id at line %d", lineNumber)
		}
		date, err := dateparse.ParseAny(strings.TrimSpace(fields[indices[1]]))
		if err != nil {
			return nil, errors.NotValidf("date %q at line %d", fields[indices[1]], lineNumber)
		}
		purchases.Records = append(purchases.Records, Record{
			CustomerID: customerID,
			Date:       truncateDay(date),
			Item:       strings.TrimSpace(fields[indices[2]]),
		})
	}
	purchases.Transactions = GroupTransactions(purchases.Records)
	return purchases, nil
}

// GroupTransactions groups records bought by the same customer on the same day.
func GroupTransactions(records []Record) []Transaction {
	type key struct {
		customer string
		date     time.Time
	}
	index := make(map[key]int)
	var transactions []Transaction
	for _, record := range records {
		k := key{customer: record.CustomerID, date: record.Date}
		i, ok := index[k]
		if !ok {
			i = len(transactions)
			index[k] = i
			transactions = append(transactions, Transaction{
				ID:         fmt.Sprintf("%s/%s", record.CustomerID, record.Date.Format(dateLayout)),
				CustomerID: record.CustomerID,
				Date:       record.Date,
			})
		}
		transactions[i].Items = append(transactions[i].Items, record.Item)
	}
	sort.SliceStable(transactions, func(i, j int) bool {
		if transactions[i].CustomerID != transactions[j].CustomerID {
			return transactions[i].CustomerID < transactions[j].CustomerID
		}
		return transactions[i].Date.Before(transactions[j].Date)
	})
	return transactions
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
