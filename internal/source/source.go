// Package source normalizes per-exchange transaction history exports into
// the canonical transaction shape. Each adapter maps one export format;
// everything downstream of Transactions is format-agnostic.
package source

import (
	"encoding/csv"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"btax/internal/tax"
)

// Record is one normalized transaction history entry. Amounts carry the
// canonical signs: buys spend usd for btc, sells the reverse.
type Record struct {
	Timestamp time.Time
	Type      string // "Buy" or "Sell"
	BTC       decimal.Decimal
	USD       decimal.Decimal
}

// Transactions converts normalized records into validated transactions,
// sorted ascending by timestamp.
func Transactions(records []Record) ([]tax.Transaction, error) {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	txs := make([]tax.Transaction, 0, len(sorted))
	for _, r := range sorted {
		var tx tax.Transaction
		var err error
		switch r.Type {
		case "Buy":
			tx, err = tax.NewBuy(r.Timestamp, r.BTC, r.USD)
		case "Sell":
			tx, err = tax.NewSell(r.Timestamp, r.BTC, r.USD)
		default:
			err = fmt.Errorf("unknown transaction type %q", r.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("bad record at %s: %w", r.Timestamp.Format(time.RFC3339), err)
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

// columns maps a csv header row to column indices by name.
type columns map[string]int

func readHeader(r *csv.Reader, required ...string) (columns, error) {
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := make(columns, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	return cols, nil
}

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (c columns) decimal(row []string, name string) (decimal.Decimal, error) {
	v := c.get(row, name)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse %s value %q: %w", name, v, err)
	}
	return d, nil
}

func (c columns) time(row []string, name, layout string) (time.Time, error) {
	v := c.get(row, name)
	ts, err := time.ParseInLocation(layout, v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s value %q: %w", name, v, err)
	}
	return ts, nil
}
