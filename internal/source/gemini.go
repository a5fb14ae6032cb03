package source

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
)

// geminiTime matches Gemini's export timestamps, with or without a
// sub-second fraction.
const geminiTime = "2006-01-02 15:04:05.999999"

// ReadGemini normalizes a Gemini transaction history export. Gemini signs
// amounts canonically already; rows other than Buy and Sell (Credit, Debit,
// the trailing totals row) are skipped.
func ReadGemini(r io.Reader) ([]Record, error) {
	rdr := csv.NewReader(bufio.NewReader(r))
	cols, err := readHeader(rdr, "Date", "Type", "USD Amount USD", "BTC Amount BTC")
	if err != nil {
		return nil, fmt.Errorf("bad gemini history: %w", err)
	}

	var records []Record
	for {
		row, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read gemini row: %w", err)
		}

		typ := cols.get(row, "Type")
		if typ != "Buy" && typ != "Sell" {
			continue
		}

		ts, err := cols.time(row, "Date", geminiTime)
		if err != nil {
			return nil, fmt.Errorf("bad gemini row: %w", err)
		}
		btc, err := cols.decimal(row, "BTC Amount BTC")
		if err != nil {
			return nil, fmt.Errorf("bad gemini row: %w", err)
		}
		usd, err := cols.decimal(row, "USD Amount USD")
		if err != nil {
			return nil, fmt.Errorf("bad gemini row: %w", err)
		}

		records = append(records, Record{Timestamp: ts, Type: typ, BTC: btc, USD: usd})
	}

	return records, nil
}
