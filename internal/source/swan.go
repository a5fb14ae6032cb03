package source

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// ReadSwan normalizes a Swan Bitcoin transaction report. Swan is a buy-only
// platform: every purchase row exports a positive usd amount, which is
// negated to the canonical spent-dollars sign.
func ReadSwan(r io.Reader) ([]Record, error) {
	rdr := csv.NewReader(bufio.NewReader(r))
	cols, err := readHeader(rdr, "Date", "Event", "Unit Count", "USD Amount")
	if err != nil {
		return nil, fmt.Errorf("bad swan history: %w", err)
	}

	var records []Record
	for {
		row, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read swan row: %w", err)
		}

		if cols.get(row, "Event") != "purchase" {
			continue
		}

		ts, err := cols.time(row, "Date", time.RFC3339)
		if err != nil {
			return nil, fmt.Errorf("bad swan row: %w", err)
		}
		btc, err := cols.decimal(row, "Unit Count")
		if err != nil {
			return nil, fmt.Errorf("bad swan row: %w", err)
		}
		usd, err := cols.decimal(row, "USD Amount")
		if err != nil {
			return nil, fmt.Errorf("bad swan row: %w", err)
		}

		records = append(records, Record{Timestamp: ts, Type: "Buy", BTC: btc, USD: usd.Neg()})
	}

	return records, nil
}
