package source

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
)

const cashAppTime = "2006-01-02 15:04:05"

// ReadCashApp normalizes a Cash App activity export. Only bitcoin trades are
// kept; the export's "Net Amount" already carries the canonical usd sign,
// while "Asset Amount" is unsigned and takes its sign from the row type.
func ReadCashApp(r io.Reader) ([]Record, error) {
	rdr := csv.NewReader(bufio.NewReader(r))
	cols, err := readHeader(rdr, "Date", "Transaction Type", "Asset Type", "Asset Amount", "Net Amount")
	if err != nil {
		return nil, fmt.Errorf("bad cashapp history: %w", err)
	}

	var records []Record
	for {
		row, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read cashapp row: %w", err)
		}

		if cols.get(row, "Asset Type") != "BTC" {
			continue
		}

		var typ string
		switch cols.get(row, "Transaction Type") {
		case "Bitcoin Buy":
			typ = "Buy"
		case "Bitcoin Sale":
			typ = "Sell"
		default:
			continue
		}

		ts, err := cols.time(row, "Date", cashAppTime)
		if err != nil {
			return nil, fmt.Errorf("bad cashapp row: %w", err)
		}
		btc, err := cols.decimal(row, "Asset Amount")
		if err != nil {
			return nil, fmt.Errorf("bad cashapp row: %w", err)
		}
		usd, err := cols.decimal(row, "Net Amount")
		if err != nil {
			return nil, fmt.Errorf("bad cashapp row: %w", err)
		}

		if typ == "Sell" {
			btc = btc.Abs().Neg()
		}

		records = append(records, Record{Timestamp: ts, Type: typ, BTC: btc, USD: usd})
	}

	return records, nil
}
