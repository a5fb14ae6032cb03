// Package report serializes matched capital gains: per-year CSV files in the
// tax form's column shape, a console summary table and an optional chart.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"btax/internal/tax"
)

// Header is the fixed six-column report header.
var Header = []string{
	"Description of Property",
	"Date Acquired",
	"Date Sold or Disposed Of",
	"Proceeds (Sales Price)",
	"Cost or Other Basis",
	"Gain or (loss)",
}

// WriteCSV writes one csv file per non-empty (bucket, year) group into dir,
// named {year}_short_gains.csv and {year}_long_gains.csv.
func WriteCSV(dir string, short, long map[int][]tax.Row) error {
	for year, rows := range short {
		if err := writeFile(filepath.Join(dir, fmt.Sprintf("%d_short_gains.csv", year)), rows); err != nil {
			return err
		}
	}
	for year, rows := range long {
		if err := writeFile(filepath.Join(dir, fmt.Sprintf("%d_long_gains.csv", year)), rows); err != nil {
			return err
		}
	}

	return nil
}

func writeFile(path string, rows []tax.Row) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.Fields()); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
