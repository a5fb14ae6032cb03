package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"btax/internal/tax"
)

// Fixed per-source filenames looked up in the input directory.
const (
	GeminiFile  = "gemini.csv"
	SwanFile    = "swan.csv"
	CashAppFile = "cashapp.csv"
)

type reader struct {
	file string
	read func(io.Reader) ([]Record, error)
}

var readers = []reader{
	{GeminiFile, ReadGemini},
	{SwanFile, ReadSwan},
	{CashAppFile, ReadCashApp},
}

// Load reads every known history export present in dir, normalizes them
// concurrently and returns the merged transactions sorted ascending by
// timestamp. Missing exports are skipped; at least one must exist.
func Load(ctx context.Context, dir string) ([]tax.Transaction, error) {
	g, ctx := errgroup.WithContext(ctx)

	results := make([][]Record, len(readers))
	found := 0
	for i, r := range readers {
		path := filepath.Join(dir, r.file)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		found++

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			records, err := r.read(f)
			if err != nil {
				return fmt.Errorf("%s: %w", r.file, err)
			}

			results[i] = records
			return nil
		})
	}

	if found == 0 {
		return nil, fmt.Errorf("no transaction history found in %s", dir)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []Record
	for _, records := range results {
		merged = append(merged, records...)
	}

	return Transactions(merged)
}
