// SPDX-License-Identifier: EPL-2.0

package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// formatValue prints v as the shortest float32 text, keeping a decimal
// point on integral values so every cell reads back as a float.
func formatValue(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 32)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// WriteTable writes rows as CSV with a header of column indices 0..N-1.
// The file is written next to path and renamed over it, so readers never
// see a half written table.
func WriteTable(path string, rows [][]float64) error {
	if len(rows) == 0 {
		return ErrNothingProcessed
	}

	cols := len(rows[0])
	for i, r := range rows {
		if len(r) != cols {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrRaggedRows, i, len(r), cols)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating feature table: %w", err)
	}
	defer os.Remove(tmp.Name())

	// CreateTemp makes the file owner-only
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("creating feature table: %w", err)
	}

	w := csv.NewWriter(tmp)

	record := make([]string, cols)
	for i := range record {
		record[i] = strconv.Itoa(i)
	}
	if err := w.Write(record); err != nil {
		tmp.Close()
		return fmt.Errorf("writing feature table: %w", err)
	}

	for _, r := range rows {
		for i, v := range r {
			record[i] = formatValue(v)
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("writing feature table: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing feature table: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing feature table: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	return nil
}
