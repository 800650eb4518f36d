// SPDX-License-Identifier: EPL-2.0

package normalize

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	colAudioFile = "audio_file"
	colText      = "text"
	colLanguage  = "language"
)

// Record is one row of the metadata table.
type Record struct {
	AudioFile string
	Text      string
	Language  string
}

// ReadMetadata parses a CSV table with at least the audio_file, text and
// language columns, in any order. Other columns are ignored.
func ReadMetadata(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer f.Close()

	return readMetadata(f)
}

func readMetadata(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty table", ErrMissingColumn)
		}
		return nil, fmt.Errorf("reading metadata header: %w", err)
	}

	idx := map[string]int{}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		idx[strings.TrimSpace(name)] = i
	}

	cols := [3]int{}
	for i, name := range []string{colAudioFile, colText, colLanguage} {
		pos, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		cols[i] = pos
	}

	field := func(row []string, i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading metadata: %w", err)
		}

		records = append(records, Record{
			AudioFile: field(row, cols[0]),
			Text:      field(row, cols[1]),
			Language:  field(row, cols[2]),
		})
	}

	return records, nil
}

// WriteMetadata writes records as UTF-8 CSV with the
// audio_file,text,language header. An empty slice still writes the header.
func WriteMetadata(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	if err := writeMetadata(f, records); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func writeMetadata(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{colAudioFile, colText, colLanguage}); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{r.AudioFile, r.Text, r.Language}); err != nil {
			return fmt.Errorf("writing metadata: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	return nil
}
