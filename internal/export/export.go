// Package export serializes flattened rows and failure entries to CSV or
// JSON artifacts. Reserved provenance columns are appended after the
// selected-path columns and never collide with them.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/okessler/jsontab/internal/flatten"
	"github.com/okessler/jsontab/internal/ingest"
)

// Reserved columns appended after the core-produced fields.
const (
	ColRecordID   = "_RecordID"
	ColSourceFile = "_SourceFile"
)

// Format selects the artifact encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat maps a configuration string to a Format, defaulting to CSV.
func ParseFormat(s string) Format {
	if Format(s) == FormatJSON {
		return FormatJSON
	}
	return FormatCSV
}

// WriteCSV writes a header of the selected paths plus the reserved columns,
// then one line per row in input order.
func WriteCSV(w io.Writer, paths []string, rows []flatten.Row) error {
	cw := csv.NewWriter(w)

	header := append(append([]string{}, paths...), ColRecordID, ColSourceFile)
	if err := cw.Write(header); err != nil {
		return err
	}

	line := make([]string, len(header))
	for _, row := range rows {
		for i, p := range paths {
			line[i] = flatten.CellString(row.Record[p])
		}
		line[len(paths)] = row.DocID
		line[len(paths)+1] = row.SourceFile
		if err := cw.Write(line); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the rows as a JSON array of objects, each holding the
// record's cells plus the reserved provenance keys.
func WriteJSON(w io.Writer, paths []string, rows []flatten.Row) error {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]any, len(paths)+2)
		for _, p := range paths {
			obj[p] = row.Record[p]
		}
		obj[ColRecordID] = row.DocID
		obj[ColSourceFile] = row.SourceFile
		out = append(out, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteFailuresCSV writes the failure artifact with the same provenance
// shape as the success artifact.
func WriteFailuresCSV(w io.Writer, failures []ingest.Failure) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{ColRecordID, ColSourceFile, "Code", "Message"}); err != nil {
		return err
	}
	for _, f := range failures {
		if err := cw.Write([]string{f.DocID, f.SourceFile, f.Code, f.Message}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFailuresJSON writes the failure artifact as a JSON array.
func WriteFailuresJSON(w io.Writer, failures []ingest.Failure) error {
	if failures == nil {
		failures = []ingest.Failure{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(failures)
}
