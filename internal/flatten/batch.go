package flatten

import (
	"fmt"

	"github.com/okessler/jsontab/internal/ingest"
)

// Row couples a flattened record with the provenance the exporting
// collaborator appends as reserved columns.
type Row struct {
	Record     Record
	DocID      string
	SourceFile string
}

// FlattenAll flattens every document, isolating each one so a single bad
// entry degrades to a failure instead of aborting the batch. Output row
// order follows input document order.
func FlattenAll(docs []ingest.Document, selectedPaths []string, opt Options) ([]Row, []ingest.Failure) {
	rows := make([]Row, 0, len(docs))
	var failures []ingest.Failure

	for _, d := range docs {
		rec, err := flattenOne(d.Value, selectedPaths, opt)
		if err != nil {
			failures = append(failures, ingest.Failure{
				DocID:      d.ID,
				SourceFile: d.SourceFile,
				Code:       ingest.CodeExportFailed,
				Message:    err.Error(),
			})
			continue
		}
		rows = append(rows, Row{Record: rec, DocID: d.ID, SourceFile: d.SourceFile})
	}

	return rows, failures
}

// flattenOne converts an unexpected panic into an error so callers see a
// tagged failure entry rather than a crashed batch.
func flattenOne(doc any, paths []string, opt Options) (rec Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("flatten panicked: %v", r)
		}
	}()
	return Flatten(doc, paths, opt), nil
}
