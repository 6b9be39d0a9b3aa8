// Package ingest loads batches of JSON documents from the filesystem. A
// file holding a top-level array yields one document per element. Files
// that do not parse are reported as per-document failures and never abort
// the batch.
package ingest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Failure codes reported alongside successfully processed documents.
const (
	CodeParse        = "E_PARSE"
	CodeExportFailed = "E_EXPORT_FAILED"
)

// Document is one decoded JSON document plus its provenance.
type Document struct {
	ID         string
	SourceFile string
	Value      any
}

// Failure is a per-document error entry, shaped so it can be exported as
// an artifact mirroring the success artifact.
type Failure struct {
	DocID      string `json:"docId"`
	SourceFile string `json:"sourceFile"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// DefaultIDFields are the fields tried, in order, for a document's
// best-known identifier.
var DefaultIDFields = []string{"TourID", "ID", "id"}

// Load reads every given path (files or directories; directories are
// walked for .json files) and returns the decoded documents plus parse
// failures. A bad file never aborts the batch.
func Load(paths []string, idFields []string) ([]Document, []Failure) {
	var files []string
	var failures []Failure

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			failures = append(failures, Failure{
				DocID:      p,
				SourceFile: p,
				Code:       CodeParse,
				Message:    err.Error(),
			})
			continue
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		_ = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".json") {
				files = append(files, path)
			}
			return nil
		})
	}

	var docs []Document
	for _, f := range files {
		fileDocs, fail := loadFile(f, idFields)
		docs = append(docs, fileDocs...)
		if fail != nil {
			failures = append(failures, *fail)
		}
	}

	log.Info().
		Int("files", len(files)).
		Int("documents", len(docs)).
		Int("failures", len(failures)).
		Msg("Loaded document batch")

	return docs, failures
}

func loadFile(path string, idFields []string) ([]Document, *Failure) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Err(err).Str("file", path).Msg("Failed to read document file")
		return nil, &Failure{
			DocID:      filepath.Base(path),
			SourceFile: path,
			Code:       CodeParse,
			Message:    err.Error(),
		}
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		log.Err(err).Str("file", path).Msg("Document file is not valid JSON")
		return nil, &Failure{
			DocID:      filepath.Base(path),
			SourceFile: path,
			Code:       CodeParse,
			Message:    err.Error(),
		}
	}

	base := filepath.Base(path)
	if arr, ok := value.([]any); ok {
		docs := make([]Document, 0, len(arr))
		for i, el := range arr {
			docs = append(docs, Document{
				ID:         Identify(el, idFields, fmt.Sprintf("%s#%d", base, i)),
				SourceFile: path,
				Value:      el,
			})
		}
		return docs, nil
	}

	return []Document{{
		ID:         Identify(value, idFields, base),
		SourceFile: path,
		Value:      value,
	}}, nil
}

// Identify returns a document's best-known identifier: the first present
// idField with a scalar value, else fallback.
func Identify(doc any, idFields []string, fallback string) string {
	m, ok := doc.(map[string]any)
	if !ok {
		return fallback
	}
	if len(idFields) == 0 {
		idFields = DefaultIDFields
	}
	for _, f := range idFields {
		switch v := m[f].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%v", v)
		}
	}
	return fallback
}

// Values extracts the decoded payloads, preserving order.
func Values(docs []Document) []any {
	out := make([]any, len(docs))
	for i, d := range docs {
		out[i] = d.Value
	}
	return out
}
