package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okessler/jsontab/internal/config"
	"github.com/okessler/jsontab/internal/export"
	"github.com/okessler/jsontab/internal/filter"
	"github.com/okessler/jsontab/internal/flatten"
	"github.com/okessler/jsontab/internal/ingest"
	"github.com/okessler/jsontab/internal/profile"
	"github.com/okessler/jsontab/internal/schema"
)

type schemaRequest struct {
	Documents []any `json:"documents"`
}

type schemaResponse struct {
	Schema    *schema.Node          `json:"schema"`
	LeafPaths []string              `json:"leafPaths"`
	Conflicts []schema.TypeConflict `json:"conflicts"`
}

// handleSchema infers the combined schema tree for the posted documents.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	var req schemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	tree, conflicts := schema.Discover(req.Documents, s.cfg.SampleSize)
	writeJSON(w, schemaResponse{
		Schema:    tree,
		LeafPaths: schema.CollectLeafPaths(tree),
		Conflicts: conflicts,
	})
}

type profileResponse struct {
	Columns []profile.Column `json:"columns"`
}

// handleProfile returns per-column value profiles for the posted
// documents.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req schemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	tree, _ := schema.Discover(req.Documents, s.cfg.SampleSize)
	writeJSON(w, profileResponse{
		Columns: profile.Profile(req.Documents, tree, s.cfg.SampleSize),
	})
}

type exportRequest struct {
	Documents []any    `json:"documents"`
	Paths     []string `json:"paths"`
	Rule      string   `json:"rule"`
	Separator string   `json:"separator"`
	Format    string   `json:"format"`

	Keyword    *config.KeywordConfig    `json:"keyword,omitempty"`
	Breadcrumb *config.BreadcrumbConfig `json:"breadcrumb,omitempty"`
}

type exportResponse struct {
	Records  []map[string]any `json:"records"`
	Failures []ingest.Failure `json:"failures"`
	Exported int              `json:"exported"`
	Failed   int              `json:"failed"`
}

// handleExport runs the full pipeline on the posted documents and returns
// either a JSON body or, when format=csv, the CSV artifact itself.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	docs := make([]ingest.Document, len(req.Documents))
	for i, v := range req.Documents {
		docs[i] = ingest.Document{
			ID:         ingest.Identify(v, s.cfg.IDFields, fmt.Sprintf("request#%d", i)),
			SourceFile: "request",
			Value:      v,
		}
	}

	if req.Breadcrumb != nil {
		bc := filter.Breadcrumb{SourcePath: req.Breadcrumb.SourcePath, Codes: req.Breadcrumb.Codes}
		kept := docs[:0]
		for _, d := range docs {
			if bc.Matches(d.Value) {
				kept = append(kept, d)
			}
		}
		docs = kept
	}

	paths := req.Paths
	if len(paths) == 0 {
		tree, _ := schema.Discover(ingest.Values(docs), s.cfg.SampleSize)
		paths = schema.CollectLeafPaths(tree)
	}

	opt := flatten.Options{Rule: flatten.ParseRule(req.Rule), Separator: req.Separator}
	rows, failures := flatten.FlattenAll(docs, paths, opt)

	if req.Keyword != nil {
		kw := filter.Keyword{
			Keyword:       req.Keyword.Keyword,
			Column:        req.Keyword.Column,
			Mode:          filter.ParseMode(req.Keyword.Mode),
			CaseSensitive: req.Keyword.CaseSensitive,
		}
		kept := rows[:0]
		for _, row := range rows {
			if kw.Matches(row.Record) {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	if export.ParseFormat(req.Format) == export.FormatCSV && req.Format != "" {
		w.Header().Set("Content-Type", "text/csv")
		if err := export.WriteCSV(w, paths, rows); err != nil {
			s.log.Err(err).Msg("Failed to stream CSV export")
		}
		return
	}

	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]any, len(paths)+2)
		for _, p := range paths {
			obj[p] = row.Record[p]
		}
		obj[export.ColRecordID] = row.DocID
		obj[export.ColSourceFile] = row.SourceFile
		records = append(records, obj)
	}
	if failures == nil {
		failures = []ingest.Failure{}
	}

	writeJSON(w, exportResponse{
		Records:  records,
		Failures: failures,
		Exported: len(records),
		Failed:   len(failures),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
