package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/okessler/jsontab/internal/api"
	"github.com/okessler/jsontab/internal/config"
	"github.com/okessler/jsontab/internal/export"
	"github.com/okessler/jsontab/internal/filter"
	"github.com/okessler/jsontab/internal/flatten"
	"github.com/okessler/jsontab/internal/ingest"
	"github.com/okessler/jsontab/internal/schema"
	"github.com/okessler/jsontab/internal/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Info().Msg("Starting jsontab")

	configPath := os.Getenv("JSONTAB_CONFIG")
	if configPath == "" {
		configPath = "jsontab.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	mode := "run"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	switch mode {
	case "run":
		runBatch(cfg)
	case "serve":
		runServe(cfg)
	case "schema-config":
		if err := json.NewEncoder(os.Stdout).Encode(config.JSONSchema()); err != nil {
			log.Fatal().Err(err).Msg("Failed to write config schema")
		}
	default:
		log.Fatal().Str("mode", mode).Msg("Unknown mode, expected run, serve, or schema-config")
	}
}

func runBatch(cfg config.Config) {
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	rule := flatten.ParseRule(cfg.Rule)
	if !strings.EqualFold(cfg.Rule, string(rule)) {
		log.Warn().Str("value", cfg.Rule).Msg("Invalid rule, defaulting to join")
	}

	docs, failures := ingest.Load(cfg.Input, cfg.IDFields)

	bc := filter.Breadcrumb{SourcePath: cfg.Breadcrumb.SourcePath, Codes: cfg.Breadcrumb.Codes}
	kept := docs[:0]
	for _, d := range docs {
		if bc.Matches(d.Value) {
			kept = append(kept, d)
		}
	}
	docs = kept

	tree, conflicts := schema.Discover(ingest.Values(docs), cfg.SampleSize)
	for _, c := range conflicts {
		log.Warn().
			Str("path", c.Path).
			Str("kept", string(c.Kept)).
			Str("dropped", string(c.Dropped)).
			Msg("Documents disagree on field type")
	}

	var kv store.KV
	if statePath := os.Getenv("JSONTAB_STATE"); statePath != "" {
		kv = store.NewFileKV(statePath)
	}

	paths := cfg.Paths
	if len(paths) == 0 && kv != nil {
		saved, err := store.LoadSelection(kv, store.SelectionKey, tree)
		if err != nil {
			log.Warn().Err(err).Msg("Ignoring unreadable saved selection")
		}
		paths = saved
	}
	if len(paths) == 0 {
		paths = schema.CollectLeafPaths(tree)
	} else {
		paths = schema.SortPaths(paths, tree)
	}
	if kv != nil {
		if err := store.SaveSelection(kv, store.SelectionKey, paths); err != nil {
			log.Warn().Err(err).Msg("Failed to persist selection")
		}
	}

	log.Info().
		Int("documents", len(docs)).
		Int("columns", len(paths)).
		Str("rule", string(rule)).
		Msg("Flattening batch")

	opt := flatten.Options{Rule: rule, Separator: cfg.Separator}
	rows, flattenFailures := flatten.FlattenAll(docs, paths, opt)
	failures = append(failures, flattenFailures...)

	kw := filter.Keyword{
		Keyword:       cfg.Keyword.Keyword,
		Column:        cfg.Keyword.Column,
		Mode:          filter.ParseMode(cfg.Keyword.Mode),
		CaseSensitive: cfg.Keyword.CaseSensitive,
	}
	matched := rows[:0]
	for _, row := range rows {
		if kw.Matches(row.Record) {
			matched = append(matched, row)
		}
	}
	rows = matched

	if err := writeArtifacts(cfg, paths, rows, failures); err != nil {
		log.Fatal().Err(err).Msg("Failed to write export artifacts")
	}

	log.Info().
		Int("exported", len(rows)).
		Int("failed", len(failures)).
		Str("output", cfg.Output).
		Msg("Export completed")
}

func writeArtifacts(cfg config.Config, paths []string, rows []flatten.Row, failures []ingest.Failure) error {
	format := export.ParseFormat(cfg.Format)

	out, err := os.Create(cfg.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	if format == export.FormatJSON {
		err = export.WriteJSON(out, paths, rows)
	} else {
		err = export.WriteCSV(out, paths, rows)
	}
	if err != nil {
		return err
	}

	if len(failures) == 0 {
		return nil
	}

	failPath := failuresPath(cfg.Output, format)
	ff, err := os.Create(failPath)
	if err != nil {
		return err
	}
	defer ff.Close()

	if format == export.FormatJSON {
		err = export.WriteFailuresJSON(ff, failures)
	} else {
		err = export.WriteFailuresCSV(ff, failures)
	}
	if err != nil {
		return err
	}

	log.Info().Str("file", failPath).Int("failures", len(failures)).Msg("Wrote failure artifact")
	return nil
}

func failuresPath(output string, format export.Format) string {
	ext := filepath.Ext(output)
	base := strings.TrimSuffix(output, ext)
	if ext == "" {
		ext = "." + string(format)
	}
	return base + ".failures" + ext
}

func runServe(cfg config.Config) {
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.NewServer(cfg, log.Logger),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Err(err).Msg("Error during server shutdown")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Msg("Serving HTTP API")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("HTTP server failed")
	}

	log.Info().Msg("jsontab stopped")
}
