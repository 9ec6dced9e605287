package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/rustwasm/twiggy-sub000/pkg/errors"

	"github.com/rustwasm/twiggy-sub000/internal/analyze"
	"github.com/rustwasm/twiggy-sub000/internal/ir"
	"github.com/rustwasm/twiggy-sub000/internal/parser"
	"github.com/rustwasm/twiggy-sub000/internal/repository"
	"github.com/rustwasm/twiggy-sub000/internal/storage"
	"github.com/rustwasm/twiggy-sub000/pkg/telemetry"
	"github.com/rustwasm/twiggy-sub000/pkg/utils"
	"github.com/rustwasm/twiggy-sub000/pkg/writer"
)

// loadGraph fetches and parses the input binary. Paths with a cos:// prefix
// go through the configured object storage; everything else is a local
// file.
func loadGraph(ctx context.Context, path string) (*ir.Graph, error) {
	ctx, span := telemetryStart(ctx, "parse")
	defer span.End()

	timer := utils.StartTimer("parse " + path)
	defer timer.Stop(GetLogger())

	if key, ok := strings.CutPrefix(path, "cos://"); ok {
		store, err := storage.New(&cfg.Storage)
		if err != nil {
			return nil, err
		}
		data, err := store.Fetch(ctx, key)
		if err != nil {
			return nil, err
		}
		return parser.ParseData(data)
	}

	return parser.ParseFile(path)
}

// emitResult renders the analysis result in the selected format to the
// selected destination, and persists it when report storage is enabled.
func emitResult(ctx context.Context, analysisName, inputPath string, g *ir.Graph, result analyze.Emit, started time.Time) error {
	format, err := analyze.ParseFormat(formatName)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := analyze.Write(result, g, format, &buf); err != nil {
		return err
	}

	var dst io.Writer = os.Stdout
	if outputPath != "" && outputPath != "-" {
		f, err := os.Create(outputPath)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeWriteError, "creating "+outputPath, err)
		}
		defer f.Close()
		dst = f
	}
	if _, err := dst.Write(buf.Bytes()); err != nil {
		return apperrors.Wrap(apperrors.CodeWriteError, "writing output", err)
	}

	if saveReport {
		if err := writeReportFile(analysisName, inputPath, g, result); err != nil {
			return err
		}
	}

	if cfg != nil && cfg.Report.Enabled {
		if err := persistReport(ctx, analysisName, inputPath, g, format, buf.String(), started); err != nil {
			// Persistence failures must not fail the analysis itself.
			GetLogger().Warn("failed to persist report: %v", err)
		}
	}

	return nil
}

// writeReportFile drops the JSON emission, gzipped, next to the input.
func writeReportFile(analysisName, inputPath string, g *ir.Graph, result analyze.Emit) error {
	var buf bytes.Buffer
	if err := result.EmitJSON(g, &buf); err != nil {
		return apperrors.Wrap(apperrors.CodeWriteError, "rendering report", err)
	}

	path := inputPath + "." + analysisName + ".json.gz"
	w := writer.NewGzipJSONWriter[json.RawMessage]()
	if err := w.WriteToFile(json.RawMessage(buf.Bytes()), path); err != nil {
		return apperrors.Wrap(apperrors.CodeWriteError, "writing report file", err)
	}
	GetLogger().Info("report saved to %s", path)
	return nil
}

func persistReport(ctx context.Context, analysisName, inputPath string, g *ir.Graph, format analyze.Format, output string, started time.Time) error {
	repo, err := repository.NewRepository(&cfg.Database)
	if err != nil {
		return err
	}
	if err := repo.Migrate(ctx); err != nil {
		return err
	}
	return repo.SaveReport(ctx, &repository.Report{
		BinaryPath: inputPath,
		Analysis:   analysisName,
		Format:     string(format),
		Output:     output,
		GraphSize:  g.Size(),
		ItemCount:  g.Len(),
		DurationMs: time.Since(started).Milliseconds(),
	})
}

// telemetryStart opens a span on the tool's tracer.
func telemetryStart(ctx context.Context, name string) (context.Context, trace.Span) {
	return telemetry.Tracer("twiggy").Start(ctx, name)
}

// runAnalysis is the shared driver for the single-input analysis commands.
func runAnalysis(ctx context.Context, analysisName, inputPath string, run func(*ir.Graph) (analyze.Emit, error)) error {
	started := time.Now()

	g, err := loadGraph(ctx, inputPath)
	if err != nil {
		return err
	}

	ctx, span := telemetryStart(ctx, analysisName)
	result, err := run(g)
	span.End()
	if err != nil {
		return err
	}

	return emitResult(ctx, analysisName, inputPath, g, result, started)
}
