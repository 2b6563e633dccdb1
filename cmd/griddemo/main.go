// Command griddemo loads a schema and an optional workbook into a grid,
// validates everything, and reports the failures. It doubles as a smoke test
// for the library wiring: schema parsing, bulk load, validation, and export.
//
// Usage:
//
//	griddemo -schema schema.yaml [-data people.xlsx] [-out clean.xlsx] [-rows 100]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/gridkit"
	"github.com/dmitrymomot/gridkit/pkg/logger"
	"github.com/dmitrymomot/gridkit/pkg/throttle"
	"github.com/dmitrymomot/gridkit/pkg/xlsx"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "griddemo:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		schemaPath = flag.String("schema", "", "path to the YAML grid schema (required)")
		dataPath   = flag.String("data", "", "xlsx workbook to load")
		outPath    = flag.String("out", "", "write the rows that validate to this xlsx file")
		rows       = flag.Int("rows", 50, "initial number of empty rows")
	)
	flag.Parse()

	if *schemaPath == "" {
		flag.Usage()
		return fmt.Errorf("-schema is required")
	}

	logCfg, err := logger.Load()
	if err != nil {
		return err
	}
	log := logger.New(logCfg, slog.String("component", "griddemo"))

	throttleCfg, err := throttle.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	columns, ruleset, err := gridkit.LoadSchema(*schemaPath)
	if err != nil {
		return err
	}

	grid := gridkit.New(
		gridkit.WithLogger(log),
		gridkit.WithThrottling(throttleCfg),
	)
	defer grid.Dispose()

	if err := grid.Initialize(ctx, columns, ruleset, *rows); err != nil {
		return err
	}

	if *dataPath != "" {
		_, records, err := xlsx.LoadFile(*dataPath)
		if err != nil {
			return err
		}
		if err := grid.LoadData(ctx, records); err != nil {
			return err
		}
		log.InfoContext(ctx, "workbook loaded",
			slog.String("path", *dataPath),
			slog.Int("records", len(records)))
	}

	results, err := grid.ValidateAll(ctx)
	if err != nil {
		return err
	}

	failures := 0
	for _, res := range results {
		if res.Valid {
			continue
		}
		failures++
		fmt.Printf("row %d, %s: %s\n", res.RowIndex+1, res.Column, res.Message())
	}
	fmt.Printf("%d rows with data, %d validation failures\n", grid.DataRowCount(), failures)

	if *outPath != "" {
		if err := grid.RemoveEmptyRows(); err != nil {
			return err
		}
		headers, records, err := grid.ExportRecords(ctx)
		if err != nil {
			return err
		}
		kept := records[:0]
		for i, rec := range records {
			row, ok := grid.Row(i)
			if ok && row.HasValidationErrors() {
				continue
			}
			kept = append(kept, rec)
		}
		if err := xlsx.SaveFile(*outPath, headers, kept); err != nil {
			return err
		}
		log.InfoContext(ctx, "workbook written",
			slog.String("path", *outPath),
			slog.Int("records", len(kept)))
	}
	return nil
}
