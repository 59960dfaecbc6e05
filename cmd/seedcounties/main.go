// Command seedcounties converts a county reference workbook (or JSON/YAML
// file) into a SQL seed file, or loads it straight into the counties table.
// Usage: go run ./cmd/seedcounties -in counties.xlsx [-sheet Counties] [-out db/seeds/counties.sql] [-apply]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"deedcheck/internal/config"
	"deedcheck/internal/logger"
	"deedcheck/internal/port"
	"deedcheck/internal/reference"
	"deedcheck/internal/repository/postgres"
	"deedcheck/internal/validator/deed"
)

const batchSize = 500

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	in := flag.String("in", "counties.xlsx", "reference workbook, or a .json/.yaml file")
	sheet := flag.String("sheet", "", "sheet name (default: first sheet)")
	outPath := flag.String("out", "db/seeds/counties.sql", "SQL seed output path")
	apply := flag.Bool("apply", false, "replace the counties table instead of writing SQL")
	flag.Parse()

	log, err := logger.New(config.LogConfig{Level: "info", Format: "console"})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	var src port.ReferenceSource
	if strings.EqualFold(filepath.Ext(*in), ".xlsx") {
		src = reference.NewXLSXSource(*in, *sheet)
	} else {
		src = reference.NewFileSource(*in)
	}
	entries, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load reference: %w", err)
	}
	// Reject anything the service would refuse at startup.
	ref, err := deed.ReferenceFromEntries(entries)
	if err != nil {
		return err
	}
	entries = ref.Entries()
	log.Info("reference parsed", zap.String("input", *in), zap.Int("counties", len(entries)))

	if *apply {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		db, err := postgres.NewDB(ctx, &cfg.DB)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err := postgres.NewCountyRepo(db).Replace(ctx, entries); err != nil {
			return err
		}
		log.Info("counties table replaced", zap.Int("counties", len(entries)))
		return nil
	}

	out, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if err := writeSeed(out, entries); err != nil {
		return err
	}
	log.Info("seed written",
		zap.String("output", *outPath),
		zap.Int("batches", (len(entries)+batchSize-1)/batchSize))
	return nil
}

func writeSeed(out *os.File, entries []port.CountyEntry) error {
	var b strings.Builder
	b.WriteString("-- County reference seed data.\n")
	fmt.Fprintf(&b, "-- %d counties in batches of %d.\n", len(entries), batchSize)
	b.WriteString("BEGIN;\n\nDELETE FROM counties;\n\n")

	for i := 0; i < len(entries); i += batchSize {
		end := min(i+batchSize, len(entries))
		writeBatch(&b, entries[i:end], i)
	}

	b.WriteString("\nCOMMIT;\n")
	_, err := out.WriteString(b.String())
	return err
}

func writeBatch(b *strings.Builder, batch []port.CountyEntry, offset int) {
	b.WriteString("INSERT INTO counties (name, tax_rate, position) VALUES\n")
	for i := range batch {
		e := &batch[i]
		if i > 0 {
			b.WriteString(",\n")
		}
		rate := "NULL"
		if e.TaxRate.Valid {
			rate = e.TaxRate.Decimal.String()
		}
		fmt.Fprintf(b, "  ('%s', %s, %d)", escapeSQL(e.Name), rate, offset+i)
	}
	b.WriteString(";\n")
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
