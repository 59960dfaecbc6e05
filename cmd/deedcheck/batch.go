package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deedcheck/internal/csvexport"
	"deedcheck/internal/domain"
)

func batchCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "batch [records.json|records.jsonl|-]",
		Short: "Validate many records and write a CSV report",
		Long:  "Input is either a JSON array of records or one JSON record per line. Exits with status 2 when any record is rejected.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			records, err := splitRecords(data)
			if err != nil {
				return err
			}

			a, log, _, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()
			defer func() { _ = log.Sync() }()

			items, err := a.Batch.Validate(cmd.Context(), records)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create report: %w", err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			cw := csvexport.NewWriter(w)
			if err := cw.WriteHeader(); err != nil {
				return err
			}
			if err := cw.WriteItems(items); err != nil {
				return err
			}
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}

			rejected := 0
			for _, it := range items {
				if it.Err != nil || it.Result.Status == domain.RunStatusRejected {
					rejected++
				}
			}
			log.Info("batch complete", zap.Int("records", len(items)), zap.Int("rejected", rejected))
			if rejected > 0 {
				return errRejected
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "CSV report path (- for stdout)")
	return cmd
}

// splitRecords accepts a JSON array or JSON lines. Blank lines are skipped.
func splitRecords(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
		return records, nil
	}

	var records []json.RawMessage
	sc := bufio.NewScanner(bytes.NewReader(trimmed))
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		records = append(records, json.RawMessage(bytes.Clone(line)))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	return records, nil
}
