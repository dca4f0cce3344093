// Package pipeline runs the whole enrichment sequence for one uploaded
// table: parse, normalize, fetch a status per row key, correlate by key,
// and serialize the merged table to bytes ready for delivery.
//
// A Pipeline is an explicit instance built once per process and passed by
// reference; it holds no per-run state, so concurrent runs are safe.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ryanshoover/account-statuses/internal/logging"
	"github.com/ryanshoover/account-statuses/internal/lookup"
	"github.com/ryanshoover/account-statuses/internal/normalize"
	"github.com/ryanshoover/account-statuses/internal/table"
)

// Config holds pipeline policy settings.
type Config struct {
	// Strict makes any row-scoped failure (lookup or correlation) abort
	// the whole run. The default is partial success: failed rows are
	// omitted from the output and reported in Result.RowErrors.
	Strict bool
}

// Pipeline orchestrates one enrichment run end to end.
type Pipeline struct {
	client *lookup.Client
	strict bool
}

// New builds a Pipeline around the given lookup client.
func New(client *lookup.Client, cfg Config) *Pipeline {
	return &Pipeline{client: client, strict: cfg.Strict}
}

// Result is the outcome of a successful (possibly partial) run.
type Result struct {
	// CSV is the finished output table, ready for client delivery.
	CSV []byte

	// Rows is the number of data rows emitted.
	Rows int

	// RowErrors lists rows omitted under the partial-success policy, one
	// entry per failed row. Empty on a clean run.
	RowErrors []RowError
}

// Run parses the CSV stream and enriches it. A *table.ParseError aborts
// the run; row-scoped failures follow the configured policy.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (*Result, error) {
	header, raws, err := table.ReadTable(r)
	if err != nil {
		return nil, err
	}
	return p.RunRows(ctx, header, raws)
}

// RunRows enriches already-parsed raw rows. This is the entry point shared
// by CSV and workbook uploads.
func (p *Pipeline) RunRows(ctx context.Context, header table.Header, raws [][]string) (*Result, error) {
	log := logging.FromContext(ctx)

	rows := make([]table.Row, len(raws))
	keys := make([]string, len(raws))
	for i, raw := range raws {
		rows[i] = normalize.Row(header, raw)
		keys[i] = rows[i].Key().Text()
	}

	outcomes := p.client.FetchAll(ctx, keys)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]lookup.Record, 0, len(outcomes))
	for _, oc := range outcomes {
		if oc.Err == nil {
			records = append(records, oc.Record)
		}
	}
	index := indexRecords(records, p.client.KeyField())

	out := make([][]string, 0, len(rows))
	var rowErrs []RowError

	// Output rows keep input order; lookup completion order never matters
	// because correlation is by key.
	for i, row := range rows {
		line := i + 2 // 1-based, after the header line
		key := keys[i]

		fail := func(err error) error {
			if p.strict {
				return fmt.Errorf("row at line %d (key %q): %w", line, key, err)
			}
			rowErrs = append(rowErrs, RowError{Line: line, Key: key, Err: err})
			return nil
		}

		if oc, ok := outcomes[key]; ok && oc.Err != nil {
			if err := fail(oc.Err); err != nil {
				return nil, err
			}
			continue
		}

		rec, ok := index[key]
		if !ok {
			if err := fail(&CorrelationError{Key: key}); err != nil {
				return nil, err
			}
			continue
		}

		merged, err := mergeRow(row, rec, p.client.KeyField())
		if err != nil {
			if err := fail(err); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, merged)
	}

	outHeader := make([]string, 0, len(header)+len(StatusColumns))
	outHeader = append(outHeader, header...)
	outHeader = append(outHeader, StatusColumns...)

	var buf bytes.Buffer
	if err := table.WriteTable(&buf, outHeader, out); err != nil {
		return nil, err
	}

	for _, re := range rowErrs {
		log.Warn("row skipped", "line", re.Line, "key", re.Key, "error", re.Err.Error())
	}
	log.Info("enrichment run finished", "rows_in", len(rows), "rows_out", len(out), "rows_skipped", len(rowErrs))

	return &Result{CSV: buf.Bytes(), Rows: len(out), RowErrors: rowErrs}, nil
}
