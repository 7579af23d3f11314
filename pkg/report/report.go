// Package report serializes the ledger to a line-delimited JSON file, one
// record per entry, and parses such a file back. An exported report can be
// imported into a fresh store, so a session can resume with the current
// period's spend intact even when only the flat report survived.
package report

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/reelgate/reelgate/pkg/ledger"
	"github.com/reelgate/reelgate/pkg/models"
)

// Export writes entries as JSONL, oldest first.
func Export(w io.Writer, entries []models.LedgerEntry) error {
	enc := json.NewEncoder(w)
	for i := len(entries) - 1; i >= 0; i-- {
		if err := enc.Encode(entries[i]); err != nil {
			return fmt.Errorf("encode ledger entry: %w", err)
		}
	}
	return nil
}

// WriteFile exports all entries of a ledger to a report file.
func WriteFile(ctx context.Context, path string, l ledger.Ledger) (int, error) {
	entries, err := l.List(ctx, ledger.ListOpts{})
	if err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := Export(f, entries); err != nil {
		return 0, err
	}
	if err := f.Sync(); err != nil {
		return 0, fmt.Errorf("sync report: %w", err)
	}
	return len(entries), nil
}

// Parse reads a JSONL report into entries, in file order.
func Parse(r io.Reader) ([]models.LedgerEntry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []models.LedgerEntry
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var e models.LedgerEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("report line %d: %w", line, err)
		}
		if e.ID == "" {
			return nil, fmt.Errorf("report line %d: missing entry id", line)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return entries, nil
}

// Restore appends every entry of a report into a ledger, preserving file
// order. It returns the number of entries restored.
func Restore(ctx context.Context, l ledger.Ledger, r io.Reader) (int, error) {
	entries, err := Parse(r)
	if err != nil {
		return 0, err
	}
	for i, e := range entries {
		if err := l.Append(ctx, e); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}

// RestoreFile restores a report file into a ledger.
func RestoreFile(ctx context.Context, l ledger.Ledger, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()
	return Restore(ctx, l, f)
}
