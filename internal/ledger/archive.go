// Package ledger implements the append-only pick archive. Files are the
// canonical store: one dated JSON file per run plus a current snapshot,
// written atomically, never mutated or deleted. Corrections are new
// entries in new files.
package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rmorand/sciquant/internal/contracts"
	"github.com/rmorand/sciquant/pkg/fsio"
	"github.com/rmorand/sciquant/pkg/logger"
)

const (
	archivePrefix = "picks_"
	currentFile   = "current.json"
)

// FileArchive is the canonical file-backed pick ledger.
type FileArchive struct {
	dir    string
	logger *logger.Logger
}

// NewFileArchive creates an archive rooted at dir.
func NewFileArchive(dir string, log *logger.Logger) *FileArchive {
	return &FileArchive{dir: dir, logger: log}
}

// Append writes one run's pick set as a new dated archive file and
// refreshes the current snapshot. The dated file is never overwritten: a
// second run on the same date gets a timestamp-suffixed name, preserving
// append-only semantics. An unwritable ledger directory is process-fatal
// for the caller.
func (a *FileArchive) Append(file *contracts.ArchiveFile, runTime time.Time) error {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("ledger directory unwritable: %w", err)
	}

	name := fmt.Sprintf("%s%s.json", archivePrefix, runTime.UTC().Format("2006-01-02"))
	path := filepath.Join(a.dir, name)
	if _, err := os.Stat(path); err == nil {
		name = fmt.Sprintf("%s%s.json", archivePrefix, runTime.UTC().Format("2006-01-02_150405"))
		path = filepath.Join(a.dir, name)
	}

	if err := fsio.WriteJSONAtomic(path, file); err != nil {
		return fmt.Errorf("append archive file failed: %w", err)
	}
	if err := fsio.WriteJSONAtomic(filepath.Join(a.dir, currentFile), file); err != nil {
		return fmt.Errorf("write current snapshot failed: %w", err)
	}

	a.logger.WithFields(map[string]interface{}{
		"file":  name,
		"picks": len(file.Stocks),
	}).Info("Ledger entries appended")

	return nil
}

// ReadAll aggregates every archive file plus the current snapshot into one
// deduplicated entry log. Duplicate keys resolve deterministically in
// favor of archive-file provenance; malformed entries are skipped and
// counted, never fatal.
func (a *FileArchive) ReadAll() ([]contracts.LedgerEntry, int, error) {
	paths, err := a.archivePaths()
	if err != nil {
		return nil, 0, err
	}

	var entries []contracts.LedgerEntry
	var skipped int
	seen := make(map[string]struct{})

	// Archive files first so their entries win the dedupe.
	for _, path := range paths {
		fileEntries, fileSkipped := a.readFile(path)
		skipped += fileSkipped
		for _, e := range fileEntries {
			if _, dup := seen[e.Key()]; dup {
				continue
			}
			seen[e.Key()] = struct{}{}
			entries = append(entries, e)
		}
	}

	currentPath := filepath.Join(a.dir, currentFile)
	if _, err := os.Stat(currentPath); err == nil {
		fileEntries, fileSkipped := a.readFile(currentPath)
		skipped += fileSkipped
		for _, e := range fileEntries {
			if _, dup := seen[e.Key()]; dup {
				continue
			}
			seen[e.Key()] = struct{}{}
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].PickedAt.Equal(entries[j].PickedAt) {
			return entries[i].PickedAt.Before(entries[j].PickedAt)
		}
		return entries[i].Symbol < entries[j].Symbol
	})

	if skipped > 0 {
		a.logger.WithField("skipped", skipped).Warn("Malformed archive entries skipped")
	}

	return entries, skipped, nil
}

// ReadCurrent returns the latest run snapshot, or nil when none exists.
func (a *FileArchive) ReadCurrent() (*contracts.ArchiveFile, error) {
	path := filepath.Join(a.dir, currentFile)
	var file contracts.ArchiveFile
	if err := fsio.ReadJSON(path, &file); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read current snapshot failed: %w", err)
	}
	return &file, nil
}

// archivePaths lists dated archive files in name (therefore date) order.
func (a *FileArchive) archivePaths() ([]string, error) {
	dirEntries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ledger directory failed: %w", err)
	}

	var paths []string
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, archivePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		paths = append(paths, filepath.Join(a.dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// readFile parses one archive file, accepting both shapes: pickedAt per
// entry, or a shared file-level timestamp inherited by entries without
// their own.
func (a *FileArchive) readFile(path string) ([]contracts.LedgerEntry, int) {
	var file contracts.ArchiveFile
	if err := fsio.ReadJSON(path, &file); err != nil {
		a.logger.WithFields(map[string]interface{}{
			"file":  filepath.Base(path),
			"error": err.Error(),
		}).Warn("Unreadable archive file skipped")
		return nil, 1
	}

	shared := file.LastUpdated
	if file.PickedAt != nil {
		shared = *file.PickedAt
	}

	var entries []contracts.LedgerEntry
	var skipped int
	for _, e := range file.Stocks {
		if e.PickedAt.IsZero() {
			e.PickedAt = shared
		}
		if e.Symbol == "" || e.PickedAt.IsZero() {
			a.logger.WithError(contracts.ErrMalformedEntry).WithField("file", filepath.Base(path)).Debug("Archive entry skipped")
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, skipped
}
