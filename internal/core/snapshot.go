package core

// snapshot.go is the storage I/O boundary: reading and rewriting the
// JSON backing files that seed the admin and validation collections.
// Atomicity applies here at whole-file granularity — a rewrite goes
// through a temp file and rename — never per row.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imm-a8ub/backoffice/internal/listing"
)

// readSnapshot loads a serialized listing collection from disk.
func readSnapshot(path string) ([]listing.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}

	var items []listing.Listing
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &SourceError{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}
	return items, nil
}

// writeSnapshot rewrites a listing collection to disk atomically.
func writeSnapshot(path string, items []listing.Listing) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return &SourceError{Path: path, Err: fmt.Errorf("encode: %w", err)}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return &SourceError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &SourceError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &SourceError{Path: path, Err: err}
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &SourceError{Path: path, Err: err}
	}
	return nil
}
