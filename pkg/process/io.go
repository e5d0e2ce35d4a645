package process

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowlane/pkg/errors"
)

// Format is an input file encoding.
type Format string

// Supported input formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything other
// than .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// document accepts both a single snapshot and a bundle.
type document struct {
	Snapshot `yaml:",inline"`
	Tables   []Snapshot `json:"tables" yaml:"tables"`
}

// ReadBundle decodes a snapshot or bundle from r. A single snapshot is
// returned as a one-table bundle. ReadBundle does not close r.
func ReadBundle(r io.Reader, format Format) (Bundle, error) {
	var doc document
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	case FormatJSON, "":
		err = json.NewDecoder(r).Decode(&doc)
	default:
		return Bundle{}, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}
	if err != nil {
		return Bundle{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", format)
	}

	if len(doc.Tables) > 0 {
		if !doc.Snapshot.IsEmpty() {
			return Bundle{}, errors.New(errors.ErrCodeInvalidInput, "document mixes top-level nodes with tables")
		}
		seen := make(map[string]bool, len(doc.Tables))
		for _, t := range doc.Tables {
			if seen[t.ID()] {
				return Bundle{}, errors.New(errors.ErrCodeInvalidInput, "duplicate table id %q", t.ID())
			}
			seen[t.ID()] = true
		}
		return Bundle{Tables: doc.Tables}, nil
	}
	return Bundle{Tables: []Snapshot{doc.Snapshot}}, nil
}

// ReadSnapshot decodes exactly one snapshot from r.
func ReadSnapshot(r io.Reader, format Format) (Snapshot, error) {
	b, err := ReadBundle(r, format)
	if err != nil {
		return Snapshot{}, err
	}
	if len(b.Tables) != 1 {
		return Snapshot{}, errors.New(errors.ErrCodeInvalidInput, "expected one table, found %d", len(b.Tables))
	}
	return b.Tables[0], nil
}

// ReadFile reads a snapshot or bundle from path, choosing the format from
// its extension.
func ReadFile(path string) (Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Bundle{}, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return Bundle{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadBundle(f, FormatFromPath(path))
}

// WriteSnapshot encodes s to w.
func WriteSnapshot(w io.Writer, s Snapshot, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
}
