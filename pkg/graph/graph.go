package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lineage/pkg/errors"
)

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// FormatFromPath picks the serialization format from a file extension.
// ".yaml" and ".yml" select YAML; everything else is JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// MarshalSnapshot encodes a snapshot as pretty-printed JSON.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSnapshot(s, &buf, FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalSnapshot decodes JSON or YAML bytes into a Snapshot.
func UnmarshalSnapshot(data []byte, format string) (Snapshot, error) {
	return ReadSnapshot(bytes.NewReader(data), format)
}

// WriteSnapshot writes a snapshot to w in the given format.
func WriteSnapshot(s Snapshot, w io.Writer, format string) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported snapshot format %q", format)
	}
}

// WriteSnapshotFile writes a snapshot to path, choosing the format from the
// extension. The file is created with 0644 permissions.
func WriteSnapshotFile(s Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSnapshot(s, f, FormatFromPath(path))
}

// ReadSnapshot decodes a snapshot from r.
func ReadSnapshot(r io.Reader, format string) (Snapshot, error) {
	var s Snapshot
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&s); err != nil && err != io.EOF {
			return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml snapshot")
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&s); err != nil {
			return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json snapshot")
		}
	default:
		return Snapshot{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported snapshot format %q", format)
	}
	return s, nil
}

// ReadSnapshotFile reads a JSON or YAML snapshot file.
func ReadSnapshotFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, errors.Wrap(errors.ErrCodeNotFound, err, "snapshot %s", path)
		}
		return Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSnapshot(f, FormatFromPath(path))
}
