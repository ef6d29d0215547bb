package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// Format identifies a plan file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("plan file %q: unsupported extension (want .json, .yaml or .yml)", path)
	}
}

// Decode parses a plan in the given format.
func Decode(data []byte, format Format) (VideoPlan, error) {
	var p VideoPlan
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &p); err != nil {
			return VideoPlan{}, fmt.Errorf("decode json plan: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &p); err != nil {
			return VideoPlan{}, fmt.Errorf("decode yaml plan: %w", err)
		}
	default:
		return VideoPlan{}, fmt.Errorf("decode plan: unsupported format %q", format)
	}
	return p, nil
}

// Encode serializes a plan in the given format.
func Encode(p VideoPlan, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json plan: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return nil, fmt.Errorf("encode yaml plan: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml plan: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("encode plan: unsupported format %q", format)
	}
}

// LoadFile reads and decodes a plan file.
func LoadFile(path string) (VideoPlan, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return VideoPlan{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return VideoPlan{}, fmt.Errorf("read plan: %w", err)
	}
	return Decode(data, format)
}

// SaveFile writes the plan atomically while holding an exclusive lock on
// "<path>.lock", so concurrent resolutions targeting the same output never
// interleave their writes.
func SaveFile(path string, p VideoPlan) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(p, format)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure plan directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock plan file: %w", err)
	}
	if !ok {
		return fmt.Errorf("plan file %s is locked by another process", path)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(path + ".lock")
	}()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp plan: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp plan: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp plan: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace plan: %w", err)
	}
	return nil
}
