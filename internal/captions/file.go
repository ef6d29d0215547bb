package captions

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReadFile parses an SRT file leniently.
func ReadFile(path string) (Track, ParseStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ParseStats{}, fmt.Errorf("read srt: %w", err)
	}
	track, stats := ParseReport(string(data))
	return track, stats, nil
}

// WriteFile writes the track as SRT, replacing path atomically.
func WriteFile(path string, track Track) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create srt directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp srt: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(Format(track)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write srt: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close srt: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename srt: %w", err)
	}
	return nil
}
