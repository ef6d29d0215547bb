package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// Written describes a completed WriteVerified call.
type Written struct {
	Bytes  int64
	SHA256 string
}

// WriteVerified streams r into dst through a temp file in the same directory,
// hashing as it goes. When expectedSize is not negative the byte count must
// match it. dst only appears once the content is complete.
func WriteVerified(dst string, r io.Reader, expectedSize int64) (Written, error) {
	var result Written
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result, fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(dst)+".*.part")
	if err != nil {
		return result, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), r)
	if err != nil {
		cleanup()
		return result, fmt.Errorf("write %s: %w", filepath.Base(dst), err)
	}
	if expectedSize >= 0 && written != expectedSize {
		cleanup()
		return result, fmt.Errorf("size mismatch: expected %d bytes, wrote %d bytes", expectedSize, written)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return result, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return result, fmt.Errorf("rename into place: %w", err)
	}
	result.Bytes = written
	result.SHA256 = hex.EncodeToString(hasher.Sum(nil))
	return result, nil
}
