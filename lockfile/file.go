package lockfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/willibrandon/gorestore/observability"
)

// ReadFile reads the lock file at path. Like Read it never returns a nil
// lock file; a missing file yields an error matching fs.ErrNotExist.
func ReadFile(ctx context.Context, path string) (lf *LockFile, err error) {
	_, span := observability.StartLockFileSpan(ctx, "read", path)
	defer func() { observability.EndSpanWithError(span, err) }()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			observability.LockFileReadsTotal.WithLabelValues("missing").Inc()
		}
		return invalidLockFile(), err
	}
	defer func() { _ = f.Close() }()

	lf, err = Read(f)
	if err != nil {
		observability.LockFileReadsTotal.WithLabelValues("malformed").Inc()
		return lf, fmt.Errorf("read %s: %w", path, err)
	}
	observability.LockFileReadsTotal.WithLabelValues("ok").Inc()
	return lf, nil
}

// WriteFile writes lf to path through a temporary file and a rename, so
// readers never observe a partial document.
func WriteFile(ctx context.Context, path string, lf *LockFile) error {
	data, err := Marshal(lf)
	if err != nil {
		return err
	}
	return writeAtomic(ctx, path, data)
}

// WriteFileIfChanged writes lf unless path already holds the same
// document. It reports whether the file was written.
func WriteFileIfChanged(ctx context.Context, path string, lf *LockFile) (bool, error) {
	data, err := Marshal(lf)
	if err != nil {
		return false, err
	}
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		observability.LockFileWritesTotal.WithLabelValues("unchanged").Inc()
		return false, nil
	}
	if err := writeAtomic(ctx, path, data); err != nil {
		return false, err
	}
	return true, nil
}

// Fingerprint hashes the canonical encoding of lf. Equal fingerprints mean
// equal documents with overwhelming probability. Restores report it so two
// runs can be compared without diffing the files.
func Fingerprint(lf *LockFile) (uint64, error) {
	data, err := Marshal(lf)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}

func writeAtomic(ctx context.Context, path string, data []byte) (err error) {
	_, span := observability.StartLockFileSpan(ctx, "write", path)
	defer func() { observability.EndSpanWithError(span, err) }()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create lock file dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp lock file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write lock file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write lock file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write lock file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename lock file: %w", err)
	}

	observability.LockFileWritesTotal.WithLabelValues("written").Inc()
	return nil
}
