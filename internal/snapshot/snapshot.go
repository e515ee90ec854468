// Package snapshot implements the live snapshot mechanism and the
// versioned dump engine.
//
// A snapshot is a fast, binary, engine-private point-in-time copy of
// every storage environment plus the pending-payload tree, meant for
// disaster recovery and restart: compact-copy the task store and every
// index environment into a scratch directory, carry over the
// payload-file tree, tar+gzip the result, and land it with a single
// atomic rename so a reader never observes a partial archive.
//
// A dump is the portable, versioned counterpart: documents and
// settings rendered to JSON rather than bbolt's binary format. ./compat
// holds the Chain runner for forward-only migrators; no concrete
// migrator and no dump reader are implemented, so this engine does not
// read dumps back.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
	"github.com/Aman-CERP/searchd/internal/task"
)

// Options configures a snapshot run.
type Options struct {
	// DataDir is the engine's root data directory (task store,
	// per-index environments under indexes/, payload files).
	DataDir string
	// PayloadDir holds pending document-addition payload files.
	PayloadDir string
	// SnapshotDir is where the finished <name>.snapshot archive lands.
	SnapshotDir string
	// Name is the base name of the produced archive, without the
	// ".snapshot" suffix (typically the engine instance's db name).
	Name string
}

// Result is what a successful snapshot run returns.
type Result struct {
	Path string
	Size int64
}

// Create performs one full snapshot: compacted copies of every storage
// environment, the payload tree, archived and atomically published.
// tasks and indexUIDs/openIndex let the caller (the scheduler) supply
// already-open handles instead of this package re-opening them, since
// only one process may hold an index's bbolt environment at a time.
func Create(opts Options, tasks *task.Store, indexUIDs []string, openIndex func(uid string) (IndexEnv, error)) (Result, error) {
	lock := NewLock(opts.DataDir)
	acquired, err := lock.TryLock()
	if err != nil {
		return Result{}, err
	}
	if !acquired {
		return Result{}, engerrors.New(engerrors.CodeInternal, "a snapshot is already in progress", nil)
	}
	defer lock.Unlock()

	staging, err := os.MkdirTemp(opts.SnapshotDir, ".snapshot-staging-")
	if err != nil {
		return Result{}, engerrors.New(engerrors.CodeInternal, "failed to create snapshot staging directory", err)
	}
	defer os.RemoveAll(staging)

	if err := compactBackup(tasks.Path(), tasks.Backup, filepath.Join(staging, "tasks.db")); err != nil {
		return Result{}, err
	}

	indexesDir := filepath.Join(staging, "indexes")
	if err := os.MkdirAll(indexesDir, 0o755); err != nil {
		return Result{}, engerrors.New(engerrors.CodeInternal, "failed to create snapshot indexes directory", err)
	}
	for _, uid := range indexUIDs {
		env, err := openIndex(uid)
		if err != nil {
			return Result{}, err
		}
		dest := filepath.Join(indexesDir, uid+".db")
		if err := compactBackup(env.Path(), env.Backup, dest); err != nil {
			return Result{}, err
		}
	}

	if err := copyTree(opts.PayloadDir, filepath.Join(staging, "payloads")); err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(opts.SnapshotDir, 0o755); err != nil {
		return Result{}, engerrors.New(engerrors.CodeInternal, "failed to create snapshot directory", err)
	}
	tmpArchive, err := os.CreateTemp(opts.SnapshotDir, ".snapshot-*.tmp")
	if err != nil {
		return Result{}, engerrors.New(engerrors.CodeInternal, "failed to create snapshot archive temp file", err)
	}
	tmpPath := tmpArchive.Name()
	archiveErr := archiveDir(staging, tmpArchive)
	closeErr := tmpArchive.Close()
	if archiveErr != nil {
		os.Remove(tmpPath)
		return Result{}, archiveErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return Result{}, engerrors.New(engerrors.CodeInternal, "failed to finalize snapshot archive", closeErr)
	}

	finalPath := filepath.Join(opts.SnapshotDir, opts.Name+".snapshot")
	renameErr := engerrors.Retry(context.Background(), publishRetryConfig(), func() error {
		return os.Rename(tmpPath, finalPath)
	})
	if renameErr != nil {
		os.Remove(tmpPath)
		return Result{}, engerrors.New(engerrors.CodeInternal, "failed to publish snapshot archive", renameErr)
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return Result{}, engerrors.New(engerrors.CodeInternal, "failed to stat published snapshot", err)
	}
	return Result{Path: finalPath, Size: info.Size()}, nil
}

// IndexEnv is the per-index slice of *store.Index the snapshot engine
// needs, kept as an interface so this package does not import
// internal/store directly (it only ever touches the on-disk file, via
// Path/Backup).
type IndexEnv interface {
	Path() string
	Backup(destPath string) error
}

// compactBackup copies src's live environment at path to a fresh
// consistent copy, then compacts that copy into dest, reclaiming free
// pages rather than carrying them over uncompacted.
func compactBackup(path string, backup func(destPath string) error, dest string) error {
	raw := dest + ".raw"
	if err := backup(raw); err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to back up storage environment", err).WithDetail("path", path)
	}
	defer os.Remove(raw)

	src, err := bbolt.Open(raw, 0o600, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to open backup copy for compaction", err)
	}
	defer src.Close()

	dst, err := bbolt.Open(dest, 0o600, nil)
	if err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to create compacted copy", err)
	}
	defer dst.Close()

	if err := bbolt.Compact(dst, src, 0); err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to compact storage environment", err)
	}
	return nil
}

// copyTree recursively copies src into dst. A missing src (no payload
// files reserved yet) is not an error.
func copyTree(src, dst string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = io.Copy(out, in)
		return err
	})
}

// DefaultName derives a timestamped snapshot/dump base name, used when
// the caller does not pin a fixed instance name.
func DefaultName(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, at.UTC().Format("20060102-150405"))
}

// publishRetryConfig governs the final atomic-rename step of a
// snapshot or dump. A rename across the same filesystem is not
// expected to fail, but a handful of short retries absorb the
// transient EBUSY/EMFILE a concurrent antivirus scan or backup agent
// can trigger on network-mounted data directories.
func publishRetryConfig() engerrors.RetryConfig {
	cfg := engerrors.DefaultRetryConfig()
	cfg.MaxRetries = 2
	cfg.InitialDelay = 50 * time.Millisecond
	cfg.MaxDelay = 200 * time.Millisecond
	return cfg
}
