package snapshot

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Aman-CERP/searchd/internal/codec"
	engerrors "github.com/Aman-CERP/searchd/internal/errors"
	"github.com/Aman-CERP/searchd/internal/store"
	"github.com/Aman-CERP/searchd/internal/task"
)

// DumpFormatVersion is the current on-disk dump layout version this
// engine writes; it never writes anything but the current version.
// ./compat provides only the Chain runner and the legacy ranking-rule
// parsers: no concrete migrator exists, and older layouts (v5 and
// below) are not read.
const DumpFormatVersion = 6

// dumpMetadata is the root descriptor of a dump archive, read first by
// any consumer to decide which compat reader applies.
type dumpMetadata struct {
	DumpVersion int       `json:"dump_version"`
	DumpDate    time.Time `json:"dump_date"`
}

// DumpIndex is one index's contribution to a dump: its settings and an
// already-open view over its documents.
type DumpIndex struct {
	UID      string
	Settings store.Settings
	Fields   *codec.FieldsIDMap
	Index    *store.Index
}

// DumpOptions configures a dump run.
type DumpOptions struct {
	DumpDir string
	Name    string
}

// Dump renders every task and every index's settings and documents into
// the versioned layout, archives it, and atomically publishes it —
// structurally the same pipeline as Create, but JSON rather than binary
// bbolt files, so the result can be read back by a different engine
// build.
func Dump(opts DumpOptions, tasks *task.Store, indexes []DumpIndex) (Result, error) {
	staging, err := os.MkdirTemp(opts.DumpDir, ".dump-staging-")
	if err != nil {
		return Result{}, engerrors.New(engerrors.CodeInternal, "failed to create dump staging directory", err)
	}
	defer os.RemoveAll(staging)

	if err := writeDumpMetadata(staging); err != nil {
		return Result{}, err
	}
	if err := writeDumpTasks(staging, tasks); err != nil {
		return Result{}, err
	}
	for _, di := range indexes {
		if err := writeDumpIndex(staging, di); err != nil {
			return Result{}, err
		}
	}

	if err := os.MkdirAll(opts.DumpDir, 0o755); err != nil {
		return Result{}, engerrors.New(engerrors.CodeInternal, "failed to create dump directory", err)
	}
	tmp, err := os.CreateTemp(opts.DumpDir, ".dump-*.tmp")
	if err != nil {
		return Result{}, engerrors.New(engerrors.CodeInternal, "failed to create dump archive temp file", err)
	}
	tmpPath := tmp.Name()
	archiveErr := archiveDir(staging, tmp)
	closeErr := tmp.Close()
	if archiveErr != nil {
		os.Remove(tmpPath)
		return Result{}, archiveErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return Result{}, engerrors.New(engerrors.CodeInternal, "failed to finalize dump archive", closeErr)
	}

	finalPath := filepath.Join(opts.DumpDir, opts.Name+".dump")
	renameErr := engerrors.Retry(context.Background(), publishRetryConfig(), func() error {
		return os.Rename(tmpPath, finalPath)
	})
	if renameErr != nil {
		os.Remove(tmpPath)
		return Result{}, engerrors.New(engerrors.CodeInternal, "failed to publish dump archive", renameErr)
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return Result{}, engerrors.New(engerrors.CodeInternal, "failed to stat published dump", err)
	}
	return Result{Path: finalPath, Size: info.Size()}, nil
}

func writeDumpMetadata(staging string) error {
	meta := dumpMetadata{DumpVersion: DumpFormatVersion, DumpDate: time.Now().UTC()}
	raw, err := json.Marshal(meta)
	if err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to encode dump metadata", err)
	}
	if err := os.WriteFile(filepath.Join(staging, "metadata.json"), raw, 0o644); err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to write dump metadata", err)
	}
	return nil
}

func writeDumpTasks(staging string, tasks *task.Store) error {
	dir := filepath.Join(staging, "tasks")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to create dump tasks directory", err)
	}
	f, err := os.Create(filepath.Join(dir, "queue.jsonl"))
	if err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to create dump task queue file", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	all, err := tasks.List(task.ListFilter{}, task.Pagination{})
	if err != nil {
		return err
	}
	for i := len(all) - 1; i >= 0; i-- {
		if err := enc.Encode(all[i]); err != nil {
			return engerrors.New(engerrors.CodeInternal, "failed to encode task into dump", err)
		}
	}
	return w.Flush()
}

func writeDumpIndex(staging string, di DumpIndex) error {
	dir := filepath.Join(staging, "indexes", di.UID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to create dump index directory", err)
	}

	settingsRaw, err := json.Marshal(di.Settings)
	if err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to encode index settings into dump", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), settingsRaw, 0o644); err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to write dump settings", err)
	}

	dict, err := di.Index.LoadDictionary()
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, "documents.jsonl"))
	if err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to create dump documents file", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)

	var scratch []byte
	var iterErr error
	err = di.Index.Iter(func(entry store.IterEntry) bool {
		var kv *codec.KVReader
		if dict.Trained {
			kv, iterErr = entry.View.DecompressWith(&scratch, dict.Bytes)
		} else {
			kv = entry.View.AsNonCompressed()
		}
		if iterErr != nil {
			return false
		}
		doc, err := store.Project(kv, di.Fields, store.ProjectOptions{RetrieveVectors: store.RetrieveVectorsRetrieve})
		if err != nil {
			iterErr = err
			return false
		}
		if iterErr = enc.Encode(doc); iterErr != nil {
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	if iterErr != nil {
		return engerrors.New(engerrors.CodeCorruptDocument, fmt.Sprintf("failed to dump document in index %q", di.UID), iterErr)
	}
	return w.Flush()
}
