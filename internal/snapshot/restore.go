package snapshot

import (
	"os"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
)

// RestoreOptions bundles the knobs governing what happens at boot when
// both a live data directory and a snapshot archive might be present.
type RestoreOptions struct {
	DataDir               string
	SnapshotPath          string
	IgnoreIfDataDirExists bool
	IgnoreMissingSnapshot bool
}

// Restore extracts opts.SnapshotPath into opts.DataDir, following
// load_snapshot's three-way branch:
//   - DataDir already holds an environment and IgnoreIfDataDirExists is
//     false: refuse to start, so a restart never silently clobbers live
//     data with a stale archive.
//   - SnapshotPath is missing and IgnoreMissingSnapshot is false: error,
//     since the caller asked to restore from a snapshot that isn't there.
//   - Otherwise: extract if DataDir is empty/absent, or silently no-op
//     (data dir wins) if it exists and the caller chose to ignore that.
func Restore(opts RestoreOptions) error {
	dataDirExists, err := nonEmptyDirExists(opts.DataDir)
	if err != nil {
		return err
	}
	if dataDirExists {
		if !opts.IgnoreIfDataDirExists {
			return engerrors.New(engerrors.CodeInvalidState, "refusing to restore a snapshot over an existing data directory", nil).WithDetail("data_dir", opts.DataDir)
		}
		return nil
	}

	f, err := os.Open(opts.SnapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			if opts.IgnoreMissingSnapshot {
				return nil
			}
			return engerrors.New(engerrors.CodeDumpNotFound, "snapshot archive not found", err).WithDetail("path", opts.SnapshotPath)
		}
		return engerrors.New(engerrors.CodeInternal, "failed to open snapshot archive", err)
	}
	defer f.Close()

	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		return engerrors.New(engerrors.CodeInternal, "failed to create data directory", err)
	}
	if err := extractArchive(f, opts.DataDir); err != nil {
		return err
	}
	return nil
}

func nonEmptyDirExists(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, engerrors.New(engerrors.CodeInternal, "failed to inspect data directory", err)
	}
	return len(entries) > 0, nil
}
