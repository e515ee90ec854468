package scheduler

import (
	"context"
	"time"

	"github.com/Aman-CERP/searchd/internal/snapshot"
)

// ConfigureSnapshot wires component H's live-snapshot and dump engines
// into s.Snapshot/s.Dump, the hooks executeDumpOrSnapshot invokes. Left
// as an opt-in call (rather than built into New) so tests that never
// touch a ContentSnapshotCreation/ContentDumpCreation task can build a
// Scheduler without a snapshot/dump directory.
func (s *Scheduler) ConfigureSnapshot(dataDir, snapshotDir, dumpDir, instanceName string) {
	s.Snapshot = func(ctx context.Context) (string, error) {
		uids, err := s.Indexes.UIDs()
		if err != nil {
			return "", err
		}
		result, err := snapshot.Create(snapshot.Options{
			DataDir:     dataDir,
			PayloadDir:  s.PayloadDir,
			SnapshotDir: snapshotDir,
			Name:        instanceName,
		}, s.Tasks, uids, func(uid string) (snapshot.IndexEnv, error) {
			idx, _, err := s.Indexes.Open(uid)
			return idx, err
		})
		if err != nil {
			return "", err
		}
		return result.Path, nil
	}

	s.Dump = func(ctx context.Context) (string, error) {
		uids, err := s.Indexes.UIDs()
		if err != nil {
			return "", err
		}
		indexes := make([]snapshot.DumpIndex, 0, len(uids))
		for _, uid := range uids {
			idx, fields, err := s.Indexes.Open(uid)
			if err != nil {
				return "", err
			}
			settings, err := idx.LoadSettings()
			if err != nil {
				return "", err
			}
			indexes = append(indexes, snapshot.DumpIndex{UID: uid, Settings: settings, Fields: fields, Index: idx})
		}
		result, err := snapshot.Dump(snapshot.DumpOptions{
			DumpDir: dumpDir,
			Name:    snapshot.DefaultName(instanceName, timeNow()),
		}, s.Tasks, indexes)
		if err != nil {
			return "", err
		}
		return result.Path, nil
	}
}

// timeNow is a seam so tests could stub the clock if a deterministic
// dump name ever mattered; today it is just time.Now.
func timeNow() time.Time { return time.Now() }
