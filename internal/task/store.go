package task

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
)

var (
	bucketTasks    = []byte("tasks")
	bucketByIndex  = []byte("by_index")
	bucketByStatus = []byte("by_status")
	bucketByKind   = []byte("by_kind")
	bucketMeta     = []byte("meta")
)

const keyNextTaskID = "next_task_id"

// Store is the persistent, globally ordered task store. Unlike
// internal/store's one-environment-per-index layout, one Store serves
// every index: task ids are ordered across the whole engine, so they
// live in one bbolt environment.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if absent) the task store at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, engerrors.New(engerrors.CodeInternal, "failed to open task store", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketTasks, bucketByIndex, bucketByStatus, bucketByKind, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, engerrors.New(engerrors.CodeInternal, "failed to initialize task store buckets", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying environment.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the on-disk bbolt file path, used by the snapshot engine
// to perform a compacted, consistent copy.
func (s *Store) Path() string {
	return s.db.Path()
}

// Backup writes a consistent point-in-time copy of the task store to
// destPath, mirroring store.Index.Backup.
func (s *Store) Backup(destPath string) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.CopyFile(destPath, 0o600)
	})
}

func idKey(id ID) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

func idFromKey(key []byte) ID {
	return ID(binary.BigEndian.Uint64(key))
}

// secondaryKey composes a scope byte string with the task id so the
// secondary index buckets stay ordered by (scope, id) under a plain
// bbolt cursor.
func secondaryKey(scope string, id ID) []byte {
	key := make([]byte, len(scope)+1+8)
	n := copy(key, scope)
	key[n] = 0
	binary.BigEndian.PutUint64(key[n+1:], uint64(id))
	return key
}

func putTaskTx(tx *bbolt.Tx, t *Task) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	if err := tx.Bucket(bucketTasks).Put(idKey(t.ID), raw); err != nil {
		return err
	}
	if err := tx.Bucket(bucketByIndex).Put(secondaryKey(t.IndexUID, t.ID), nil); err != nil {
		return err
	}
	return tx.Bucket(bucketByKind).Put(secondaryKey(t.Content.Kind.String(), t.ID), nil)
}

// reindexStatusTx drops old's stale (status, id) entry and writes
// fresh's current one. Called whenever a task's status-deriving event
// list changes; index and kind never change after registration so they
// are written once by putTaskTx and never touched again.
func reindexStatusTx(tx *bbolt.Tx, old *Task, fresh *Task) error {
	if old != nil {
		if err := tx.Bucket(bucketByStatus).Delete(secondaryKey(old.Status().String(), old.ID)); err != nil {
			return err
		}
	}
	return tx.Bucket(bucketByStatus).Put(secondaryKey(fresh.Status().String(), fresh.ID), nil)
}

func getTaskTx(tx *bbolt.Tx, id ID) (*Task, bool, error) {
	raw := tx.Bucket(bucketTasks).Get(idKey(id))
	if raw == nil {
		return nil, false, nil
	}
	var t Task
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, false, err
	}
	return &t, true, nil
}

func highestTaskIDTx(tx *bbolt.Tx) (ID, bool) {
	c := tx.Bucket(bucketTasks).Cursor()
	k, _ := c.Last()
	if k == nil {
		return 0, false
	}
	return idFromKey(k), true
}
