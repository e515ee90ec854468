package scheduler

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Aman-CERP/searchd/internal/codec"
	engerrors "github.com/Aman-CERP/searchd/internal/errors"
	"github.com/Aman-CERP/searchd/internal/indexpipeline"
	"github.com/Aman-CERP/searchd/internal/store"
	"github.com/Aman-CERP/searchd/internal/tokenize"
)

// openIndex bundles everything the scheduler needs to run one index's
// batches: its storage environment and its in-memory fields map, kept
// live across batches so ids stay stable without reloading.
type openIndex struct {
	idx    *store.Index
	fields *codec.FieldsIDMap
}

// IndexManager lazily opens and caches one *store.Index per index_uid
// under a shared data directory, reduced to what the scheduler needs:
// open, create, delete.
type IndexManager struct {
	dataDir string

	mu      sync.Mutex
	indexes map[string]*openIndex
}

// NewIndexManager returns a manager rooted at dataDir (one "<uid>.db"
// bbolt file per index under dataDir/indexes/, beside the task store
// and payload directory).
func NewIndexManager(dataDir string) *IndexManager {
	return &IndexManager{dataDir: dataDir, indexes: make(map[string]*openIndex)}
}

func (m *IndexManager) path(uid string) string {
	return filepath.Join(m.dataDir, "indexes", uid+".db")
}

// Open returns the (possibly newly opened) index for uid.
func (m *IndexManager) Open(uid string) (*store.Index, *codec.FieldsIDMap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oi, ok := m.indexes[uid]; ok {
		return oi.idx, oi.fields, nil
	}

	if err := os.MkdirAll(filepath.Dir(m.path(uid)), 0o755); err != nil {
		return nil, nil, engerrors.New(engerrors.CodeInternal, "failed to create index directory", err).WithDetail("index_uid", uid)
	}

	idx, err := store.Open(uid, m.path(uid))
	if err != nil {
		return nil, nil, err
	}

	fields, err := idx.LoadFieldsIDMap()
	if err != nil {
		_ = idx.Close()
		return nil, nil, engerrors.New(engerrors.CodeInternal, "failed to load fields map", err).WithDetail("index_uid", uid)
	}

	m.indexes[uid] = &openIndex{idx: idx, fields: fields}
	return idx, fields, nil
}

// Exists reports whether uid's on-disk environment is already present,
// without opening it.
func (m *IndexManager) Exists(uid string) bool {
	_, err := os.Stat(m.path(uid))
	return err == nil
}

// Delete closes and removes uid's environment entirely.
func (m *IndexManager) Delete(uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oi, ok := m.indexes[uid]; ok {
		_ = oi.idx.Close()
		delete(m.indexes, uid)
	}
	if err := os.Remove(m.path(uid)); err != nil && !os.IsNotExist(err) {
		return engerrors.New(engerrors.CodeInternal, "failed to delete index environment", err).WithDetail("index_uid", uid)
	}
	return nil
}

// UIDs lists every index_uid with an on-disk environment, whether or
// not it is currently open, for callers (the snapshot and dump
// engines) that must visit every index rather than just the cached
// ones.
func (m *IndexManager) UIDs() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(m.dataDir, "indexes"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, engerrors.New(engerrors.CodeInternal, "failed to list index directory", err)
	}

	uids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		uids = append(uids, strings.TrimSuffix(e.Name(), ".db"))
	}
	return uids, nil
}

// CloseAll releases every open environment, used on scheduler shutdown.
func (m *IndexManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for uid, oi := range m.indexes {
		_ = oi.idx.Close()
		delete(m.indexes, uid)
	}
}

// Pipeline builds the indexing pipeline for uid from its current
// persisted settings.
func Pipeline(idx *store.Index, cacheCapacity int) (*indexpipeline.Pipeline, error) {
	settings, err := idx.LoadSettings()
	if err != nil {
		return nil, engerrors.New(engerrors.CodeInternal, "failed to load index settings", err).WithDetail("index_uid", idx.UID)
	}
	return pipelineFromSettings(settings, cacheCapacity), nil
}

// pipelineFromSettings is the shared builder behind Pipeline, split out
// so callers that already loaded settings for another reason (the
// scheduler needs Settings.PrimaryKey too) don't load them twice.
func pipelineFromSettings(settings store.Settings, cacheCapacity int) *indexpipeline.Pipeline {
	dt := &tokenize.DocumentTokenizer{
		Tokenizer:                tokenize.New(true),
		SearchableAttributes:     settings.SearchableAttributes,
		MaxPositionsPerAttribute: tokenize.DefaultMaxPositionsPerAttribute,
	}

	params := indexpipeline.Params{
		ExtractionCacheCapacity: cacheCapacity,
		FilterableAttributes:    settings.FilterableAttributes,
		SortableAttributes:      settings.SortableAttributes,
		ExactAttributes:         settings.ExactAttributes,
		GeoAttribute:            settings.GeoAttribute,
		PrefixMinLength:         settings.PrefixMinLength,
		PrefixMaxLength:         settings.PrefixMaxLength,
	}

	return indexpipeline.New(dt, params)
}
