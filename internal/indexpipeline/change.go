package indexpipeline

import "github.com/Aman-CERP/searchd/internal/store"

// ChangeKind identifies what an index-time mutation does to one
// document.
type ChangeKind int

const (
	ChangeAdd ChangeKind = iota
	ChangeUpdate
	ChangeDelete
)

// DocumentChange carries the old and new forms of one document through
// the pipeline. Old/New are raw, uncompressed KV blocks (the form
// codec.KVReader expects), not yet compressed against the index's
// dictionary. ExternalID is required for ChangeAdd; DocID is required
// for ChangeUpdate and ChangeDelete (ChangeAdd leaves it zero — the
// pipeline allocates one before extraction starts).
type DocumentChange struct {
	Kind       ChangeKind
	ExternalID string
	DocID      store.DocID
	Old        []byte
	New        []byte
}

// resolvedChange is a DocumentChange with its DocID pinned to a real
// value, the form every extractor consumes.
type resolvedChange struct {
	DocumentChange
	id store.DocID
}
