// Package indexpipeline implements the indexing pipeline (component
// E): it coordinates the word, facet, prefix, and geo extractors over
// one batch of document changes, merges their sorted runs into the
// index's inverted-index tables, and commits the whole batch — new
// documents, new field ids, and every table merge — in a single bbolt
// write transaction.
package indexpipeline

import (
	"context"

	"go.etcd.io/bbolt"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/searchd/internal/codec"
	engerrors "github.com/Aman-CERP/searchd/internal/errors"
	"github.com/Aman-CERP/searchd/internal/extract"
	"github.com/Aman-CERP/searchd/internal/store"
	"github.com/Aman-CERP/searchd/internal/tokenize"
)

// Stats summarizes one Run, for the scheduler (component G) to fold
// into a task's Succeeded{DocumentAddition{indexed_documents}} result.
type Stats struct {
	Added   int
	Updated int
	Deleted int
}

// Pipeline runs the indexing pipeline against one index.
type Pipeline struct {
	Tokenizer *tokenize.DocumentTokenizer
	Params    Params
}

// New returns a Pipeline using dt as the searchable-attribute
// tokenizer for the word, word-position, and prefix extractors.
func New(dt *tokenize.DocumentTokenizer, params Params) *Pipeline {
	return &Pipeline{Tokenizer: dt, Params: params}
}

// Run executes one batch of document changes against idx: it
// pre-registers every leaf field path (serially, so the concurrent
// extractor phase never mutates the shared fields map — every
// extractor only ever reads it), fans the extractors out concurrently,
// then commits documents, field ids, and every extractor's merged run
// in one write transaction. On any extractor failure the whole batch
// is aborted: no documents, field ids or postings are committed, though
// the document-id counter advanced by the up-front allocation stays.
func (p *Pipeline) Run(ctx context.Context, idx *store.Index, fields *codec.FieldsIDMap, dict codec.Dictionary, changes []DocumentChange) (Stats, error) {
	fieldsBefore := fields.Len()
	if err := preRegisterFields(fields, changes); err != nil {
		return Stats{}, engerrors.New(engerrors.CodeInternal, "failed to register document fields", err)
	}

	var stats Stats
	resolved := make([]resolvedChange, len(changes))

	// Document ids must be known before extraction starts (every
	// extractor tags its bitmaps with the resolved id), so ChangeAdd
	// entries get theirs allocated up front in a short transaction
	// rather than inside the final commit.
	if err := idx.Update(func(tx *bbolt.Tx) error {
		for i, ch := range changes {
			id := ch.DocID
			if ch.Kind == ChangeAdd {
				allocated, err := store.NextDocIDTx(tx, idx.UID)
				if err != nil {
					return err
				}
				id = allocated
			}
			resolved[i] = resolvedChange{DocumentChange: ch, id: id}
		}
		return nil
	}); err != nil {
		return Stats{}, engerrors.New(engerrors.CodeInternal, "failed to allocate document ids", err)
	}

	for _, ch := range changes {
		switch ch.Kind {
		case ChangeAdd:
			stats.Added++
		case ChangeUpdate:
			stats.Updated++
		case ChangeDelete:
			stats.Deleted++
		}
	}

	var words, positions, prefixes, exactWords, facetStrings, facetNumbers, geoPoints *extract.Sorter

	var group errgroup.Group
	group.Go(func() error {
		w, pos, pre, err := wordExtraction(p.Tokenizer, fields, resolved, p.Params)
		words, positions, prefixes = w, pos, pre
		return err
	})
	group.Go(func() error {
		s, err := exactWordExtraction(fields, resolved, p.Params)
		exactWords = s
		return err
	})
	group.Go(func() error {
		strs, nums, err := facetExtraction(fields, resolved, p.Params)
		facetStrings, facetNumbers = strs, nums
		return err
	})
	group.Go(func() error {
		g, err := geoPointsExtraction(fields, resolved, p.Params)
		geoPoints = g
		return err
	})

	if err := group.Wait(); err != nil {
		return Stats{}, engerrors.New(engerrors.CodeInternal, "document extraction failed", err)
	}

	err := idx.Update(func(tx *bbolt.Tx) error {
		for i := fieldsBefore; i < fields.Len(); i++ {
			name, _ := fields.Name(codec.FieldID(i))
			if err := store.PersistNewFieldTx(tx, codec.FieldID(i), name); err != nil {
				return err
			}
		}

		for _, ch := range resolved {
			switch ch.Kind {
			case ChangeAdd, ChangeUpdate:
				if err := store.PutTx(tx, ch.id, ch.New, dict); err != nil {
					return err
				}
				if ch.ExternalID != "" {
					if err := store.PutExternalIDTx(tx, ch.ExternalID, ch.id); err != nil {
						return err
					}
				}
			case ChangeDelete:
				if err := store.DeleteTx(tx, ch.id); err != nil {
					return err
				}
				if ch.ExternalID != "" {
					if err := store.DeleteExternalIDTx(tx, ch.ExternalID); err != nil {
						return err
					}
				}
			}
		}

		merges := []struct {
			bucket []byte
			sorter *extract.Sorter
		}{
			{bucketWordDocids, words},
			{bucketWordPositionDocids, positions},
			{bucketPrefixDocids, prefixes},
			{bucketExactWordDocids, exactWords},
			{bucketFacetStringDocids, facetStrings},
			{bucketFacetNumberDocids, facetNumbers},
			{bucketGeoPointsDocids, geoPoints},
		}
		for _, m := range merges {
			if err := mergeSortedRunTx(tx, m.bucket, m.sorter); err != nil {
				return err
			}
		}

		return buildPrefixFSTTx(tx)
	})
	if err != nil {
		return Stats{}, engerrors.New(engerrors.CodeInternal, "failed to commit index batch", err)
	}

	return stats, nil
}
