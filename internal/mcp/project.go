package mcp

import (
	"github.com/Aman-CERP/searchd/internal/codec"
	engerrors "github.com/Aman-CERP/searchd/internal/errors"
	"github.com/Aman-CERP/searchd/internal/store"
)

// projectByExternalID resolves externalID to an internal id and
// projects its stored document to JSON,
// following the exact dictionary-or-raw decode path the daemon's
// document.get handler uses.
func (s *Server) projectByExternalID(indexUID, externalID string, fields, skip []string) (map[string]any, error) {
	idx, fieldsMap, err := s.indexes.Open(indexUID)
	if err != nil {
		return nil, err
	}

	internalID, found, err := idx.ExternalIDLookup(externalID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, engerrors.New(engerrors.CodeDocumentNotFound, "document not found", nil).
			WithDetail("index_uid", indexUID).WithDetail("external_id", externalID)
	}

	cr, err := idx.Get(internalID)
	if err != nil {
		return nil, err
	}
	dict, err := idx.LoadDictionary()
	if err != nil {
		return nil, err
	}

	kv, err := decompressFor(cr, dict)
	if err != nil {
		return nil, err
	}
	return store.Project(kv, fieldsMap, store.ProjectOptions{
		Fields:          fields,
		Skip:            skip,
		RetrieveVectors: retrieveVectorsDefault,
	})
}

// projectEntry is the Iter-callback counterpart of projectByExternalID,
// used by document_search's linear scan.
func projectEntry(entry store.IterEntry, dict codec.Dictionary, fields *codec.FieldsIDMap) (map[string]any, error) {
	kv, err := decompressFor(entry.View, dict)
	if err != nil {
		return nil, err
	}
	return store.Project(kv, fields, store.ProjectOptions{RetrieveVectors: retrieveVectorsDefault})
}

func decompressFor(cr *codec.CompressedReader, dict codec.Dictionary) (*codec.KVReader, error) {
	if dict.Trained {
		var buf []byte
		return cr.DecompressWith(&buf, dict.Bytes)
	}
	return cr.AsNonCompressed(), nil
}
