package validation

import (
	"regexp"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
)

var documentIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// DocumentID checks one external document id extracted from a
// document's primary-key field. The
// allowed charset mirrors IndexUID's.
func DocumentID(id string) error {
	if id == "" {
		return engerrors.New(engerrors.CodeMissingDocumentId, "document id cannot be empty", nil)
	}
	if !documentIDPattern.MatchString(id) {
		return engerrors.New(engerrors.CodeInvalidDocumentId,
			"document id can only contain letters, digits, hyphens, and underscores", nil).
			WithDetail("document_id", id)
	}
	return nil
}

// PrimaryKeyName checks a candidate primary-key field name supplied
// with a document-addition task.
func PrimaryKeyName(name string) error {
	if name == "" {
		return engerrors.New(engerrors.CodeMissingPrimaryKey, "primary key name cannot be empty", nil)
	}
	if !documentIDPattern.MatchString(name) {
		return engerrors.New(engerrors.CodeMissingPrimaryKey,
			"primary key name can only contain letters, digits, hyphens, and underscores", nil).
			WithDetail("primary_key", name)
	}
	return nil
}
