// Package validation checks request-shaped inputs before they become
// task content: index uids, document ids, and delete-by-filter
// expressions, each checked for the well-formedness a malformed
// request would otherwise only fail on deep inside task execution.
//
// Every failure here is surfaced as the same *errors.EngineError the
// rest of the engine uses (component I), so a caller never has to
// special-case a validation error's shape.
package validation

import (
	"regexp"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
)

// MaxIndexUIDLength bounds index_uid the way the engine's filesystem
// layout does: one "<uid>.db" file per index under the data directory's
// indexes/ folder, so the uid also has to survive as a path component on
// every target OS.
const MaxIndexUIDLength = 400

var indexUIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// IndexUID checks that uid is a non-empty ASCII identifier made only of
// letters, digits, hyphens, and underscores.
func IndexUID(uid string) error {
	if uid == "" {
		return engerrors.New(engerrors.CodeInvalidIndexUid, "index_uid cannot be empty", nil)
	}
	if len(uid) > MaxIndexUIDLength {
		return engerrors.New(engerrors.CodeInvalidIndexUid, "index_uid is too long", nil).
			WithDetail("index_uid", uid)
	}
	if !indexUIDPattern.MatchString(uid) {
		return engerrors.New(engerrors.CodeInvalidIndexUid,
			"index_uid can only contain letters, digits, hyphens, and underscores", nil).
			WithDetail("index_uid", uid)
	}
	return nil
}
