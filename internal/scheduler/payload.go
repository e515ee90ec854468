package scheduler

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
)

// PayloadFile returns the path a newly allocated payload file for a
// document-addition task should live at, under dir: a file named by a
// UUID allocated by the scheduler before the task is registered. The
// ingest handler writes the raw bytes there before registering the
// owning task with that same uuid as its content_uuid.
func PayloadFile(dir string) (contentUUID string, path string) {
	id := uuid.New().String()
	return id, filepath.Join(dir, id)
}

// openPayload opens a previously reserved payload file for reading.
func openPayload(dir, contentUUID string) (*os.File, error) {
	f, err := os.Open(filepath.Join(dir, contentUUID))
	if err != nil {
		return nil, engerrors.New(engerrors.CodeMissingPayload, "payload file not found", err).WithDetail("content_uuid", contentUUID)
	}
	return f, nil
}

// deletePayload removes a task's payload file after terminal
// disposition
// which is deleted after terminal disposition"). A missing file is not
// an error: dry-run registrations and already-cleaned-up retries never
// reserved one.
func deletePayload(dir, contentUUID string) error {
	if contentUUID == "" {
		return nil
	}
	err := os.Remove(filepath.Join(dir, contentUUID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
