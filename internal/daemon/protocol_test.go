package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/searchd/internal/task"
)

func TestTaskRegisterParams_Validate(t *testing.T) {
	t.Run("document task requires index_uid", func(t *testing.T) {
		p := TaskRegisterParams{Content: task.Content{Kind: task.ContentDocumentClear}}
		assert.Error(t, p.Validate())
	})

	t.Run("dump creation needs no index_uid", func(t *testing.T) {
		p := TaskRegisterParams{Content: task.Content{Kind: task.ContentDumpCreation}}
		assert.NoError(t, p.Validate())
	})

	t.Run("snapshot creation needs no index_uid", func(t *testing.T) {
		p := TaskRegisterParams{Content: task.Content{Kind: task.ContentSnapshotCreation}}
		assert.NoError(t, p.Validate())
	})

	t.Run("valid with index_uid", func(t *testing.T) {
		p := TaskRegisterParams{IndexUID: "movies", Content: task.Content{Kind: task.ContentIndexCreation}}
		assert.NoError(t, p.Validate())
	})

	t.Run("rejects malformed index_uid", func(t *testing.T) {
		p := TaskRegisterParams{IndexUID: "movies/2024", Content: task.Content{Kind: task.ContentIndexCreation}}
		assert.Error(t, p.Validate())
	})

	t.Run("rejects malformed delete-by-filter expression", func(t *testing.T) {
		p := TaskRegisterParams{IndexUID: "movies", Content: task.Content{
			Kind:   task.ContentDocumentDeletionByFilter,
			Filter: "title",
		}}
		assert.Error(t, p.Validate())
	})

	t.Run("accepts well-formed delete-by-filter expression", func(t *testing.T) {
		p := TaskRegisterParams{IndexUID: "movies", Content: task.Content{
			Kind:   task.ContentDocumentDeletionByFilter,
			Filter: `title = X`,
		}}
		assert.NoError(t, p.Validate())
	})

	t.Run("rejects malformed document id in deletion list", func(t *testing.T) {
		p := TaskRegisterParams{IndexUID: "movies", Content: task.Content{
			Kind:        task.ContentDocumentDeletion,
			DocumentIDs: []string{"1", "bad/id"},
		}}
		assert.Error(t, p.Validate())
	})
}

func TestDocumentGetParams_Validate(t *testing.T) {
	t.Run("missing index_uid", func(t *testing.T) {
		p := DocumentGetParams{ExternalID: "1"}
		assert.Error(t, p.Validate())
	})

	t.Run("missing external_id", func(t *testing.T) {
		p := DocumentGetParams{IndexUID: "movies"}
		assert.Error(t, p.Validate())
	})

	t.Run("valid", func(t *testing.T) {
		p := DocumentGetParams{IndexUID: "movies", ExternalID: "1"}
		assert.NoError(t, p.Validate())
	})
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse("req-1", PingResult{Pong: true})
	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "req-1", resp.ID)
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("req-1", ErrCodeMethodNotFound, "method not found")
	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.Nil(t, resp.Result)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
	assert.Equal(t, "method not found", resp.Error.Message)
}
