// Package errors implements the engine's closed error taxonomy: every
// public operation returns either success or exactly one Code, and every
// Code maps to a stable (HTTP status, name, category, documentation URL)
// tuple.
package errors

import "net/http"

// Category classifies a Code for client-side handling.
type Category string

const (
	CategoryInternal       Category = "internal"
	CategoryInvalidRequest Category = "invalid_request"
	CategoryAuthentication Category = "authentication"
)

// Code is a stable, closed identifier for one failure mode of the engine.
// Internal codes never carry caller-supplied data in their name.
type Code int

const (
	// index lifecycle
	CodeIndexCreationFailed Code = iota + 1
	CodeIndexAlreadyExists
	CodeIndexNotFound
	CodeInvalidIndexUid

	// task / job
	CodeTaskNotFound
	CodeInvalidTaskCancellation
	CodeDumpNotFound
	CodeDumpAlreadyInProgress
	CodeDumpProcessFailed

	// documents
	CodeMissingPrimaryKey
	CodePrimaryKeyAlreadyPresent
	CodeMissingDocumentId
	CodeInvalidDocumentId
	CodeDocumentNotFound
	CodeMaxFieldsLimitExceeded

	// ingestion payload
	CodeMissingPayload
	CodeMalformedPayload
	CodeMissingContentType
	CodeInvalidContentType
	CodeUnsupportedMediaType
	CodeInvalidDocumentCSVDelimiter
	CodePayloadTooLarge

	// query / filter
	CodeInvalidFilter
	CodeInvalidSort
	CodeInvalidSearchQuery

	// storage / internal
	CodeCorruptDocument
	CodeInvalidStoreFile
	CodeDatabaseSizeLimitReached
	CodeNoSpaceLeftOnDevice
	CodeInvalidState
	CodeInternal

	// auth (external collaborator surface, modeled for completeness)
	CodeMissingAuthorizationHeader
	CodeInvalidApiKey
)

type codeInfo struct {
	status   int
	name     string
	category Category
}

var registry = map[Code]codeInfo{
	CodeIndexCreationFailed:        {http.StatusInternalServerError, "index_creation_failed", CategoryInternal},
	CodeIndexAlreadyExists:         {http.StatusConflict, "index_already_exists", CategoryInvalidRequest},
	CodeIndexNotFound:              {http.StatusNotFound, "index_not_found", CategoryInvalidRequest},
	CodeInvalidIndexUid:            {http.StatusBadRequest, "invalid_index_uid", CategoryInvalidRequest},

	CodeTaskNotFound:               {http.StatusNotFound, "task_not_found", CategoryInvalidRequest},
	CodeInvalidTaskCancellation:    {http.StatusBadRequest, "invalid_task_cancellation", CategoryInvalidRequest},
	CodeDumpNotFound:               {http.StatusNotFound, "dump_not_found", CategoryInvalidRequest},
	CodeDumpAlreadyInProgress:      {http.StatusConflict, "dump_already_processing", CategoryInvalidRequest},
	CodeDumpProcessFailed:          {http.StatusInternalServerError, "dump_process_failed", CategoryInternal},

	CodeMissingPrimaryKey:          {http.StatusBadRequest, "primary_key_inference_failed", CategoryInvalidRequest},
	CodePrimaryKeyAlreadyPresent:   {http.StatusBadRequest, "index_primary_key_already_exists", CategoryInvalidRequest},
	CodeMissingDocumentId:          {http.StatusBadRequest, "missing_document_id", CategoryInvalidRequest},
	CodeInvalidDocumentId:          {http.StatusBadRequest, "invalid_document_id", CategoryInvalidRequest},
	CodeDocumentNotFound:           {http.StatusNotFound, "document_not_found", CategoryInvalidRequest},
	CodeMaxFieldsLimitExceeded:     {http.StatusBadRequest, "max_fields_limit_exceeded", CategoryInvalidRequest},

	CodeMissingPayload:             {http.StatusBadRequest, "missing_payload", CategoryInvalidRequest},
	CodeMalformedPayload:           {http.StatusBadRequest, "malformed_payload", CategoryInvalidRequest},
	CodeMissingContentType:         {http.StatusUnsupportedMediaType, "missing_content_type", CategoryInvalidRequest},
	CodeInvalidContentType:         {http.StatusUnsupportedMediaType, "invalid_content_type", CategoryInvalidRequest},
	CodeUnsupportedMediaType:       {http.StatusUnsupportedMediaType, "unsupported_media_type", CategoryInvalidRequest},
	CodeInvalidDocumentCSVDelimiter: {http.StatusBadRequest, "invalid_document_csv_delimiter", CategoryInvalidRequest},
	CodePayloadTooLarge:            {http.StatusRequestEntityTooLarge, "payload_too_large", CategoryInvalidRequest},

	CodeInvalidFilter:              {http.StatusBadRequest, "invalid_filter", CategoryInvalidRequest},
	CodeInvalidSort:                {http.StatusBadRequest, "invalid_sort", CategoryInvalidRequest},
	CodeInvalidSearchQuery:         {http.StatusBadRequest, "invalid_search_query", CategoryInvalidRequest},

	CodeCorruptDocument:            {http.StatusInternalServerError, "corrupt_document", CategoryInternal},
	CodeInvalidStoreFile:           {http.StatusInternalServerError, "invalid_store_file", CategoryInternal},
	CodeDatabaseSizeLimitReached:   {http.StatusInternalServerError, "database_size_limit_reached", CategoryInternal},
	CodeNoSpaceLeftOnDevice:        {http.StatusInternalServerError, "no_space_left_on_device", CategoryInternal},
	CodeInvalidState:               {http.StatusInternalServerError, "invalid_state", CategoryInternal},
	CodeInternal:                   {http.StatusInternalServerError, "internal", CategoryInternal},

	CodeMissingAuthorizationHeader: {http.StatusUnauthorized, "missing_authorization_header", CategoryAuthentication},
	CodeInvalidApiKey:              {http.StatusForbidden, "invalid_api_key", CategoryAuthentication},
}

const docBaseURL = "https://docs.searchd.dev/errors#"

// HTTPStatus returns the HTTP status code associated with c.
func (c Code) HTTPStatus() int {
	return registry[c].status
}

// Name returns the stable, machine-readable name of c (e.g. "index_not_found").
func (c Code) Name() string {
	if info, ok := registry[c]; ok {
		return info.name
	}
	return "internal"
}

// Category returns the category of c.
func (c Code) Category() Category {
	if info, ok := registry[c]; ok {
		return info.category
	}
	return CategoryInternal
}

// DocURL returns the stable documentation URL for c.
func (c Code) DocURL() string {
	return docBaseURL + c.Name()
}
