// Package vault abstracts the markdown document store notes are filed
// into. Paths are vault-relative and never start with "/"; the literal
// "/" is accepted only as the root folder marker.
package vault

import "context"

// DocumentStore defines the storage operations the ingestion pipeline
// consumes. Implementations are expected to be safe for sequential use
// from a single pipeline run; no cross-run state is held here.
type DocumentStore interface {
	// Exists reports whether a document exists at path. Folders do
	// not count as documents.
	Exists(path string) bool

	// Read returns the text content of the document at path.
	Read(ctx context.Context, path string) (string, error)

	// Create writes a new text document. It fails if the path
	// already exists.
	Create(ctx context.Context, path, content string) error

	// Modify overwrites an existing document's content.
	Modify(ctx context.Context, path, content string) error

	// CreateBinary writes a new binary object (downloaded assets).
	CreateBinary(ctx context.Context, path string, data []byte) error

	// CreateFolder creates a folder (and parents) if absent.
	CreateFolder(ctx context.Context, path string) error

	// Open focuses a document after creation. Failures here are
	// non-critical and may be ignored by callers.
	Open(ctx context.Context, path string) error
}

// TemplateEngine inserts a named template into a document. It models
// the host's template capability; insertion failure is never fatal to
// a filing since the document has already been durably created.
type TemplateEngine interface {
	InsertTemplate(ctx context.Context, docPath, templateName string) error
}

// NopTemplateEngine ignores every insertion request. Used when no
// template capability is available and in tests.
type NopTemplateEngine struct{}

func (NopTemplateEngine) InsertTemplate(context.Context, string, string) error { return nil }
