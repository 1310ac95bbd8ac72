package ingest

import (
	"context"
	"log"
	"strings"

	"github.com/hyan/noteflow/internal/model"
	"github.com/hyan/noteflow/internal/vault"
)

// Writer places finalized message content into the document store,
// appending to an existing document or creating a new one per policy.
type Writer struct {
	store     vault.DocumentStore
	templates vault.TemplateEngine
}

// NewWriter creates a note writer. templates may be a
// vault.NopTemplateEngine when no template capability exists.
func NewWriter(store vault.DocumentStore, templates vault.TemplateEngine) *Writer {
	return &Writer{store: store, templates: templates}
}

// Write files content at the target. Under the append policy an
// existing document is read, joined with the new content by a single
// newline (new content first when InsertBeginning), and overwritten.
// Otherwise the document is created with exactly the given content
// and the configured template, if any, is inserted fire-and-forget.
func (w *Writer) Write(ctx context.Context, target model.StorageTarget, content string, cfg model.NamingConfig) error {
	content = applyAffixes(content, cfg, target)
	path := target.Path()

	if cfg.ConflictPolicy == model.ConflictAppend && w.store.Exists(path) {
		existing, err := w.store.Read(ctx, path)
		if err != nil {
			return &StorageError{Path: path, Err: err}
		}

		var merged string
		if cfg.InsertPosition == model.InsertBeginning {
			merged = content + "\n" + existing
		} else {
			merged = existing + "\n" + content
		}
		if err := w.store.Modify(ctx, path, merged); err != nil {
			return &StorageError{Path: path, Err: err}
		}
		return nil
	}

	if err := w.store.Create(ctx, path, content); err != nil {
		return &StorageError{Path: path, Err: err}
	}
	if err := w.store.Open(ctx, path); err != nil {
		// Post-create focus is non-critical.
		log.Printf("writer: open %s: %v", path, err)
	}

	if cfg.TemplateName != "" {
		// The document is already durably created; template failure
		// is logged, never propagated.
		if err := w.templates.InsertTemplate(ctx, path, cfg.TemplateName); err != nil {
			log.Printf("writer: insert template %q into %s: %v", cfg.TemplateName, path, err)
		}
	}
	return nil
}

// applyAffixes prepends/appends the configured content prefix and
// suffix, substituting date tokens from the message creation time and
// expanding literal \n sequences.
func applyAffixes(content string, cfg model.NamingConfig, target model.StorageTarget) string {
	if cfg.ContentPrefix != "" {
		prefix := FormatDateTokens(cfg.ContentPrefix, target.CreatedAt)
		content = strings.ReplaceAll(prefix, `\n`, "\n") + content
	}
	if cfg.ContentSuffix != "" {
		suffix := FormatDateTokens(cfg.ContentSuffix, target.CreatedAt)
		content = content + strings.ReplaceAll(suffix, `\n`, "\n")
	}
	return content
}
