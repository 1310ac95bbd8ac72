package vault

import (
	"context"
	"fmt"
	"strings"
)

// FolderTemplates is a TemplateEngine that resolves template names
// against a templates folder inside the vault and prepends the
// template body to the target document.
type FolderTemplates struct {
	store  DocumentStore
	folder string
}

// NewFolderTemplates creates a template engine reading templates from
// the given vault-relative folder (commonly "templates").
func NewFolderTemplates(store DocumentStore, folder string) *FolderTemplates {
	return &FolderTemplates{store: store, folder: strings.TrimSuffix(folder, "/")}
}

func (t *FolderTemplates) InsertTemplate(ctx context.Context, docPath, templateName string) error {
	if templateName == "" {
		return fmt.Errorf("template name empty")
	}
	tmplPath := t.folder + "/" + templateName
	if !strings.HasSuffix(tmplPath, ".md") {
		tmplPath += ".md"
	}
	if !t.store.Exists(tmplPath) {
		return fmt.Errorf("template %s not found", tmplPath)
	}

	body, err := t.store.Read(ctx, tmplPath)
	if err != nil {
		return fmt.Errorf("reading template %s: %w", tmplPath, err)
	}
	if body == "" {
		return fmt.Errorf("template %s is empty", tmplPath)
	}

	current, err := t.store.Read(ctx, docPath)
	if err != nil {
		return fmt.Errorf("reading document %s: %w", docPath, err)
	}
	return t.store.Modify(ctx, docPath, body+"\n"+current)
}
