package model

import "time"

// Message is a single pending note delivered by a message source.
// It is immutable once fetched; the remote side discards it after a
// successful filing, so duplicate titles are handled by the conflict
// policy rather than by deduplicating messages.
type Message struct {
	// ID is the source-assigned message identifier.
	ID int64

	// Title is an optional explicit title. When non-empty it takes
	// precedence over every naming rule.
	Title string

	// Content is the raw message body. Messages with empty content
	// are skipped during ingestion.
	Content string

	// CreatedAt is the message creation time reported by the source.
	CreatedAt time.Time

	// Attachments carries binary parts delivered alongside the
	// message (e.g. inline images of a mail message). cid: and
	// attachment-placeholder references resolve against these by
	// name before falling back to the remote attachment endpoint.
	Attachments []Attachment
}

// Attachment is a named binary part carried by a message.
type Attachment struct {
	Name string
	Data []byte
}

// NamingRule selects how a document title is derived when the
// message carries no explicit title.
type NamingRule string

const (
	// RuleDateYMD titles the note YYYY-MM-DD using the filing time.
	RuleDateYMD NamingRule = "date-ymd"

	// RuleDateMD titles the note MM-DD using the filing time.
	RuleDateMD NamingRule = "date-md"

	// RuleContent derives the title from the first line of content.
	RuleContent NamingRule = "content"

	// RuleFixed uses a configured pattern with date tokens
	// substituted from the message creation time.
	RuleFixed NamingRule = "fixed"
)

// ConflictPolicy governs what happens when the derived filename
// already exists in the vault.
type ConflictPolicy string

const (
	// ConflictAppend reuses the same document so repeated filings
	// accumulate into it.
	ConflictAppend ConflictPolicy = "append"

	// ConflictNew probes numbered variants until an unused name is
	// found.
	ConflictNew ConflictPolicy = "new"
)

// InsertPosition controls where appended content lands relative to
// the existing document body.
type InsertPosition string

const (
	InsertBeginning InsertPosition = "beginning"
	InsertEnd       InsertPosition = "end"
)

// NamingConfig is the read-only naming and placement policy applied
// to every filed message. It is passed explicitly into each component;
// nothing reads settings ambiently.
type NamingConfig struct {
	Rule           NamingRule
	FixedPattern   string
	ConflictPolicy ConflictPolicy
	InsertPosition InsertPosition

	// SaveFolder is the vault-relative folder notes are filed into.
	// "/" and "" both mean the vault root.
	SaveFolder string

	// ContentPrefix and ContentSuffix are prepended/appended to the
	// note body. Both may embed date tokens resolved against the
	// message creation time, and literal \n sequences are expanded.
	ContentPrefix string
	ContentSuffix string

	// TemplateName, when non-empty, names a vault template inserted
	// into newly created documents.
	TemplateName string
}

// StorageTarget is the resolved destination for one message. It is an
// intermediate result of filename resolution and is never persisted.
type StorageTarget struct {
	Folder    string
	Title     string
	CreatedAt time.Time
}

// Path returns the vault-relative document path for the target.
func (t StorageTarget) Path() string {
	folder := t.Folder
	if folder == "" || folder == "/" {
		return t.Title
	}
	if folder[len(folder)-1] == '/' {
		return folder + t.Title
	}
	return folder + "/" + t.Title
}

// AssetReference records one localized asset. It lives only for the
// duration of a single message's localization; assets are never cached
// across messages even when URLs repeat.
type AssetReference struct {
	RemoteURL string
	LocalPath string
	FileName  string
}
