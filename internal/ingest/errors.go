package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError indicates a missing or rejected credential. It is fatal
// to the run, surfaced to the user immediately, and never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Reason
}

// IsConfigError reports whether err (or any error in its chain) is a
// ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// FetchError indicates the remote message or asset endpoint was
// unreachable or returned a non-200 status. The affected asset or run
// is abandoned; the next timer tick retries.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err (or any error in its chain) is a
// FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// NameExhaustedError signals that collision probing ran out of
// numbered variants. The caller substitutes a randomized fallback name
// so the content is never dropped.
type NameExhaustedError struct {
	Title string
}

func (e *NameExhaustedError) Error() string {
	return fmt.Sprintf("filename collision probing exhausted for %q", e.Title)
}

// IsNameExhausted reports whether err (or any error in its chain) is a
// NameExhaustedError.
func IsNameExhausted(err error) bool {
	var ne *NameExhaustedError
	return errors.As(err, &ne)
}

// StorageError indicates a document create or modify failure. The
// message is considered failed; the batch continues.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PartialFailure summarizes a batch in which some messages failed to
// file while the rest were processed normally.
type PartialFailure struct {
	FailedIDs []int64
}

func (e *PartialFailure) Error() string {
	ids := make([]string, len(e.FailedIDs))
	for i, id := range e.FailedIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%d message(s) failed to file: %s", len(e.FailedIDs), strings.Join(ids, ", "))
}
