package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyan/noteflow/internal/model"
)

// AuthError indicates that authentication has failed for a source: a
// rejected API key or bad mailbox credentials. It is surfaced to the
// user as a configuration problem and never retried within a run.
type AuthError struct {
	Source  string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Source, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an
// AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// MessageSource defines the contract every message origin implements.
// Fetched messages are delivered in filing order; the pipeline
// preserves that order because append-mode concatenation is
// user-observable.
type MessageSource interface {
	// Name returns the source identifier used in logs and the
	// ingestion ledger.
	Name() string

	// Validate verifies credentials and connectivity, returning a
	// human-readable status message on success.
	Validate(ctx context.Context) (string, error)

	// Fetch retrieves the pending messages. verifyOnly asks the
	// remote side to treat the call as a key check; any message it
	// still returns is filed identically.
	Fetch(ctx context.Context, verifyOnly bool) ([]model.Message, error)
}
