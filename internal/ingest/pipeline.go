package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hyan/noteflow/internal/model"
	"github.com/hyan/noteflow/internal/source"
)

// Ledger records ingestion outcomes. Recording failures are logged,
// never fatal to a filing.
type Ledger interface {
	RecordRun(ctx context.Context, run model.IngestRun) error
	RecordFiling(ctx context.Context, filing model.Filing) error
}

// NopLedger discards every record. Used in tests.
type NopLedger struct{}

func (NopLedger) RecordRun(context.Context, model.IngestRun) error { return nil }
func (NopLedger) RecordFiling(context.Context, model.Filing) error { return nil }

// Pipeline orchestrates one ingestion batch: fetch pending messages,
// classify and localize content, resolve a filename, write the note,
// and record the outcome. Messages are processed strictly
// sequentially, preserving delivery order, because append-mode
// concatenation order is user-observable.
type Pipeline struct {
	apiKey    string
	cfg       model.NamingConfig
	src       source.MessageSource
	localizer *Localizer
	resolver  *Resolver
	writer    *Writer
	ledger    Ledger
}

// NewPipeline assembles a pipeline. The apiKey is the account
// credential for the message source; an empty key fails the run
// before any fetch.
func NewPipeline(apiKey string, cfg model.NamingConfig, src source.MessageSource, localizer *Localizer, resolver *Resolver, writer *Writer, ledger Ledger) *Pipeline {
	return &Pipeline{
		apiKey:    apiKey,
		cfg:       cfg,
		src:       src,
		localizer: localizer,
		resolver:  resolver,
		writer:    writer,
		ledger:    ledger,
	}
}

// Run executes one batch. verifyOnly asks the source to treat the
// fetch as a credential check; any message it still returns is filed
// identically. A failure filing one message never aborts the batch;
// the run returns a PartialFailure naming the failed messages.
func (p *Pipeline) Run(ctx context.Context, verifyOnly bool) error {
	if strings.TrimSpace(p.apiKey) == "" {
		return &ConfigError{Reason: "API key is empty"}
	}

	msgs, err := p.src.Fetch(ctx, verifyOnly)
	if err != nil {
		if source.IsAuthError(err) {
			return &ConfigError{Reason: err.Error()}
		}
		return &FetchError{Err: fmt.Errorf("fetching messages from %s: %w", p.src.Name(), err)}
	}

	run := model.IngestRun{
		ID:        uuid.NewString(),
		Source:    p.src.Name(),
		StartedAt: time.Now(),
		Fetched:   len(msgs),
	}

	var failed []int64
	for _, msg := range msgs {
		status, filing := p.file(ctx, run.ID, msg)
		switch status {
		case model.FilingFiled:
			run.Filed++
		case model.FilingSkipped:
			run.Skipped++
		case model.FilingFailed:
			run.Failed++
			failed = append(failed, msg.ID)
		}
		if err := p.ledger.RecordFiling(ctx, filing); err != nil {
			log.Printf("pipeline: recording filing for message %d: %v", msg.ID, err)
		}
	}

	run.FinishedAt = time.Now()
	if err := p.ledger.RecordRun(ctx, run); err != nil {
		log.Printf("pipeline: recording run %s: %v", run.ID, err)
	}

	if len(failed) > 0 {
		return &PartialFailure{FailedIDs: failed}
	}
	return nil
}

// file processes a single message independently of the rest of the
// batch.
func (p *Pipeline) file(ctx context.Context, runID string, msg model.Message) (model.FilingStatus, model.Filing) {
	filing := model.Filing{
		ID:        uuid.NewString(),
		RunID:     runID,
		MessageID: msg.ID,
		CreatedAt: time.Now(),
	}

	if msg.Content == "" {
		log.Printf("pipeline: message %d has empty content, skipping", msg.ID)
		filing.Status = model.FilingSkipped
		filing.Error = "empty content"
		return model.FilingSkipped, filing
	}

	content := p.localizer.Localize(ctx, msg.Content, msg.Attachments)
	if strings.TrimSpace(content) == "" {
		// An image-only message whose download failed has no
		// salvageable text.
		log.Printf("pipeline: message %d localized to empty content, skipping", msg.ID)
		filing.Status = model.FilingSkipped
		filing.Error = "content empty after localization"
		return model.FilingSkipped, filing
	}

	title, err := p.resolver.Resolve(p.cfg, content, msg.CreatedAt, msg.Title)
	if err != nil {
		if !IsNameExhausted(err) {
			filing.Status = model.FilingFailed
			filing.Error = err.Error()
			return model.FilingFailed, filing
		}
		// Name probing exhausted: fall back to a randomized name so
		// the content is never silently dropped.
		title = uuid.NewString() + ".md"
		log.Printf("pipeline: message %d: %v; using fallback name %s", msg.ID, err, title)
	}

	target := model.StorageTarget{
		Folder:    p.cfg.SaveFolder,
		Title:     title,
		CreatedAt: msg.CreatedAt,
	}

	if err := p.writer.Write(ctx, target, content, p.cfg); err != nil {
		log.Printf("pipeline: message %d: writing %s: %v", msg.ID, target.Path(), err)
		filing.Status = model.FilingFailed
		filing.Title = title
		filing.Path = target.Path()
		filing.Error = err.Error()
		return model.FilingFailed, filing
	}

	filing.Status = model.FilingFiled
	filing.Title = title
	filing.Path = target.Path()
	return model.FilingFiled, filing
}
