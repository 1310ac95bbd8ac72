package model

import "time"

// FilingStatus is the recorded outcome of one message.
type FilingStatus string

const (
	FilingFiled   FilingStatus = "filed"
	FilingSkipped FilingStatus = "skipped"
	FilingFailed  FilingStatus = "failed"
)

// IngestRun summarizes one pipeline invocation.
type IngestRun struct {
	ID         string    `db:"id"`
	Source     string    `db:"source"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
	Fetched    int       `db:"fetched"`
	Filed      int       `db:"filed"`
	Skipped    int       `db:"skipped"`
	Failed     int       `db:"failed"`
}

// Filing records the outcome of one message within a run.
type Filing struct {
	ID        string       `db:"id"`
	RunID     string       `db:"run_id"`
	MessageID int64        `db:"message_id"`
	Title     string       `db:"title"`
	Path      string       `db:"path"`
	Status    FilingStatus `db:"status"`
	Error     string       `db:"error"`
	CreatedAt time.Time    `db:"created_at"`
}
