package store

import "time"

// Upload statuses.
const (
	UploadSending = "sending"
	UploadSent    = "sent"
	UploadFailed  = "failed"
)

// UploadEntry is one journaled file upload.
type UploadEntry struct {
	ID           int64
	UploadID     string
	Email        string
	FileName     string
	ContentType  string
	SizeBytes    int64
	Status       string // sending, sent, failed
	Notice       string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
