package models

import (
	"time"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DocumentFormat is the set of formats the service can ingest.
type DocumentFormat string

const (
	FormatPDF      DocumentFormat = "pdf"
	FormatMarkdown DocumentFormat = "markdown"
)

// ProcessingStatus is the document lifecycle state.
//
// pending → processing → processed (terminal success) or failed
// (terminal failure; re-driving the pipeline re-enters processing).
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusProcessed  ProcessingStatus = "processed"
	StatusFailed     ProcessingStatus = "failed"
)

// Document is a user-uploaded document record. Identity is the
// (owner, filename) pair; the filename is the externally visible
// document id, scoped to its owner. Re-uploading the same filename
// replaces the record.
//
// ProcessingError is set only when Status is failed; ProcessedAt is
// set only when Status is processed.
type Document struct {
	OwnerID         string           `db:"owner_id" json:"-"`
	Filename        string           `db:"filename" json:"document_id"`
	Format          DocumentFormat   `db:"format" json:"format"`
	SizeBytes       int64            `db:"size_bytes" json:"size_bytes"`
	UploadedAt      time.Time        `db:"uploaded_at" json:"uploaded_at"`
	Status          ProcessingStatus `db:"processing_status" json:"processing_status"`
	ProcessingError *string          `db:"processing_error" json:"processing_error,omitempty"`
	ProcessedAt     *time.Time       `db:"processed_at" json:"processed_at,omitempty"`
}
