// Package models - Job history records.
package models

import (
	"errors"
	"time"
)

// Operation identifies a heavy document-processing route.
type Operation string

const (
	OperationConvert  Operation = "convert"
	OperationCompress Operation = "compress"
	OperationExtract  Operation = "extract"
	OperationUnlock   Operation = "unlock"
	OperationMerge    Operation = "merge"
)

// Operations lists every supported heavy operation.
func Operations() []Operation {
	return []Operation{
		OperationConvert,
		OperationCompress,
		OperationExtract,
		OperationUnlock,
		OperationMerge,
	}
}

// Valid reports whether the operation is one of the supported routes.
func (o Operation) Valid() bool {
	switch o {
	case OperationConvert, OperationCompress, OperationExtract, OperationUnlock, OperationMerge:
		return true
	}
	return false
}

// JobRecord is the persisted outcome of one completed heavy job. Records are
// append-only; the transient staging state of a job is never persisted.
type JobRecord struct {
	ID         string    `json:"id"`
	Operation  Operation `json:"operation"`
	Outcome    string    `json:"outcome"`
	ClientKey  string    `json:"client_key"`
	Filename   string    `json:"filename,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks that a record is complete enough to persist.
func (jr *JobRecord) Validate() error {
	if jr.ID == "" {
		return errors.New("job record ID cannot be empty")
	}
	if !jr.Operation.Valid() {
		return errors.New("job record operation is invalid")
	}
	if jr.Outcome == "" {
		return errors.New("job record outcome cannot be empty")
	}
	if jr.CreatedAt.IsZero() {
		return errors.New("job record creation time cannot be zero")
	}
	return nil
}
