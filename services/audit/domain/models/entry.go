package models

import (
	"time"

	"github.com/google/uuid"
)

// Operation classifies the kind of mutation an audit entry records.
type Operation string

const (
	OpInsert Operation = "INSERT"
	OpUpdate Operation = "UPDATE"
	OpAdjust Operation = "ADJUST"
	OpDelete Operation = "DELETE"
)

// Entry is one immutable audit record. Entries are append-only: nothing in
// the system updates or deletes them after insertion.
type Entry struct {
	ID        int64
	Actor     string
	Operation Operation
	TableName string
	RecordID  *uuid.UUID // nil for batch operations spanning multiple records
	Detail    string
	CreatedAt time.Time
}

// NewEntry builds an Entry stamped with the current UTC time.
func NewEntry(actor string, op Operation, table string, recordID *uuid.UUID, detail string) Entry {
	return Entry{
		Actor:     actor,
		Operation: op,
		TableName: table,
		RecordID:  recordID,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
}
