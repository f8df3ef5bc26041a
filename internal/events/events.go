package events

import (
	"github.com/google/uuid"

	"example.com/freightline/services/settlement/internal/models"
)

// Operation is the mutation that produced an event
type Operation string

const (
	// OpCreated is emitted after a record is inserted
	OpCreated Operation = "created"
	// OpDeleted is emitted after a record is removed
	OpDeleted Operation = "deleted"
)

// Event describes a committed child-collection mutation. ParentID is the
// settlement for line-item kinds and the carrier for the settlement kind.
// Events are consumed synchronously, inside the same transaction as the
// mutation that produced them.
type Event struct {
	Kind     models.Kind
	ParentID uuid.UUID
	Op       Operation
}

// Created builds the event for an inserted record
func Created(kind models.Kind, parentID uuid.UUID) Event {
	return Event{Kind: kind, ParentID: parentID, Op: OpCreated}
}

// Deleted builds the event for a removed record
func Deleted(kind models.Kind, parentID uuid.UUID) Event {
	return Event{Kind: kind, ParentID: parentID, Op: OpDeleted}
}
