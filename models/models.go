package models

import (
	"fmt"
	"time"
)

type Operation string

const (
	OperationUpdated Operation = "updated"
	OperationCreated Operation = "created"
	OperationDeleted Operation = "deleted"
)

// Event is a single classified change produced by one monitoring cycle.
type Event struct {
	Operation Operation
	Path      string
}

func Updated(path string) Event { return Event{Operation: OperationUpdated, Path: path} }
func Created(path string) Event { return Event{Operation: OperationCreated, Path: path} }
func Deleted(path string) Event { return Event{Operation: OperationDeleted, Path: path} }

// Message renders the event the way it is written to the log and the console.
func (e Event) Message() string {
	switch e.Operation {
	case OperationUpdated:
		return fmt.Sprintf("File %s was updated!", e.Path)
	case OperationCreated:
		return fmt.Sprintf("New file %s was created!", e.Path)
	case OperationDeleted:
		return fmt.Sprintf("File %s was deleted!", e.Path)
	default:
		return fmt.Sprintf("File %s: %s", e.Path, e.Operation)
	}
}

func (e Event) String() string {
	return e.Message()
}

// FileEvent is a journaled event row.
type FileEvent struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	Operation Operation `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
}
