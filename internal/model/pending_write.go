package model

import "time"

// Write actions accepted by the gateway and replayable from the queue.
const (
	WriteAdd    = "add"
	WriteUpdate = "update"
	WriteDelete = "delete"
)

// PendingWrite is a durably stored mutation awaiting replay against the
// remote store. Payload is the canonical extended-JSON encoding of the
// document (add) or the partial field set (update); it is empty for deletes.
// ID is assigned by the local queue and only meaningful there.
type PendingWrite struct {
	ID         int64     `json:"id"`
	Action     string    `json:"action"` // "add" | "update" | "delete"
	Collection string    `json:"collection"`
	DocID      string    `json:"docId"`
	Payload    []byte    `json:"payload,omitempty"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}
