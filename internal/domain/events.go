package domain

import (
	"encoding/json"
	"time"
)

type Entity string

const (
	EntityOrder       Entity = "orders"
	EntityMenuItem    Entity = "menu_items"
	EntityDriver      Entity = "drivers"
	EntityReservation Entity = "reservations"
	EntitySettings    Entity = "settings"
	EntitySiteContent Entity = "site_content"
)

type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// ChangeEvent is the message carried on the change stream. Record holds the
// full entity after the change (absent for deletes).
type ChangeEvent struct {
	Entity    Entity          `json:"entity"`
	Op        ChangeOp        `json:"op"`
	ID        string          `json:"id"`
	Record    json.RawMessage `json:"record,omitempty"`
	Source    string          `json:"source,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewChangeEvent(entity Entity, op ChangeOp, id string, record any) (ChangeEvent, error) {
	ev := ChangeEvent{Entity: entity, Op: op, ID: id, Timestamp: time.Now().UTC()}
	if record != nil {
		raw, err := json.Marshal(record)
		if err != nil {
			return ev, err
		}
		ev.Record = raw
	}
	return ev, nil
}
