package changefeed

import (
	"encoding/json"
	"time"

	"github.com/Vijay-1289/Expense-Tracker/internal/core"
)

const (
	TableExpenses = "expenses"
	TableBudgets  = "budgets"
)

type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event describes one row change on an owner's records. Subscribers use
// it purely as a refresh trigger; the payload carries no row data.
type Event struct {
	Table     string        `json:"table"`
	Op        Op            `json:"op"`
	Owner     core.Identity `json:"owner"`
	RecordID  string        `json:"record_id,omitempty"`
	Origin    string        `json:"origin,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(table string, op Op, owner core.Identity, recordID string) Event {
	return Event{
		Table:     table,
		Op:        op,
		Owner:     owner,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes for the relay.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event received from the relay.
func EventFromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}
