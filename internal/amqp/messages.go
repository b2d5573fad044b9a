package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseCreatedMessage asks the worker to export a stored expense.
// It carries only the row ID; the worker fetches the full record from the
// database so the export always reflects what was actually saved.
type ExpenseCreatedMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseCreatedMessage creates a created message for the given expense ID
func NewExpenseCreatedMessage(id int64) *ExpenseCreatedMessage {
	return &ExpenseCreatedMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseCreatedMessageFromJSON creates a message from JSON bytes
func ExpenseCreatedMessageFromJSON(data []byte) (*ExpenseCreatedMessage, error) {
	var msg ExpenseCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ExpenseDeletedMessage tells the worker to remove an expense from the
// exported sheet. The row is already gone from the database, so the ID is
// all the worker gets and all it needs: exported rows carry the ID.
type ExpenseDeletedMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseDeletedMessage creates a deleted message for the given expense ID
func NewExpenseDeletedMessage(id int64) *ExpenseDeletedMessage {
	return &ExpenseDeletedMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseDeletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseDeletedMessageFromJSON creates a message from JSON bytes
func ExpenseDeletedMessageFromJSON(data []byte) (*ExpenseDeletedMessage, error) {
	var msg ExpenseDeletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
