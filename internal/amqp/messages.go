package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"clinicreport/internal/events"
)

// ExpenseDeletedMessage reports the outcome of one delete attempt. OK is
// false when the source refused the delete; Error then carries its message.
type ExpenseDeletedMessage struct {
	MessageID string    `json:"messageId"`
	ID        string    `json:"id"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseDeletedMessage(ev events.DeleteCompleted) *ExpenseDeletedMessage {
	msg := &ExpenseDeletedMessage{
		MessageID: uuid.NewString(),
		ID:        ev.ID,
		OK:        ev.OK(),
		Timestamp: ev.At,
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	return msg
}

func (m *ExpenseDeletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseDeletedMessageFromJSON decodes and validates a message body.
func ExpenseDeletedMessageFromJSON(data []byte) (*ExpenseDeletedMessage, error) {
	var msg ExpenseDeletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("message without expense id")
	}
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	return &msg, nil
}
