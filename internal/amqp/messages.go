package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gstbooks/internal/core"
	"gstbooks/internal/report"
)

// ReportRequestMessage asks a worker to build one report and store it as a
// snapshot. Dates are YYYY-MM-DD; empty means unbounded.
type ReportRequestMessage struct {
	ID          string      `json:"id"`
	Kind        report.Kind `json:"kind"`
	From        string      `json:"from,omitempty"`
	To          string      `json:"to,omitempty"`
	RequestedAt time.Time   `json:"requestedAt"`
}

// NewReportRequestMessage creates a request with a fresh ID.
func NewReportRequestMessage(kind report.Kind, period report.Period) *ReportRequestMessage {
	msg := &ReportRequestMessage{
		ID:          uuid.NewString(),
		Kind:        kind,
		RequestedAt: time.Now().UTC(),
	}
	if !period.From.IsEmpty() {
		msg.From = period.From.String()
	}
	if !period.To.IsEmpty() {
		msg.To = period.To.String()
	}
	return msg
}

// Period parses the message bounds.
func (m *ReportRequestMessage) Period() (report.Period, error) {
	var p report.Period
	var err error
	if m.From != "" {
		if p.From, err = core.ParseDate(m.From); err != nil {
			return report.Period{}, fmt.Errorf("from: %w", err)
		}
	}
	if m.To != "" {
		if p.To, err = core.ParseDate(m.To); err != nil {
			return report.Period{}, fmt.Errorf("to: %w", err)
		}
	}
	if err := p.Filter().Validate(); err != nil {
		return report.Period{}, err
	}
	return p, nil
}

// Validate checks the kind and the period and normalizes the kind.
func (m *ReportRequestMessage) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("missing message id")
	}
	kind, err := report.ParseKind(string(m.Kind))
	if err != nil {
		return err
	}
	m.Kind = kind
	_, err = m.Period()
	return err
}

// ToJSON converts the message to JSON bytes
func (m *ReportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportRequestMessageFromJSON decodes and validates a message.
func ReportRequestMessageFromJSON(data []byte) (*ReportRequestMessage, error) {
	var msg ReportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report request: %w", err)
	}
	return &msg, nil
}
