package report

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is a stored, already generated report.
type Snapshot struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Period    Period          `json:"period"`
	Document  json.RawMessage `json:"document"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewSnapshot encodes doc for storage.
func NewSnapshot(id string, doc ReportDocument) (Snapshot, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode report document: %w", err)
	}
	return Snapshot{
		ID:        id,
		Kind:      doc.Kind,
		Period:    doc.Period,
		Document:  raw,
		CreatedAt: doc.GeneratedAt,
	}, nil
}

// Decode returns the stored document.
func (s Snapshot) Decode() (ReportDocument, error) {
	var doc ReportDocument
	if err := json.Unmarshal(s.Document, &doc); err != nil {
		return ReportDocument{}, fmt.Errorf("decode report snapshot %s: %w", s.ID, err)
	}
	return doc, nil
}
