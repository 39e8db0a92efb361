package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExportRequestMessage asks the worker to build the monthly workbook for one
// company. It carries only identifiers; the worker reads everything else
// from the database.
type ExportRequestMessage struct {
	JobID     uuid.UUID `json:"job_id"`
	Tenant    string    `json:"tenant"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExportRequestMessage(tenant string, year, month int) *ExportRequestMessage {
	return &ExportRequestMessage{
		JobID:     uuid.New(),
		Tenant:    tenant,
		Year:      year,
		Month:     month,
		Timestamp: time.Now(),
	}
}

func (m *ExportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExportRequestMessageFromJSON(data []byte) (*ExportRequestMessage, error) {
	var msg ExportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
