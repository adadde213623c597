package amqp

import (
	"encoding/json"
	"time"
)

// BillSyncMessage asks the archive worker to push one bill to the archive
// spreadsheet. It carries only the id; the worker reads the full bill from
// the database so the queue never holds stale field values.
type BillSyncMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBillSyncMessage(id int64) *BillSyncMessage {
	return &BillSyncMessage{ID: id, Timestamp: time.Now()}
}

func (m *BillSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BillSyncMessageFromJSON(data []byte) (*BillSyncMessage, error) {
	var m BillSyncMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
