package event

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

const (
	SourceTypeApprovalRequest = "APPROVAL_REQUEST"

	EventCategorySubmitted         EventCategory = "SUBMITTED"
	EventCategoryLevelApproved     EventCategory = "LEVEL_APPROVED"
	EventCategoryCompletedApproved EventCategory = "COMPLETED_APPROVED"
	EventCategoryCompletedRejected EventCategory = "COMPLETED_REJECTED"
)

type EventCategory string

type Event struct {
	SourceId   types.ID `json:"sourceId"`
	SourceType string   `json:"sourceType"`
	SourceDesc string   `json:"sourceDesc"`

	CreatorId   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`

	EventCategory EventCategory `json:"eventCategory"`
	Detail        EventDetail   `json:"detail" sql:"type:TEXT"`
}

type EventRecord struct {
	Event

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
	Synced    bool            `json:"synced"`
}

func (r *EventRecord) TableName() string {
	return "events"
}

// EventDetail carries the completion payload consuming domains need to
// transition their own entity without querying the engine back.
type EventDetail struct {
	EntityType string   `json:"entityType"`
	EntityID   types.ID `json:"entityId"`

	LevelOrder int      `json:"levelOrder,omitempty"`
	ApproverID types.ID `json:"approverId,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

func (t EventDetail) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *EventDetail) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), c)
}
