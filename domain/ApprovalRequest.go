package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

type HistoryAction string

const (
	HistoryActionSubmitted HistoryAction = "SUBMITTED"
	HistoryActionApproved  HistoryAction = "APPROVED"
	HistoryActionRejected  HistoryAction = "REJECTED"
)

// ApprovalRequest is the state machine instance created for one submission
// of one business entity. Decisions and history entries are owned values
// persisted inside the record, they are only ever mutated through the
// aggregate operations in domain/approval.
type ApprovalRequest struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	EntityType EntityType `json:"entityType"`
	EntityID   types.ID   `json:"entityId"`
	EntityDesc string     `json:"entityDesc"`

	Status      ApprovalStatus `json:"status"`
	SubmitterID types.ID       `json:"submitterId"`

	// denormalized from the first pending decision, kept in step by the
	// aggregate so the pending-for-approver listing stays a plain query
	CurrentLevelOrder int      `json:"currentLevelOrder"`
	CurrentApproverID types.ID `json:"currentApproverId"`

	Decisions LevelDecisions `json:"decisions" sql:"type:TEXT"`
	History   HistoryEntries `json:"history" sql:"type:TEXT"`

	Version    int             `json:"-"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *ApprovalRequest) TableName() string {
	return "approval_requests"
}

// LevelDecision carries the frozen approver snapshot for one level plus the
// decision recorded against it. Kept sorted ascending by LevelOrder.
type LevelDecision struct {
	LevelOrder int      `json:"levelOrder"`
	LevelName  string   `json:"levelName"`
	ApproverID types.ID `json:"approverId"`
	Required   bool     `json:"required"`

	State        ApprovalStatus  `json:"state"`
	DeciderID    types.ID        `json:"deciderId,omitempty"`
	DecisionTime types.Timestamp `json:"decisionTime"` // null until decided
	Comment      string          `json:"comment,omitempty"`
	Reason       string          `json:"reason,omitempty"`
}

type HistoryEntry struct {
	Action     HistoryAction   `json:"action"`
	LevelOrder int             `json:"levelOrder,omitempty"` // zero for SUBMITTED
	ActorID    types.ID        `json:"actorId"`
	Comment    string          `json:"comment,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Timestamp  types.Timestamp `json:"timestamp"`
}

type LevelDecisions []LevelDecision

type HistoryEntries []HistoryEntry

// IsCompleted reports whether the aggregate reached a terminal state.
func (r *ApprovalRequest) IsCompleted() bool {
	return r.Status == ApprovalStatusApproved || r.Status == ApprovalStatusRejected
}

// CurrentDecision returns the first decision, in ascending level order,
// which is still pending.
func (r *ApprovalRequest) CurrentDecision() (*LevelDecision, bool) {
	for i := range r.Decisions {
		if r.Decisions[i].State == ApprovalStatusPending {
			return &r.Decisions[i], true
		}
	}
	return nil, false
}

func (t LevelDecisions) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *LevelDecisions) Scan(v interface{}) error {
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

func (t HistoryEntries) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *HistoryEntries) Scan(v interface{}) error {
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
