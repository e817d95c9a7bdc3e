package domain

import (
	"github.com/fundwit/go-commons/types"
)

// ApprovalRequiredEvent is raised by a consuming domain when a newly
// submitted entity needs approval. Handling it must share the raiser's
// transaction so the submission and the request creation commit together.
type ApprovalRequiredEvent struct {
	EntityType  EntityType `json:"entityType"`
	EntityID    types.ID   `json:"entityId"`
	EntityDesc  string     `json:"entityDesc"`
	SubmitterID types.ID   `json:"submitterId"`
}

type ApprovalRequestCreation struct {
	EntityType EntityType `json:"entityType" binding:"required"`
	EntityID   types.ID   `json:"entityId" binding:"required"`
	EntityDesc string     `json:"entityDesc" binding:"required,lte=512"`
}

type ApprovalCommand struct {
	Comment string `json:"comment" binding:"omitempty,lte=512"`
}

type RejectionCommand struct {
	Reason  string `json:"reason" binding:"required,lte=512"`
	Comment string `json:"comment" binding:"omitempty,lte=512"`
}

type ApprovalRequestQuery struct {
	EntityType EntityType     `form:"entityType" json:"entityType"`
	Status     ApprovalStatus `form:"status" json:"status"`
	Page       int            `form:"page" json:"page"`
	Size       int            `form:"size" json:"size"`
}

type PendingApprovalQuery struct {
	Page int `form:"page" json:"page"`
	Size int `form:"size" json:"size"`
}

type LevelDecisionView struct {
	LevelDecision

	ApproverName string `json:"approverName"`
	DeciderName  string `json:"deciderName,omitempty"`
}

type HistoryEntryView struct {
	HistoryEntry

	ActorName string `json:"actorName"`
}

type ApprovalRequestDetail struct {
	ApprovalRequest

	SubmitterName string              `json:"submitterName"`
	Decisions     []LevelDecisionView `json:"decisions"`
	History       []HistoryEntryView  `json:"history"`
}

type ChainLevelView struct {
	ChainLevel

	ApproverName string `json:"approverName"`
}

type ChainTemplateView struct {
	ChainTemplate

	Levels []ChainLevelView `json:"levels"`
}
