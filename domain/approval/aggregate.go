package approval

import (
	"sort"
	"strings"

	"approvalflow/bizerror"
	"approvalflow/domain"

	"github.com/fundwit/go-commons/types"
)

// The aggregate operations below are the only place decisions and history
// entries are mutated. They are pure: external references (approver
// existence, persistence) are the command service's concern.
//
// Decisions are resolved strictly in ascending level order. Once the status
// leaves PENDING the aggregate is terminal and every further operation
// fails. Rejection at any level short-circuits the remaining levels.

// NewApprovalRequest snapshots the template levels into a fresh aggregate.
// Later template edits never affect the created request.
func NewApprovalRequest(id types.ID, entityType domain.EntityType, entityID types.ID, entityDesc string,
	submitter types.ID, template *domain.ChainTemplateDetail, now types.Timestamp) (*domain.ApprovalRequest, error) {

	if template == nil || len(template.Levels) == 0 {
		return nil, bizerror.ErrEmptyChain
	}

	levels := make([]domain.ChainLevel, len(template.Levels))
	copy(levels, template.Levels)
	sort.Slice(levels, func(i, j int) bool { return levels[i].LevelOrder < levels[j].LevelOrder })

	decisions := make(domain.LevelDecisions, 0, len(levels))
	for _, l := range levels {
		decisions = append(decisions, domain.LevelDecision{
			LevelOrder: l.LevelOrder,
			LevelName:  l.LevelName,
			ApproverID: l.ApproverID,
			Required:   l.Required,
			State:      domain.ApprovalStatusPending,
		})
	}

	return &domain.ApprovalRequest{
		ID:         id,
		EntityType: entityType,
		EntityID:   entityID,
		EntityDesc: entityDesc,

		Status:      domain.ApprovalStatusPending,
		SubmitterID: submitter,

		CurrentLevelOrder: decisions[0].LevelOrder,
		CurrentApproverID: decisions[0].ApproverID,

		Decisions: decisions,
		History: domain.HistoryEntries{
			{Action: domain.HistoryActionSubmitted, ActorID: submitter, Timestamp: now},
		},

		Version:    1,
		CreateTime: now,
	}, nil
}

// Approve records an approval against the current level. When the last
// level is decided the aggregate transitions to APPROVED and becomes
// terminal, otherwise it stays PENDING awaiting the next level.
func Approve(r *domain.ApprovalRequest, decider types.ID, comment string, adminOverride bool, now types.Timestamp) error {
	current, err := authorizeDecision(r, decider, adminOverride)
	if err != nil {
		return err
	}

	current.State = domain.ApprovalStatusApproved
	current.DeciderID = decider
	current.DecisionTime = now
	current.Comment = comment

	r.History = append(r.History, domain.HistoryEntry{
		Action: domain.HistoryActionApproved, LevelOrder: current.LevelOrder,
		ActorID: decider, Comment: comment, Timestamp: now,
	})

	if next, ok := r.CurrentDecision(); ok {
		r.CurrentLevelOrder = next.LevelOrder
		r.CurrentApproverID = next.ApproverID
	} else {
		// rejection short-circuits, so no pending level left means every
		// decision is APPROVED
		r.Status = domain.ApprovalStatusApproved
		r.CurrentLevelOrder = 0
		r.CurrentApproverID = 0
	}
	return nil
}

// Reject records a rejection against the current level and terminates the
// whole chain immediately. Levels after the current one stay PENDING forever.
func Reject(r *domain.ApprovalRequest, decider types.ID, reason, comment string, adminOverride bool, now types.Timestamp) error {
	if strings.TrimSpace(reason) == "" {
		return bizerror.ErrReasonRequired
	}
	current, err := authorizeDecision(r, decider, adminOverride)
	if err != nil {
		return err
	}

	current.State = domain.ApprovalStatusRejected
	current.DeciderID = decider
	current.DecisionTime = now
	current.Comment = comment
	current.Reason = reason

	r.History = append(r.History, domain.HistoryEntry{
		Action: domain.HistoryActionRejected, LevelOrder: current.LevelOrder,
		ActorID: decider, Comment: comment, Reason: reason, Timestamp: now,
	})

	r.Status = domain.ApprovalStatusRejected
	r.CurrentLevelOrder = 0
	r.CurrentApproverID = 0
	return nil
}

func authorizeDecision(r *domain.ApprovalRequest, decider types.ID, adminOverride bool) (*domain.LevelDecision, error) {
	if r.IsCompleted() {
		return nil, bizerror.ErrAlreadyCompleted
	}
	current, ok := r.CurrentDecision()
	if !ok {
		return nil, bizerror.ErrAlreadyCompleted
	}
	if current.ApproverID != decider && !adminOverride {
		return nil, bizerror.ErrNotCurrentApprover
	}
	return current, nil
}
