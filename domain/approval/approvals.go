package approval

import (
	"approvalflow/account"
	"approvalflow/bizerror"
	"approvalflow/common"
	"approvalflow/domain"
	"approvalflow/domain/chain"
	"approvalflow/event"
	"approvalflow/persistence"
	"approvalflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	requestIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateApprovalRequestFunc = CreateApprovalRequest
	ApproveRequestFunc        = ApproveRequest
	RejectRequestFunc         = RejectRequest
	LoadApprovalRequestsFunc  = LoadApprovalRequests
)

// CreateApprovalRequest snapshots the active template for the entity type
// into a new aggregate, in its own transaction. Domains which must commit
// the submission and the request atomically use HandleApprovalRequired with
// their own transaction instead.
func CreateApprovalRequest(c *domain.ApprovalRequestCreation, s *session.Session) (*domain.ApprovalRequest, error) {
	var created *domain.ApprovalRequest
	var ev *event.EventRecord

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, ev, err = createRequestInTx(c.EntityType, c.EntityID, c.EntityDesc, s.Identity.ID, &s.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return created, nil
}

// HandleApprovalRequired reacts to a submission signal inside the raising
// domain's transaction: if request creation fails the whole submission
// rolls back. The returned event record must be handed to
// event.InvokeHandlersFunc by the caller after its transaction commits.
func HandleApprovalRequired(e *domain.ApprovalRequiredEvent, actor *session.Identity, tx *gorm.DB) (*domain.ApprovalRequest, *event.EventRecord, error) {
	return createRequestInTx(e.EntityType, e.EntityID, e.EntityDesc, e.SubmitterID, actor, tx)
}

func createRequestInTx(entityType domain.EntityType, entityID types.ID, entityDesc string,
	submitterID types.ID, actor *session.Identity, tx *gorm.DB) (*domain.ApprovalRequest, *event.EventRecord, error) {

	if !entityType.IsKnown() {
		return nil, nil, bizerror.ErrUnknownEntityType
	}

	template, err := chain.ActiveTemplateOf(entityType, tx)
	if err != nil {
		return nil, nil, err
	}

	referenced := []types.ID{submitterID}
	for _, l := range template.Levels {
		referenced = append(referenced, l.ApproverID)
	}
	if err := account.UsersExistFunc(referenced, tx); err != nil {
		return nil, nil, err
	}

	now := types.CurrentTimestamp()
	request, err := NewApprovalRequest(common.NextId(requestIdWorker), entityType, entityID, entityDesc,
		submitterID, template, now)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Create(request).Error; err != nil {
		return nil, nil, err
	}

	ev, err := event.CreateEvent(event.SourceTypeApprovalRequest, request.ID, entityDesc,
		event.EventCategorySubmitted,
		event.EventDetail{EntityType: string(entityType), EntityID: entityID}, actor, tx)
	if err != nil {
		return nil, nil, err
	}

	return request, ev, nil
}

// ApproveRequest records the session identity's approval of the current
// level. Only a terminal transition publishes the completion event.
func ApproveRequest(id types.ID, c *domain.ApprovalCommand, s *session.Session) (*domain.ApprovalRequest, error) {
	var updated *domain.ApprovalRequest
	var ev *event.EventRecord

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		request, err := loadRequest(tx, id)
		if err != nil {
			return err
		}

		adminOverride := s.Perms.HasRole(account.SystemAdminPermission.ID)
		if err := Approve(request, s.Identity.ID, c.Comment, adminOverride, types.CurrentTimestamp()); err != nil {
			return err
		}

		if err := persistDecision(tx, request); err != nil {
			return err
		}

		category := event.EventCategoryLevelApproved
		detail := event.EventDetail{EntityType: string(request.EntityType), EntityID: request.EntityID,
			ApproverID: s.Identity.ID}
		if request.IsCompleted() {
			category = event.EventCategoryCompletedApproved
		} else {
			detail.LevelOrder = lastDecidedLevel(request)
		}
		ev, err = event.CreateEvent(event.SourceTypeApprovalRequest, request.ID, request.EntityDesc,
			category, detail, &s.Identity, tx)
		if err != nil {
			return err
		}

		updated = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return updated, nil
}

// RejectRequest records a rejection; rejection is always terminal so the
// completion event is published unconditionally.
func RejectRequest(id types.ID, c *domain.RejectionCommand, s *session.Session) (*domain.ApprovalRequest, error) {
	var updated *domain.ApprovalRequest
	var ev *event.EventRecord

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		request, err := loadRequest(tx, id)
		if err != nil {
			return err
		}

		adminOverride := s.Perms.HasRole(account.SystemAdminPermission.ID)
		if err := Reject(request, s.Identity.ID, c.Reason, c.Comment, adminOverride, types.CurrentTimestamp()); err != nil {
			return err
		}

		if err := persistDecision(tx, request); err != nil {
			return err
		}

		ev, err = event.CreateEvent(event.SourceTypeApprovalRequest, request.ID, request.EntityDesc,
			event.EventCategoryCompletedRejected,
			event.EventDetail{EntityType: string(request.EntityType), EntityID: request.EntityID,
				Reason: c.Reason}, &s.Identity, tx)
		if err != nil {
			return err
		}

		updated = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return updated, nil
}

func loadRequest(tx *gorm.DB, id types.ID) (*domain.ApprovalRequest, error) {
	request := domain.ApprovalRequest{}
	if err := tx.Where(&domain.ApprovalRequest{ID: id}).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// persistDecision writes the mutated aggregate back with an optimistic
// version check. A losing concurrent writer affects zero rows and fails
// with the conflict error, applying nothing.
func persistDecision(tx *gorm.DB, request *domain.ApprovalRequest) error {
	loadedVersion := request.Version
	request.Version = loadedVersion + 1

	db := tx.Model(&domain.ApprovalRequest{}).
		Where("id = ? AND version = ?", request.ID, loadedVersion).
		Update(map[string]interface{}{
			"status":              request.Status,
			"current_level_order": request.CurrentLevelOrder,
			"current_approver_id": request.CurrentApproverID,
			"decisions":           request.Decisions,
			"history":             request.History,
			"version":             request.Version,
		})
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected != 1 {
		return bizerror.ErrConcurrentDecision
	}
	return nil
}

func lastDecidedLevel(request *domain.ApprovalRequest) int {
	last := 0
	for _, d := range request.Decisions {
		if d.State != domain.ApprovalStatusPending {
			last = d.LevelOrder
		}
	}
	return last
}

// LoadApprovalRequests pages through all requests for index rebuilds.
func LoadApprovalRequests(page, size int, s *session.Session) ([]domain.ApprovalRequest, error) {
	requests := []domain.ApprovalRequest{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	if err := db.Order("id ASC").Offset(offset).Limit(size).Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
