package approval

import (
	"approvalflow/account"
	"approvalflow/domain"
	"approvalflow/persistence"
	"approvalflow/session"

	"github.com/fundwit/go-commons/types"
)

var (
	DetailApprovalRequestFunc = DetailApprovalRequest
	QueryApprovalRequestsFunc = QueryApprovalRequests
	QueryPendingApprovalsFunc = QueryPendingApprovals
	QueryApprovalHistoryFunc  = QueryApprovalHistory
)

const defaultPageSize = 20

// DetailApprovalRequest assembles the display projection with all user
// references resolved to display names in a single directory lookup.
func DetailApprovalRequest(id types.ID, s *session.Session) (*domain.ApprovalRequestDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	request, err := loadRequest(db, id)
	if err != nil {
		return nil, err
	}

	names, err := resolveNames(request, s)
	if err != nil {
		return nil, err
	}

	detail := domain.ApprovalRequestDetail{
		ApprovalRequest: *request,
		SubmitterName:   names[request.SubmitterID],
	}
	for _, d := range request.Decisions {
		view := domain.LevelDecisionView{LevelDecision: d, ApproverName: names[d.ApproverID]}
		if d.DeciderID != 0 {
			view.DeciderName = names[d.DeciderID]
		}
		detail.Decisions = append(detail.Decisions, view)
	}
	for _, h := range request.History {
		detail.History = append(detail.History, domain.HistoryEntryView{HistoryEntry: h, ActorName: names[h.ActorID]})
	}
	return &detail, nil
}

func QueryApprovalRequests(query *domain.ApprovalRequestQuery, s *session.Session) (*[]domain.ApprovalRequest, uint64, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	q := db.Model(&domain.ApprovalRequest{})
	if query.EntityType != "" {
		q = q.Where("entity_type = ?", query.EntityType)
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}

	var total uint64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []domain.ApprovalRequest
	page, size := normalizePage(query.Page, query.Size)
	if err := q.Order("create_time DESC").Offset((page - 1) * size).Limit(size).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return &requests, total, nil
}

// QueryPendingApprovals lists the requests whose current level is waiting
// on the session identity.
func QueryPendingApprovals(query *domain.PendingApprovalQuery, s *session.Session) (*[]domain.ApprovalRequest, uint64, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	q := db.Model(&domain.ApprovalRequest{}).
		Where("status = ?", domain.ApprovalStatusPending).
		Where("current_approver_id = ?", s.Identity.ID)

	var total uint64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []domain.ApprovalRequest
	page, size := normalizePage(query.Page, query.Size)
	if err := q.Order("create_time ASC").Offset((page - 1) * size).Limit(size).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return &requests, total, nil
}

func QueryApprovalHistory(id types.ID, s *session.Session) (*[]domain.HistoryEntryView, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	request, err := loadRequest(db, id)
	if err != nil {
		return nil, err
	}

	names, err := resolveNames(request, s)
	if err != nil {
		return nil, err
	}

	views := make([]domain.HistoryEntryView, 0, len(request.History))
	for _, h := range request.History {
		views = append(views, domain.HistoryEntryView{HistoryEntry: h, ActorName: names[h.ActorID]})
	}
	return &views, nil
}

func resolveNames(request *domain.ApprovalRequest, s *session.Session) (map[types.ID]string, error) {
	ids := []types.ID{request.SubmitterID}
	for _, d := range request.Decisions {
		ids = append(ids, d.ApproverID)
		if d.DeciderID != 0 {
			ids = append(ids, d.DeciderID)
		}
	}
	for _, h := range request.History {
		ids = append(ids, h.ActorID)
	}
	return account.QueryAccountNamesFunc(ids, s)
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	return page, size
}
