package indices

import (
	"context"
	"fmt"
	"sync"

	"approvalflow/account"
	"approvalflow/authority"
	"approvalflow/bizerror"
	"approvalflow/domain"
	"approvalflow/domain/approval"
	"approvalflow/event"
	"approvalflow/session"

	"github.com/sirupsen/logrus"
)

var (
	ApprovalIndexEventHandlerName = "approvalIndexer"
	indexRobot                    = &session.Session{
		Token:    "index-robot",
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    authority.Permissions{account.SystemViewPermission.ID},
		Context:  context.Background(),
	}

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

var (
	SyncBatchSize = 500
)

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	page := 1
	for {
		requests, err := approval.LoadApprovalRequestsFunc(page, SyncBatchSize, indexRobot)
		if err != nil {
			logrus.Warnf("indices fully sync: error on retrieve approval requests(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			page++
			continue
		}

		if len(requests) == 0 {
			logrus.Infof("indices fully sync: there are no more approval requests to index")
			return nil // loop exit
		}

		details := make([]domain.ApprovalRequestDetail, 0, len(requests))
		for _, r := range requests {
			detail, err := approval.DetailApprovalRequestFunc(r.ID, indexRobot)
			if err != nil {
				logrus.Warnf("indices fully sync: error on detail approval request %d: %v", r.ID, err)
				continue
			}
			details = append(details, *detail)
		}

		if err := IndexApprovals(details, indexRobot); err != nil {
			logrus.Warnf("indices fully sync: error on index approval requests(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}

// IndexApprovalEventHandle keeps the search projection in step with the
// aggregate by reindexing the document after every recorded action.
func IndexApprovalEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypeApprovalRequest {
		return nil
	}

	detail, err := approval.DetailApprovalRequestFunc(e.Event.SourceId, indexRobot)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail approval request when indexing %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: ApprovalIndexEventHandlerName,
		}
	}
	if err := IndexApprovals([]domain.ApprovalRequestDetail{*detail}, indexRobot); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index approval request %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: ApprovalIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: ApprovalIndexEventHandlerName}
}
