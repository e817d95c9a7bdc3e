package approval_test

import (
	"testing"

	"approvalflow/domain"
	"approvalflow/domain/approval"
	"approvalflow/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func TestDetailApprovalRequest(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should report not found for an unknown request", func(t *testing.T) {
		defer approvalsTestTeardown(t, testDatabase)
		approvalsTestSetup(t, &testDatabase)

		detail, err := approval.DetailApprovalRequest(404, testinfra.BuildSecCtx(10))
		Expect(detail).To(BeNil())
		Expect(err).To(Equal(gorm.ErrRecordNotFound))
	})

	t.Run("should resolve every user reference to a display name", func(t *testing.T) {
		defer approvalsTestTeardown(t, testDatabase)
		approvalsTestSetup(t, &testDatabase)

		r, err := approval.CreateApprovalRequest(&domain.ApprovalRequestCreation{
			EntityType: domain.EntityTypeQuotation, EntityID: 200, EntityDesc: "quotation Q-1"},
			testinfra.BuildSecCtx(10))
		Expect(err).To(BeNil())
		_, err = approval.ApproveRequest(r.ID, &domain.ApprovalCommand{Comment: "ok"}, testinfra.BuildSecCtx(11))
		Expect(err).To(BeNil())

		detail, err := approval.DetailApprovalRequest(r.ID, testinfra.BuildSecCtx(10))
		Expect(err).To(BeNil())
		Expect(detail.SubmitterName).To(Equal("submitter"))

		Expect(len(detail.Decisions)).To(Equal(2))
		// nickname wins over login name
		Expect(detail.Decisions[0].ApproverName).To(Equal("Team Lead"))
		Expect(detail.Decisions[0].DeciderName).To(Equal("Team Lead"))
		Expect(detail.Decisions[1].ApproverName).To(Equal("manager"))
		Expect(detail.Decisions[1].DeciderName).To(BeZero())

		Expect(len(detail.History)).To(Equal(2))
		Expect(detail.History[0].ActorName).To(Equal("submitter"))
		Expect(detail.History[1].ActorName).To(Equal("Team Lead"))
	})
}

func TestQueryApprovalRequests(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should filter by entity type and status with paging", func(t *testing.T) {
		defer approvalsTestTeardown(t, testDatabase)
		approvalsTestSetup(t, &testDatabase)

		var ids []types.ID
		for i := 0; i < 3; i++ {
			r, err := approval.CreateApprovalRequest(&domain.ApprovalRequestCreation{
				EntityType: domain.EntityTypeQuotation, EntityID: types.ID(300 + i), EntityDesc: "quotation"},
				testinfra.BuildSecCtx(10))
			Expect(err).To(BeNil())
			ids = append(ids, r.ID)
		}
		_, err := approval.RejectRequest(ids[0], &domain.RejectionCommand{Reason: "bad"}, testinfra.BuildSecCtx(11))
		Expect(err).To(BeNil())

		list, total, err := approval.QueryApprovalRequests(&domain.ApprovalRequestQuery{
			EntityType: domain.EntityTypeQuotation}, testinfra.BuildSecCtx(10))
		Expect(err).To(BeNil())
		Expect(total).To(Equal(uint64(3)))
		Expect(len(*list)).To(Equal(3))

		list, total, err = approval.QueryApprovalRequests(&domain.ApprovalRequestQuery{
			Status: domain.ApprovalStatusRejected}, testinfra.BuildSecCtx(10))
		Expect(err).To(BeNil())
		Expect(total).To(Equal(uint64(1)))
		Expect((*list)[0].ID).To(Equal(ids[0]))

		list, total, err = approval.QueryApprovalRequests(&domain.ApprovalRequestQuery{
			EntityType: domain.EntityTypePurchaseOrder}, testinfra.BuildSecCtx(10))
		Expect(err).To(BeNil())
		Expect(total).To(Equal(uint64(0)))
		Expect(len(*list)).To(Equal(0))

		// paging keeps the total of the whole result set
		list, total, err = approval.QueryApprovalRequests(&domain.ApprovalRequestQuery{
			Page: 2, Size: 2}, testinfra.BuildSecCtx(10))
		Expect(err).To(BeNil())
		Expect(total).To(Equal(uint64(3)))
		Expect(len(*list)).To(Equal(1))
	})
}

func TestQueryPendingApprovals(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should list only the requests waiting on the session identity", func(t *testing.T) {
		defer approvalsTestTeardown(t, testDatabase)
		approvalsTestSetup(t, &testDatabase)

		r1, err := approval.CreateApprovalRequest(&domain.ApprovalRequestCreation{
			EntityType: domain.EntityTypeQuotation, EntityID: 301, EntityDesc: "quotation Q-1"},
			testinfra.BuildSecCtx(10))
		Expect(err).To(BeNil())
		r2, err := approval.CreateApprovalRequest(&domain.ApprovalRequestCreation{
			EntityType: domain.EntityTypeQuotation, EntityID: 302, EntityDesc: "quotation Q-2"},
			testinfra.BuildSecCtx(10))
		Expect(err).To(BeNil())

		// r1 moves on to the second level approver
		_, err = approval.ApproveRequest(r1.ID, &domain.ApprovalCommand{}, testinfra.BuildSecCtx(11))
		Expect(err).To(BeNil())

		list, total, err := approval.QueryPendingApprovals(&domain.PendingApprovalQuery{}, testinfra.BuildSecCtx(11))
		Expect(err).To(BeNil())
		Expect(total).To(Equal(uint64(1)))
		Expect((*list)[0].ID).To(Equal(r2.ID))

		list, total, err = approval.QueryPendingApprovals(&domain.PendingApprovalQuery{}, testinfra.BuildSecCtx(22))
		Expect(err).To(BeNil())
		Expect(total).To(Equal(uint64(1)))
		Expect((*list)[0].ID).To(Equal(r1.ID))

		// a completed request leaves every pending list
		_, err = approval.ApproveRequest(r1.ID, &domain.ApprovalCommand{}, testinfra.BuildSecCtx(22))
		Expect(err).To(BeNil())
		_, total, err = approval.QueryPendingApprovals(&domain.PendingApprovalQuery{}, testinfra.BuildSecCtx(22))
		Expect(err).To(BeNil())
		Expect(total).To(Equal(uint64(0)))
	})
}

func TestQueryApprovalHistory(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should report not found for an unknown request", func(t *testing.T) {
		defer approvalsTestTeardown(t, testDatabase)
		approvalsTestSetup(t, &testDatabase)

		history, err := approval.QueryApprovalHistory(404, testinfra.BuildSecCtx(10))
		Expect(history).To(BeNil())
		Expect(err).To(Equal(gorm.ErrRecordNotFound))
	})

	t.Run("should return the ledger in recording order with actor names", func(t *testing.T) {
		defer approvalsTestTeardown(t, testDatabase)
		approvalsTestSetup(t, &testDatabase)

		r, err := approval.CreateApprovalRequest(&domain.ApprovalRequestCreation{
			EntityType: domain.EntityTypeQuotation, EntityID: 200, EntityDesc: "quotation Q-1"},
			testinfra.BuildSecCtx(10))
		Expect(err).To(BeNil())
		_, err = approval.ApproveRequest(r.ID, &domain.ApprovalCommand{}, testinfra.BuildSecCtx(11))
		Expect(err).To(BeNil())
		_, err = approval.RejectRequest(r.ID, &domain.RejectionCommand{Reason: "changed my mind"}, testinfra.BuildSecCtx(22))
		Expect(err).To(BeNil())

		history, err := approval.QueryApprovalHistory(r.ID, testinfra.BuildSecCtx(10))
		Expect(err).To(BeNil())
		Expect(len(*history)).To(Equal(3))
		Expect((*history)[0].Action).To(Equal(domain.HistoryActionSubmitted))
		Expect((*history)[0].ActorName).To(Equal("submitter"))
		Expect((*history)[1].Action).To(Equal(domain.HistoryActionApproved))
		Expect((*history)[1].LevelOrder).To(Equal(1))
		Expect((*history)[2].Action).To(Equal(domain.HistoryActionRejected))
		Expect((*history)[2].Reason).To(Equal("changed my mind"))
		Expect((*history)[2].ActorName).To(Equal("manager"))
	})
}
