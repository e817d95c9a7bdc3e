package approval_test

import (
	"approvalflow/bizerror"
	"approvalflow/domain"
	"approvalflow/domain/approval"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func buildTemplate(levels ...domain.ChainLevel) *domain.ChainTemplateDetail {
	return &domain.ChainTemplateDetail{
		ChainTemplate: domain.ChainTemplate{ID: 100, EntityType: domain.EntityTypeQuotation, Name: "standard", Active: true},
		Levels:        levels,
	}
}

var _ = Describe("approval aggregate", func() {
	var now types.Timestamp

	BeforeEach(func() {
		now = types.CurrentTimestamp()
	})

	Describe("NewApprovalRequest", func() {
		It("should refuse a template without levels", func() {
			r, err := approval.NewApprovalRequest(1, domain.EntityTypeQuotation, 200, "quotation Q-1", 10, nil, now)
			Expect(r).To(BeNil())
			Expect(err).To(Equal(bizerror.ErrEmptyChain))

			r, err = approval.NewApprovalRequest(1, domain.EntityTypeQuotation, 200, "quotation Q-1", 10, buildTemplate(), now)
			Expect(r).To(BeNil())
			Expect(err).To(Equal(bizerror.ErrEmptyChain))
		})

		It("should snapshot levels sorted ascending and start at the lowest one", func() {
			template := buildTemplate(
				domain.ChainLevel{TemplateID: 100, LevelOrder: 3, LevelName: "director", ApproverID: 33},
				domain.ChainLevel{TemplateID: 100, LevelOrder: 1, LevelName: "team lead", ApproverID: 11},
				domain.ChainLevel{TemplateID: 100, LevelOrder: 2, LevelName: "manager", ApproverID: 22},
			)

			r, err := approval.NewApprovalRequest(1, domain.EntityTypeQuotation, 200, "quotation Q-1", 10, template, now)
			Expect(err).To(BeNil())

			Expect(r.Status).To(Equal(domain.ApprovalStatusPending))
			Expect(r.SubmitterID).To(Equal(types.ID(10)))
			Expect(r.Version).To(Equal(1))
			Expect(r.CurrentLevelOrder).To(Equal(1))
			Expect(r.CurrentApproverID).To(Equal(types.ID(11)))

			Expect(len(r.Decisions)).To(Equal(3))
			Expect(r.Decisions[0].LevelOrder).To(Equal(1))
			Expect(r.Decisions[1].LevelOrder).To(Equal(2))
			Expect(r.Decisions[2].LevelOrder).To(Equal(3))
			for _, d := range r.Decisions {
				Expect(d.State).To(Equal(domain.ApprovalStatusPending))
			}

			Expect(len(r.History)).To(Equal(1))
			Expect(r.History[0]).To(Equal(domain.HistoryEntry{
				Action: domain.HistoryActionSubmitted, ActorID: 10, Timestamp: now}))
		})

		It("should keep its snapshot independent of the template levels", func() {
			template := buildTemplate(
				domain.ChainLevel{TemplateID: 100, LevelOrder: 1, LevelName: "team lead", ApproverID: 11},
			)
			r, err := approval.NewApprovalRequest(1, domain.EntityTypeQuotation, 200, "quotation Q-1", 10, template, now)
			Expect(err).To(BeNil())

			template.Levels[0].ApproverID = 999
			Expect(r.Decisions[0].ApproverID).To(Equal(types.ID(11)))
		})
	})

	Describe("Approve", func() {
		var r *domain.ApprovalRequest

		BeforeEach(func() {
			var err error
			r, err = approval.NewApprovalRequest(1, domain.EntityTypeQuotation, 200, "quotation Q-1", 10, buildTemplate(
				domain.ChainLevel{TemplateID: 100, LevelOrder: 1, LevelName: "team lead", ApproverID: 11},
				domain.ChainLevel{TemplateID: 100, LevelOrder: 2, LevelName: "manager", ApproverID: 22},
			), now)
			Expect(err).To(BeNil())
		})

		It("should refuse a decider who is not the current approver", func() {
			Expect(approval.Approve(r, 99, "", false, now)).To(Equal(bizerror.ErrNotCurrentApprover))

			// the second level approver must wait for the first level
			Expect(approval.Approve(r, 22, "", false, now)).To(Equal(bizerror.ErrNotCurrentApprover))

			Expect(r.Status).To(Equal(domain.ApprovalStatusPending))
			Expect(len(r.History)).To(Equal(1))
		})

		It("should advance to the next level on an intermediate approval", func() {
			Expect(approval.Approve(r, 11, "looks good", false, now)).To(BeNil())

			Expect(r.Status).To(Equal(domain.ApprovalStatusPending))
			Expect(r.CurrentLevelOrder).To(Equal(2))
			Expect(r.CurrentApproverID).To(Equal(types.ID(22)))

			Expect(r.Decisions[0].State).To(Equal(domain.ApprovalStatusApproved))
			Expect(r.Decisions[0].DeciderID).To(Equal(types.ID(11)))
			Expect(r.Decisions[0].Comment).To(Equal("looks good"))
			Expect(r.Decisions[1].State).To(Equal(domain.ApprovalStatusPending))

			Expect(len(r.History)).To(Equal(2))
			Expect(r.History[1]).To(Equal(domain.HistoryEntry{
				Action: domain.HistoryActionApproved, LevelOrder: 1, ActorID: 11, Comment: "looks good", Timestamp: now}))
		})

		It("should become terminal once the last level approves", func() {
			Expect(approval.Approve(r, 11, "", false, now)).To(BeNil())
			Expect(approval.Approve(r, 22, "final", false, now)).To(BeNil())

			Expect(r.Status).To(Equal(domain.ApprovalStatusApproved))
			Expect(r.IsCompleted()).To(BeTrue())
			Expect(r.CurrentLevelOrder).To(Equal(0))
			Expect(r.CurrentApproverID).To(Equal(types.ID(0)))

			// no further decision of any kind
			Expect(approval.Approve(r, 22, "", false, now)).To(Equal(bizerror.ErrAlreadyCompleted))
			Expect(approval.Reject(r, 22, "too late", "", false, now)).To(Equal(bizerror.ErrAlreadyCompleted))
			Expect(approval.Approve(r, 22, "", true, now)).To(Equal(bizerror.ErrAlreadyCompleted))
		})

		It("should let an administrator decide in place of the current approver", func() {
			Expect(approval.Approve(r, 99, "override", true, now)).To(BeNil())

			Expect(r.Decisions[0].State).To(Equal(domain.ApprovalStatusApproved))
			Expect(r.Decisions[0].DeciderID).To(Equal(types.ID(99)))
			Expect(r.CurrentLevelOrder).To(Equal(2))
		})
	})

	Describe("Reject", func() {
		var r *domain.ApprovalRequest

		BeforeEach(func() {
			var err error
			r, err = approval.NewApprovalRequest(1, domain.EntityTypeQuotation, 200, "quotation Q-1", 10, buildTemplate(
				domain.ChainLevel{TemplateID: 100, LevelOrder: 1, LevelName: "team lead", ApproverID: 11},
				domain.ChainLevel{TemplateID: 100, LevelOrder: 2, LevelName: "manager", ApproverID: 22},
			), now)
			Expect(err).To(BeNil())
		})

		It("should require a non-blank reason", func() {
			Expect(approval.Reject(r, 11, "", "", false, now)).To(Equal(bizerror.ErrReasonRequired))
			Expect(approval.Reject(r, 11, "   ", "", false, now)).To(Equal(bizerror.ErrReasonRequired))
			Expect(r.Status).To(Equal(domain.ApprovalStatusPending))
		})

		It("should terminate the whole chain immediately", func() {
			Expect(approval.Reject(r, 11, "price too high", "see notes", false, now)).To(BeNil())

			Expect(r.Status).To(Equal(domain.ApprovalStatusRejected))
			Expect(r.IsCompleted()).To(BeTrue())
			Expect(r.CurrentLevelOrder).To(Equal(0))
			Expect(r.CurrentApproverID).To(Equal(types.ID(0)))

			Expect(r.Decisions[0].State).To(Equal(domain.ApprovalStatusRejected))
			Expect(r.Decisions[0].Reason).To(Equal("price too high"))
			Expect(r.Decisions[0].Comment).To(Equal("see notes"))
			// the level after the rejected one is never decided
			Expect(r.Decisions[1].State).To(Equal(domain.ApprovalStatusPending))

			Expect(len(r.History)).To(Equal(2))
			Expect(r.History[1]).To(Equal(domain.HistoryEntry{
				Action: domain.HistoryActionRejected, LevelOrder: 1, ActorID: 11,
				Comment: "see notes", Reason: "price too high", Timestamp: now}))

			Expect(approval.Approve(r, 22, "", false, now)).To(Equal(bizerror.ErrAlreadyCompleted))
		})

		It("should refuse a decider who is not the current approver", func() {
			Expect(approval.Reject(r, 22, "not mine to decide", "", false, now)).To(Equal(bizerror.ErrNotCurrentApprover))
			Expect(r.Status).To(Equal(domain.ApprovalStatusPending))
		})

		It("should let an administrator reject in place of the current approver", func() {
			Expect(approval.Reject(r, 99, "invalid request", "", true, now)).To(BeNil())
			Expect(r.Status).To(Equal(domain.ApprovalStatusRejected))
			Expect(r.Decisions[0].DeciderID).To(Equal(types.ID(99)))
		})
	})
})
