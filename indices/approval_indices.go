package indices

import (
	"fmt"

	"approvalflow/domain"
	"approvalflow/es"
	"approvalflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	ApprovalIndexName = "approval-requests"
)

type ApprovalDocument struct {
	domain.ApprovalRequestDetail
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexApprovals(details []domain.ApprovalRequestDetail, s *session.Session) error {
	docs := make([]ApprovalDocument, 0, len(details))
	for _, detail := range details {
		docs = append(docs, ApprovalDocument{ApprovalRequestDetail: detail})
	}

	if err := saveApprovalDocuments(docs, s); err != nil {
		return err
	}
	return nil
}

func saveApprovalDocuments(docs []ApprovalDocument, s *session.Session) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range docs {
		if err := es.IndexFunc(ApprovalIndexName, doc.ID, doc, s); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index approval request %d %s %s\n", doc.ID, doc.EntityDesc, err)
		} else {
			logrus.Infof("index approval request %d %s successfully\n", doc.ID, doc.EntityDesc)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
