package search

import (
	"errors"
	"testing"

	"approvalflow/domain"
	"approvalflow/es"
	"approvalflow/indices"
	"approvalflow/session"

	. "github.com/onsi/gomega"
)

func TestSearchApprovals(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should pass search errors up", func(t *testing.T) {
		es.SearchFunc = func(index string, query interface{}, s *session.Session) (*es.ESSearchResult, error) {
			return nil, errors.New("a mocked error")
		}
		details, err := SearchApprovals(ApprovalSearchQuery{}, &session.Session{})
		Expect(details).To(BeNil())
		Expect(err.Error()).To(Equal("a mocked error"))
	})

	t.Run("should build filters from the query and decode hits", func(t *testing.T) {
		var receivedIndex string
		var receivedQuery es.H
		es.SearchFunc = func(index string, query interface{}, s *session.Session) (*es.ESSearchResult, error) {
			receivedIndex = index
			receivedQuery = query.(es.H)
			return &es.ESSearchResult{Hits: es.ESSearchHits{Hits: []es.ESSearchHit{
				{Id: "123", Source: es.Source(`{"id":"123","entityType":"QUOTATION","entityDesc":"quotation Q-1","status":"PENDING"}`)},
			}}}, nil
		}

		details, err := SearchApprovals(ApprovalSearchQuery{
			Keyword: "Q-1", EntityType: domain.EntityTypeQuotation, Status: domain.ApprovalStatusPending},
			&session.Session{})
		Expect(err).To(BeNil())

		Expect(receivedIndex).To(Equal(indices.ApprovalIndexName))
		root := receivedQuery["query"].(es.H)
		filters := root["bool"].(es.H)["filter"].([]es.H)
		Expect(len(filters)).To(Equal(3))
		Expect(filters[0]).To(Equal(es.H{"multi_match": es.H{
			"query":  "Q-1",
			"fields": []string{"entityDesc", "submitterName", "decisions.approverName"},
		}}))
		Expect(filters[1]).To(Equal(es.H{"term": es.H{"entityType.keyword": domain.EntityTypeQuotation}}))
		Expect(filters[2]).To(Equal(es.H{"term": es.H{"status.keyword": domain.ApprovalStatusPending}}))

		Expect(len(details)).To(Equal(1))
		Expect(details[0].ID.String()).To(Equal("123"))
		Expect(details[0].EntityDesc).To(Equal("quotation Q-1"))
		Expect(details[0].Status).To(Equal(domain.ApprovalStatusPending))
	})

	t.Run("should omit empty filters", func(t *testing.T) {
		var receivedQuery es.H
		es.SearchFunc = func(index string, query interface{}, s *session.Session) (*es.ESSearchResult, error) {
			receivedQuery = query.(es.H)
			return &es.ESSearchResult{}, nil
		}

		details, err := SearchApprovals(ApprovalSearchQuery{}, &session.Session{})
		Expect(err).To(BeNil())
		Expect(len(details)).To(BeZero())

		root := receivedQuery["query"].(es.H)
		filters := root["bool"].(es.H)["filter"].([]es.H)
		Expect(len(filters)).To(BeZero())
	})
}
