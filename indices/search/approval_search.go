package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"approvalflow/domain"
	"approvalflow/es"
	"approvalflow/indices"
	"approvalflow/session"
)

var (
	SearchApprovalsFunc = SearchApprovals
)

type ApprovalSearchQuery struct {
	Keyword    string                `form:"keyword" json:"keyword"`
	EntityType domain.EntityType     `form:"entityType" json:"entityType"`
	Status     domain.ApprovalStatus `form:"status" json:"status"`
}

// SearchApprovals queries the Elasticsearch projection, matching the
// keyword against the entity description and the resolved user names.
func SearchApprovals(q ApprovalSearchQuery, s *session.Session) ([]domain.ApprovalRequestDetail, error) {
	filters := make([]es.H, 0, 3)
	if q.Keyword != "" {
		filters = append(filters, es.H{"multi_match": es.H{
			"query":  q.Keyword,
			"fields": []string{"entityDesc", "submitterName", "decisions.approverName"},
		}})
	}
	if q.EntityType != "" {
		filters = append(filters, es.H{"term": es.H{"entityType.keyword": q.EntityType}})
	}
	if q.Status != "" {
		filters = append(filters, es.H{"term": es.H{"status.keyword": q.Status}})
	}

	sorts := []es.H{{"createTime": es.H{"order": "desc"}}}
	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(indices.ApprovalIndexName, es.H{"size": 10000, "query": root, "sort": sorts}, s)
	if err != nil {
		return nil, err
	}

	details := make([]domain.ApprovalRequestDetail, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		detail := domain.ApprovalRequestDetail{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&detail); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		details = append(details, detail)
	}
	return details, nil
}
