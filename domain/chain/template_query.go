package chain

import (
	"approvalflow/account"
	"approvalflow/domain"
	"approvalflow/persistence"
	"approvalflow/session"

	"github.com/fundwit/go-commons/types"
)

var (
	DetailChainTemplateViewFunc = DetailChainTemplateView
	QueryChainTemplateViewsFunc = QueryChainTemplateViews
)

func DetailChainTemplateView(id types.ID, s *session.Session) (*domain.ChainTemplateView, error) {
	detail, err := DetailChainTemplateFunc(id, s)
	if err != nil {
		return nil, err
	}

	views, err := buildTemplateViews([]domain.ChainTemplateDetail{*detail}, s)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func QueryChainTemplateViews(query *domain.ChainTemplateQuery, s *session.Session) (*[]domain.ChainTemplateView, error) {
	templates, err := QueryChainTemplatesFunc(query, s)
	if err != nil {
		return nil, err
	}
	if len(*templates) == 0 {
		r := []domain.ChainTemplateView{}
		return &r, nil
	}

	templateIds := make([]types.ID, 0, len(*templates))
	for _, t := range *templates {
		templateIds = append(templateIds, t.ID)
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var levels []domain.ChainLevel
	if err := db.Where("template_id IN (?)", templateIds).
		Order("level_order ASC").Find(&levels).Error; err != nil {
		return nil, err
	}

	details := make([]domain.ChainTemplateDetail, 0, len(*templates))
	for _, t := range *templates {
		detail := domain.ChainTemplateDetail{ChainTemplate: t}
		for _, l := range levels {
			if l.TemplateID == t.ID {
				detail.Levels = append(detail.Levels, l)
			}
		}
		details = append(details, detail)
	}

	views, err := buildTemplateViews(details, s)
	if err != nil {
		return nil, err
	}
	return &views, nil
}

// buildTemplateViews resolves every approver name across all given
// templates in a single directory lookup.
func buildTemplateViews(details []domain.ChainTemplateDetail, s *session.Session) ([]domain.ChainTemplateView, error) {
	ids := []types.ID{}
	for _, d := range details {
		for _, l := range d.Levels {
			ids = append(ids, l.ApproverID)
		}
	}
	names, err := account.QueryAccountNamesFunc(ids, s)
	if err != nil {
		return nil, err
	}

	views := make([]domain.ChainTemplateView, 0, len(details))
	for _, d := range details {
		view := domain.ChainTemplateView{ChainTemplate: d.ChainTemplate}
		for _, l := range d.Levels {
			view.Levels = append(view.Levels, domain.ChainLevelView{ChainLevel: l, ApproverName: names[l.ApproverID]})
		}
		views = append(views, view)
	}
	return views, nil
}
