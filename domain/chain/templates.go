package chain

import (
	"errors"

	"approvalflow/account"
	"approvalflow/bizerror"
	"approvalflow/common"
	"approvalflow/domain"
	"approvalflow/persistence"
	"approvalflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	templateIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateChainTemplateFunc = CreateChainTemplate
	DetailChainTemplateFunc = DetailChainTemplate
	QueryChainTemplatesFunc = QueryChainTemplates
	ReplaceChainLevelsFunc  = ReplaceChainLevels
)

func CreateChainTemplate(c *domain.ChainTemplateCreation, s *session.Session) (*domain.ChainTemplateDetail, error) {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}
	if !c.EntityType.IsKnown() {
		return nil, bizerror.ErrUnknownEntityType
	}
	if err := validateLevelCommands(c.Levels); err != nil {
		return nil, err
	}

	now := types.CurrentTimestamp()
	detail := &domain.ChainTemplateDetail{
		ChainTemplate: domain.ChainTemplate{
			ID:          common.NextId(templateIdWorker),
			EntityType:  c.EntityType,
			Name:        c.Name,
			Description: c.Description,
			Active:      true,
			CreateTime:  now,
		},
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := account.UsersExistFunc(approverIdsOf(c.Levels), tx); err != nil {
			return err
		}

		// the new template supersedes the current active one for the type
		if err := tx.Model(&domain.ChainTemplate{}).
			Where("entity_type = ? AND active = ?", c.EntityType, true).
			Update("active", false).Error; err != nil {
			return err
		}

		if err := tx.Create(&detail.ChainTemplate).Error; err != nil {
			return err
		}
		for _, l := range c.Levels {
			levelEntity := domain.ChainLevel{TemplateID: detail.ID, LevelOrder: l.LevelOrder,
				LevelName: l.LevelName, ApproverID: l.ApproverID, Required: l.Required, CreateTime: now}
			if err := tx.Create(&levelEntity).Error; err != nil {
				return err
			}
			detail.Levels = append(detail.Levels, levelEntity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return detail, nil
}

func DetailChainTemplate(id types.ID, s *session.Session) (*domain.ChainTemplateDetail, error) {
	detail := domain.ChainTemplateDetail{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.ChainTemplate{ID: id}).First(&detail.ChainTemplate).Error; err != nil {
			return err
		}
		return loadLevels(tx, &detail)
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func QueryChainTemplates(query *domain.ChainTemplateQuery, s *session.Session) (*[]domain.ChainTemplate, error) {
	var templates []domain.ChainTemplate
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	q := db.Order("create_time DESC")
	if query.EntityType != "" {
		q = q.Where(&domain.ChainTemplate{EntityType: query.EntityType})
	}
	if err := q.Find(&templates).Error; err != nil {
		return nil, err
	}
	return &templates, nil
}

// ReplaceChainLevels swaps the whole level list in one transaction. Partial
// level edits are not supported. In-flight approval requests keep their
// snapshot and are not touched.
func ReplaceChainLevels(templateId types.ID, commands []domain.ChainLevelCommand, s *session.Session) error {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return bizerror.ErrForbidden
	}
	if err := validateLevelCommands(commands); err != nil {
		return err
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		template := domain.ChainTemplate{}
		if err := tx.Where(&domain.ChainTemplate{ID: templateId}).First(&template).Error; err != nil {
			return err
		}

		if err := account.UsersExistFunc(approverIdsOf(commands), tx); err != nil {
			return err
		}

		if err := tx.Where("template_id = ?", templateId).Delete(&domain.ChainLevel{}).Error; err != nil {
			return err
		}
		now := types.CurrentTimestamp()
		for _, l := range commands {
			levelEntity := domain.ChainLevel{TemplateID: templateId, LevelOrder: l.LevelOrder,
				LevelName: l.LevelName, ApproverID: l.ApproverID, Required: l.Required, CreateTime: now}
			if err := tx.Create(&levelEntity).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ActiveTemplateOf loads the active template with its levels inside the
// caller's transaction, so request creation snapshots a consistent level set.
func ActiveTemplateOf(entityType domain.EntityType, tx *gorm.DB) (*domain.ChainTemplateDetail, error) {
	detail := domain.ChainTemplateDetail{}
	err := tx.Where("entity_type = ? AND active = ?", entityType, true).First(&detail.ChainTemplate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := loadLevels(tx, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func loadLevels(tx *gorm.DB, detail *domain.ChainTemplateDetail) error {
	var levels []domain.ChainLevel
	if err := tx.Where(domain.ChainLevel{TemplateID: detail.ID}).
		Order("level_order ASC").Find(&levels).Error; err != nil {
		return err
	}
	detail.Levels = levels
	return nil
}

func validateLevelCommands(commands []domain.ChainLevelCommand) error {
	if len(commands) == 0 {
		return bizerror.ErrEmptyChain
	}
	seen := map[int]bool{}
	for _, l := range commands {
		if seen[l.LevelOrder] {
			return bizerror.ErrDuplicateLevelOrder
		}
		seen[l.LevelOrder] = true
	}
	return nil
}

func approverIdsOf(commands []domain.ChainLevelCommand) []types.ID {
	ids := make([]types.ID, 0, len(commands))
	for _, l := range commands {
		ids = append(ids, l.ApproverID)
	}
	return ids
}
