package domain

import (
	"github.com/fundwit/go-commons/types"
)

// ChainTemplate is the configured approval chain for one entity type.
// At most one active template exists per entity type.
type ChainTemplate struct {
	ID         types.ID   `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	EntityType EntityType `json:"entityType"`

	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// ChainLevel is one step of a template. Levels have no lifecycle of their
// own: they are only ever swapped as a whole list through the template.
type ChainLevel struct {
	TemplateID types.ID `json:"templateId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	LevelOrder int      `json:"levelOrder" gorm:"primary_key"`

	LevelName  string   `json:"levelName"`
	ApproverID types.ID `json:"approverId"`
	Required   bool     `json:"required"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type ChainTemplateDetail struct {
	ChainTemplate

	Levels []ChainLevel `json:"levels" gorm:"-"`
}

type ChainTemplateCreation struct {
	EntityType  EntityType          `json:"entityType" binding:"required"`
	Name        string              `json:"name" binding:"required,lte=128"`
	Description string              `json:"description" binding:"omitempty,lte=512"`
	Levels      []ChainLevelCommand `json:"levels" binding:"required,dive"`
}

// ChainLevelCommand is the inbound shape of one level for whole-list
// replacement. Approver existence is validated against the user directory
// before any row is written.
type ChainLevelCommand struct {
	LevelOrder int      `json:"levelOrder" binding:"required,gte=1"`
	LevelName  string   `json:"levelName" binding:"required,lte=128"`
	ApproverID types.ID `json:"approverId" binding:"required"`
	Required   bool     `json:"required"`
}

type ChainTemplateQuery struct {
	EntityType EntityType `json:"entityType" form:"entityType"`
}
