package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 分类表
type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`                      // 主键
	ParentID  uint           `gorm:"not null;default:0;index" json:"parent_id"` // 父分类ID（0 为顶级）
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`          // 唯一标识
	NameJSON  JSON           `gorm:"type:json;not null" json:"name"`            // 多语言名称
	SortOrder int            `gorm:"default:0;index" json:"sort_order"`         // 排序权重
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
