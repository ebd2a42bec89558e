package models

import "time"

// 审计对象类型
const (
	AuditTargetPromotion = "promotion"
	AuditTargetCategory  = "category"
	AuditTargetAdmin     = "admin"
	AuditTargetSnapshot  = "snapshot"
)

// AdminAuditLog 后台操作审计日志
// 说明：记录促销规则、分类与管理员角色的变更，规则快照变化可据此追溯到操作人。
type AdminAuditLog struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	OperatorAdminID  uint      `gorm:"index;not null" json:"operator_admin_id"`
	OperatorUsername string    `gorm:"type:varchar(100);index;not null;default:''" json:"operator_username"`
	TargetType       string    `gorm:"type:varchar(32);index;not null" json:"target_type"`
	TargetID         uint      `gorm:"index;not null;default:0" json:"target_id"`
	Action           string    `gorm:"type:varchar(100);index;not null" json:"action"`
	RequestID        string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	DetailJSON       JSON      `gorm:"type:json" json:"detail"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}
