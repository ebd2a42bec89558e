package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	CategoryID uint
	Search     string
	OnlyActive bool
}

// PromotionListFilter 查询促销规则列表的过滤条件
type PromotionListFilter struct {
	Page     int
	PageSize int
	Kind     string
	Search   string
	IsActive *bool
	// ActiveAt 非空时只返回该时刻处于有效期内的规则
	ActiveAt *time.Time
}

// AdminAuditLogListFilter 查询后台审计日志列表的过滤条件
type AdminAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	TargetType      string
	TargetID        uint
	Action          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
