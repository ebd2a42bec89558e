package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var localizedJSONSearchKeys = []string{"zh-CN", "en-US"}

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

func isPostgres(dialect string) bool {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return true
	default:
		return false
	}
}

func jsonTextExprByDialect(dialect, column, key string) string {
	if isPostgres(dialect) {
		return fmt.Sprintf("(%s::jsonb ->> '%s')", column, key)
	}
	// 语言键带 -，sqlite 需要加引号
	return fmt.Sprintf("json_extract(%s, '$.\"%s\"')", column, key)
}

// searchCondition 构建普通列 + 多语言 JSON 列的模糊匹配条件，返回条件与参数。
// keyword 为空时返回空条件。
func searchCondition(db *gorm.DB, keyword string, plainColumns, jsonColumns []string) (string, []interface{}) {
	return searchConditionByDialect(dbDialectName(db), keyword, plainColumns, jsonColumns)
}

func searchConditionByDialect(dialect, keyword string, plainColumns, jsonColumns []string) (string, []interface{}) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "", nil
	}
	operator := "LIKE"
	if isPostgres(dialect) {
		operator = "ILIKE"
	}
	like := "%" + keyword + "%"

	parts := make([]string, 0, len(plainColumns)+len(jsonColumns)*len(localizedJSONSearchKeys))
	args := make([]interface{}, 0, cap(parts))
	for _, column := range plainColumns {
		if column = strings.TrimSpace(column); column == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", column, operator))
		args = append(args, like)
	}
	for _, column := range jsonColumns {
		if column = strings.TrimSpace(column); column == "" {
			continue
		}
		for _, key := range localizedJSONSearchKeys {
			parts = append(parts, fmt.Sprintf("%s %s ?", jsonTextExprByDialect(dialect, column, key), operator))
			args = append(args, like)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// applySearch 在查询上追加关键字条件
func applySearch(query *gorm.DB, keyword string, plainColumns, jsonColumns []string) *gorm.DB {
	condition, args := searchCondition(query, keyword, plainColumns, jsonColumns)
	if condition == "" {
		return query
	}
	return query.Where(condition, args...)
}

// maxListPageSize 列表查询单页上限，防止调用方绕过 handler 直接拉全表
const maxListPageSize = 500

// applyPagination 应用分页参数；pageSize <= 0 表示不分页
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxListPageSize {
		pageSize = maxListPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
