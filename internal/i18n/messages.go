package i18n

import "github.com/dujiao-next/promo-engine/internal/constants"

var messages = map[string]map[string]string{
	constants.LocaleZhCN: {
		"error.bad_request":               "请求参数错误",
		"error.unauthorized":              "未登录或登录已失效",
		"error.forbidden":                 "没有访问权限",
		"error.not_found":                 "资源不存在",
		"error.internal":                  "服务器内部错误",
		"error.rate_limited":              "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":    "限流服务不可用",
		"error.login_too_many":            "登录尝试过多，请 %d 秒后重试",
		"error.jwt_secret_missing":        "JWT 密钥未配置",
		"error.auth_header_missing":       "缺少 Authorization 头",
		"error.auth_header_invalid":       "Authorization 格式错误",
		"error.token_invalid":             "无效的 token",
		"error.token_revoked":             "token 已失效，请重新登录",
		"error.invalid_credentials":       "用户名或密码错误",
		"error.captcha_required":          "请输入验证码",
		"error.captcha_invalid":           "验证码错误",
		"error.captcha_unavailable":       "验证码服务未启用",
		"error.product_not_found":         "商品不存在",
		"error.product_not_available":     "商品已下架",
		"error.product_fetch_failed":      "获取商品失败",
		"error.sku_not_found":             "商品规格不存在",
		"error.cart_item_invalid":         "购物车商品参数错误",
		"error.cart_fetch_failed":         "获取购物车失败",
		"error.cart_update_failed":        "更新购物车失败",
		"error.promotion_not_found":       "活动不存在",
		"error.promotion_invalid":         "活动配置错误",
		"error.promotion_fetch_failed":    "获取活动失败",
		"error.promotion_save_failed":     "保存活动失败",
		"error.promotion_delete_failed":   "删除活动失败",
		"error.promotion_evaluate_failed": "计算优惠失败",
		"error.gift_rule_not_qualified":   "未达到赠品活动门槛",
		"error.gift_not_in_pool":          "所选赠品不在活动赠品池中",
		"error.gift_quantity_exceeded":    "所选赠品数量超出可领取数量",
		"error.gift_count_cap_exceeded":   "所选赠品总数超出活动上限",
		"error.gift_selection_invalid":    "赠品选择参数错误",
		"error.gift_rule_not_gift":        "该活动不是赠品活动",
		"error.user_id_invalid":           "用户ID无效",
		"error.admin_id_invalid":          "管理员ID无效",
		"error.admin_not_found":           "管理员不存在",
		"error.login_failed":              "登录失败",
		"error.captcha_generate_failed":   "生成验证码失败",
		"error.authz_fetch_failed":        "获取权限失败",
		"error.authz_update_failed":       "更新权限失败",
		"error.category_invalid":          "分类参数错误",
		"error.category_fetch_failed":     "获取分类失败",
		"error.category_save_failed":      "保存分类失败",
		"error.promotion_refresh_failed":  "刷新活动缓存失败",
		"error.audit_fetch_failed":        "获取审计日志失败",
		"error.password_old_invalid":      "原密码错误",
		"error.password_weak":             "新密码至少 8 位且需同时包含字母和数字",
		"error.password_update_failed":    "修改密码失败",
		"error.role_unknown":              "角色不存在",
		"error.category_slug_exists":      "分类标识已存在",
	},
	constants.LocaleEnUS: {
		"error.bad_request":               "Invalid request parameters",
		"error.unauthorized":              "Not logged in or session expired",
		"error.forbidden":                 "Permission denied",
		"error.not_found":                 "Resource not found",
		"error.internal":                  "Internal server error",
		"error.rate_limited":              "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":    "Rate limiter unavailable",
		"error.login_too_many":            "Too many login attempts, retry in %d seconds",
		"error.jwt_secret_missing":        "JWT secret is not configured",
		"error.auth_header_missing":       "Missing Authorization header",
		"error.auth_header_invalid":       "Malformed Authorization header",
		"error.token_invalid":             "Invalid token",
		"error.token_revoked":             "Token revoked, please log in again",
		"error.invalid_credentials":       "Invalid username or password",
		"error.captcha_required":          "Captcha is required",
		"error.captcha_invalid":           "Captcha is incorrect",
		"error.captcha_unavailable":       "Captcha is disabled",
		"error.product_not_found":         "Product not found",
		"error.product_not_available":     "Product is not available",
		"error.product_fetch_failed":      "Failed to load product",
		"error.sku_not_found":             "Product variant not found",
		"error.cart_item_invalid":         "Invalid cart item",
		"error.cart_fetch_failed":         "Failed to load cart",
		"error.cart_update_failed":        "Failed to update cart",
		"error.promotion_not_found":       "Promotion not found",
		"error.promotion_invalid":         "Invalid promotion configuration",
		"error.promotion_fetch_failed":    "Failed to load promotions",
		"error.promotion_save_failed":     "Failed to save promotion",
		"error.promotion_delete_failed":   "Failed to delete promotion",
		"error.promotion_evaluate_failed": "Failed to evaluate promotions",
		"error.gift_rule_not_qualified":   "Cart does not qualify for this gift promotion",
		"error.gift_not_in_pool":          "Selected gift is not offered by this promotion",
		"error.gift_quantity_exceeded":    "Selected gift quantity exceeds the allowance",
		"error.gift_count_cap_exceeded":   "Selected gifts exceed the promotion limit",
		"error.gift_selection_invalid":    "Invalid gift selection",
		"error.gift_rule_not_gift":        "Promotion does not offer gifts",
		"error.user_id_invalid":           "Invalid user id",
		"error.admin_id_invalid":          "Invalid admin id",
		"error.admin_not_found":           "Admin not found",
		"error.login_failed":              "Login failed",
		"error.captcha_generate_failed":   "Failed to generate captcha",
		"error.authz_fetch_failed":        "Failed to load permissions",
		"error.authz_update_failed":       "Failed to update permissions",
		"error.category_invalid":          "Invalid category",
		"error.category_fetch_failed":     "Failed to load categories",
		"error.category_save_failed":      "Failed to save category",
		"error.promotion_refresh_failed":  "Failed to refresh promotions",
		"error.audit_fetch_failed":        "Failed to fetch audit logs",
		"error.password_old_invalid":      "Current password is incorrect",
		"error.password_weak":             "New password needs at least 8 characters with letters and digits",
		"error.password_update_failed":    "Failed to update password",
		"error.role_unknown":              "Unknown role",
		"error.category_slug_exists":      "Category slug already exists",
	},
}
