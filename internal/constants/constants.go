package constants

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	TaskPromotionSnapshotRefresh = "promotion:snapshot_refresh"
)

// 缓存 key
const (
	CacheKeyPromotionSnapshot = "promotion:snapshot"
)

// 规则跳过原因（用于日志与指标标签）
const (
	SkipReasonConfig   = "config_error"
	SkipReasonDiscount = "discount_error"
	SkipReasonConvert  = "convert_error"
)

// 评估操作名称（用于指标标签）
const (
	OperationDirectPrice     = "direct_price"
	OperationEvaluateCart    = "evaluate_cart"
	OperationEvaluateProduct = "evaluate_product"
	OperationGiftSelection   = "gift_selection"
)

// 缓存层级（用于指标标签）
const (
	CacheLayerLocal = "local"
	CacheLayerRedis = "redis"
	CacheLayerDB    = "db"
)

// 缓存命中结果（用于指标标签）
const (
	CacheResultHit   = "hit"
	CacheResultMiss  = "miss"
	CacheResultError = "error"
)

// 后台角色
const (
	RolePromotionManager = "promotion_manager"
	RoleReadonlyAuditor  = "readonly_auditor"
)

// 语言
const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"
)
