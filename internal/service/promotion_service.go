package service

import (
	"context"
	"errors"
	"time"

	"github.com/dujiao-next/promo-engine/internal/cache"
	"github.com/dujiao-next/promo-engine/internal/config"
	"github.com/dujiao-next/promo-engine/internal/constants"
	"github.com/dujiao-next/promo-engine/internal/logger"
	"github.com/dujiao-next/promo-engine/internal/metrics"
	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/promotion"
	"github.com/dujiao-next/promo-engine/internal/repository"
)

// PromotionSnapshot 促销规则快照，作为缓存单元在实例间共享
type PromotionSnapshot struct {
	Rules   []promotion.Rule   `json:"rules"`
	Invalid []InvalidPromotion `json:"invalid,omitempty"`
	BuiltAt time.Time          `json:"built_at"`
}

// InvalidPromotion 无法转换为计算规则的记录
type InvalidPromotion struct {
	PromotionID uint   `json:"promotion_id"`
	Reason      string `json:"reason"`
}

// PromotionService 促销计算服务：维护规则快照并调用计算引擎
type PromotionService struct {
	cfg           config.PromotionConfig
	engine        *promotion.Engine
	promotionRepo repository.PromotionRepository
	categoryRepo  repository.CategoryRepository
	productRepo   repository.ProductRepository
	skuRepo       repository.ProductSKURepository
	snapshots     *cache.SnapshotCache[*PromotionSnapshot]
	now           func() time.Time
}

// NewPromotionService 创建促销计算服务
func NewPromotionService(
	cfg config.PromotionConfig,
	promotionRepo repository.PromotionRepository,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	skuRepo repository.ProductSKURepository,
) *PromotionService {
	s := &PromotionService{
		cfg:           cfg,
		engine:        promotion.New(promotion.WithCurrencyScale(cfg.CurrencyScale)),
		promotionRepo: promotionRepo,
		categoryRepo:  categoryRepo,
		productRepo:   productRepo,
		skuRepo:       skuRepo,
		now:           time.Now,
	}
	s.snapshots = cache.NewSnapshotCache(constants.CacheKeyPromotionSnapshot, cfg.LocalTTL(), cfg.SnapshotTTL(), s.loadSnapshot)
	return s
}

// Engine 返回计算引擎
func (s *PromotionService) Engine() *promotion.Engine {
	return s.engine
}

// Snapshot 获取当前规则快照
func (s *PromotionService) Snapshot(ctx context.Context) (*PromotionSnapshot, error) {
	return s.snapshots.Get(ctx)
}

// Invalidate 丢弃缓存的规则快照
func (s *PromotionService) Invalidate(ctx context.Context) error {
	return s.snapshots.Invalidate(ctx)
}

// Refresh 立即重建规则快照
func (s *PromotionService) Refresh(ctx context.Context) (*PromotionSnapshot, error) {
	return s.snapshots.Refresh(ctx)
}

// rules 获取规则列表；快照加载失败时按无促销处理，返回 false
func (s *PromotionService) rules(ctx context.Context) ([]promotion.Rule, bool) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		logger.Warnw("promotion_snapshot_load_failed", "error", err)
		return nil, false
	}
	if snapshot == nil {
		return nil, true
	}
	return snapshot.Rules, true
}

func (s *PromotionService) loadSnapshot(ctx context.Context) (*PromotionSnapshot, error) {
	now := s.now()
	rows, err := s.promotionRepo.ListActive(now)
	if err != nil {
		return nil, err
	}

	var tree categoryTree
	if s.cfg.ExpandCategoryDescendants && hasCategoryScope(rows) && s.categoryRepo != nil {
		categories, err := s.categoryRepo.List()
		if err != nil {
			logger.Warnw("promotion_category_tree_load_failed", "error", err)
		} else {
			tree = newCategoryTree(categories)
		}
	}

	snapshot := &PromotionSnapshot{Rules: make([]promotion.Rule, 0, len(rows)), BuiltAt: now}
	for i := range rows {
		rule, err := rows[i].ToRule()
		if err != nil {
			snapshot.Invalid = append(snapshot.Invalid, InvalidPromotion{PromotionID: rows[i].ID, Reason: err.Error()})
			metrics.ObserveRuleSkipped(constants.SkipReasonConvert)
			logger.Warnw("promotion_rule_skipped",
				"rule_id", rows[i].ID,
				"reason", constants.SkipReasonConvert,
				"error", err,
			)
			continue
		}
		if tree != nil && rule.Scope.Type == promotion.ScopeCategory {
			rule.Scope.CategoryIDs = tree.expand(rule.Scope.CategoryIDs)
		}
		snapshot.Rules = append(snapshot.Rules, rule)
	}
	logger.Debugw("promotion_snapshot_built", "rules", len(snapshot.Rules), "invalid", len(snapshot.Invalid))
	return snapshot, nil
}

func hasCategoryScope(rows []models.Promotion) bool {
	for _, row := range rows {
		if row.ScopeType == promotion.ScopeCategory.String() {
			return true
		}
	}
	return false
}

// reportSkipped 记录计算过程中被跳过的规则
func reportSkipped(operation string, skipped []promotion.SkippedRule) {
	for _, item := range skipped {
		reason := constants.SkipReasonConfig
		if item.Discount {
			reason = constants.SkipReasonDiscount
		}
		metrics.ObserveRuleSkipped(reason)
		logger.Warnw("promotion_rule_skipped",
			"rule_id", item.RuleID,
			"operation", operation,
			"reason", reason,
			"error", item.Reason,
		)
	}
}

// ItemForProduct 构建范围匹配用的商品标识；商品已加载时标签视为已知
func ItemForProduct(product *models.Product) promotion.Item {
	if product == nil {
		return promotion.Item{}
	}
	tags := make([]string, 0, len(product.Tags))
	tags = append(tags, product.Tags...)
	return promotion.Item{ProductID: product.ID, CategoryID: product.CategoryID, TagIDs: tags}
}

// directRules 准备本次请求使用的直降规则
func (s *PromotionService) directRules(ctx context.Context) promotion.DirectRuleSet {
	rules, _ := s.rules(ctx)
	return promotion.PrepareDirectRules(rules, s.now())
}

// SKUPrice 单个 SKU 的直降价
type SKUPrice struct {
	SKUID          uint         `json:"sku_id"`
	SKUCode        string       `json:"sku_code"`
	BasePrice      models.Money `json:"base_price"`
	FinalPrice     models.Money `json:"final_price"`
	DirectRuleID   uint         `json:"direct_rule_id,omitempty"`
	DirectRuleName string       `json:"direct_rule_name,omitempty"`
}

// ProductPromotions 商品的直降价与满减/满赠活动角标
type ProductPromotions struct {
	ProductID  uint                    `json:"product_id"`
	Prices     []SKUPrice              `json:"prices"`
	Promotions []promotion.RuleSummary `json:"promotions"`
}

// ForProduct 计算商品各 SKU 的直降价及覆盖该商品的满减/满赠活动
func (s *PromotionService) ForProduct(ctx context.Context, productID uint) (*ProductPromotions, error) {
	product, err := s.productRepo.GetByID(productID, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	rules, _ := s.rules(ctx)
	now := s.now()
	set := promotion.PrepareDirectRules(rules, now)
	item := ItemForProduct(product)

	result := &ProductPromotions{ProductID: product.ID}
	if len(product.SKUs) == 0 {
		result.Prices = append(result.Prices, s.priceFor(item, 0, "", product.PriceAmount, set))
	}
	for _, sku := range product.SKUs {
		result.Prices = append(result.Prices, s.priceFor(item, sku.ID, sku.SKUCode, sku.PriceAmount, set))
	}
	metrics.ObserveEvaluation(constants.OperationDirectPrice, set.Len())

	result.Promotions = s.engine.EvaluateProduct(now, item, rules)
	metrics.ObserveEvaluation(constants.OperationEvaluateProduct, len(rules))
	return result, nil
}

// PriceFor 计算单个商品的直降价
func (s *PromotionService) PriceFor(ctx context.Context, product *models.Product) SKUPrice {
	set := s.directRules(ctx)
	metrics.ObserveEvaluation(constants.OperationDirectPrice, set.Len())
	return s.priceFor(ItemForProduct(product), 0, "", product.PriceAmount, set)
}

func (s *PromotionService) priceFor(item promotion.Item, skuID uint, skuCode string, base models.Money, set promotion.DirectRuleSet) SKUPrice {
	price := s.engine.PriceFor(item, base.Decimal, set)
	result := SKUPrice{
		SKUID:      skuID,
		SKUCode:    skuCode,
		BasePrice:  base,
		FinalPrice: models.NewMoneyFromDecimal(price.FinalPrice),
	}
	if price.Rule != nil {
		result.DirectRuleID = price.Rule.ID
		result.DirectRuleName = price.Rule.Name
	}
	return result
}

// giftStock 查询规则赠品池涉及 SKU 的可用库存；不限库存的 SKU 不登记
func (s *PromotionService) giftStock(rules []promotion.Rule) promotion.GiftStock {
	ids := make([]uint, 0)
	seen := make(map[uint]struct{})
	for _, rule := range rules {
		if rule.Action.Type != promotion.ActionGift {
			continue
		}
		for _, entry := range rule.GiftPool {
			if _, ok := seen[entry.VariantID]; ok {
				continue
			}
			seen[entry.VariantID] = struct{}{}
			ids = append(ids, entry.VariantID)
		}
	}
	stock := promotion.GiftStock{}
	if len(ids) == 0 {
		return stock
	}
	skus, err := s.skuRepo.ListByIDs(ids)
	if err != nil {
		// 查询失败时所有赠品按无库存处理
		logger.Warnw("promotion_gift_stock_load_failed", "error", err)
		for _, id := range ids {
			stock[id] = 0
		}
		return stock
	}
	found := make(map[uint]struct{}, len(skus))
	for _, sku := range skus {
		found[sku.ID] = struct{}{}
		if !sku.IsActive || (sku.Product != nil && !sku.Product.IsActive) {
			stock[sku.ID] = 0
			continue
		}
		if available, limited := sku.Available(); limited {
			stock[sku.ID] = available
		}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			stock[id] = 0
		}
	}
	return stock
}

// ValidateGiftClaim 校验在某个已达标赠品活动下的赠品选择
func (s *PromotionService) ValidateGiftClaim(quote *CartQuote, ruleID uint, selections []promotion.GiftSelection) error {
	metrics.ObserveEvaluation(constants.OperationGiftSelection, len(selections))
	if quote == nil {
		return ErrGiftSelectionInvalid
	}
	result, ok := findApplied(quote.Promotions, ruleID)
	if !ok {
		return errors.Join(ErrGiftSelectionInvalid, promotion.ErrGiftRuleNotQualified)
	}
	if err := promotion.ValidateGiftSelection(result, selections); err != nil {
		return errors.Join(ErrGiftSelectionInvalid, err)
	}
	return nil
}

func findApplied(results []promotion.AppliedPromotion, ruleID uint) (promotion.AppliedPromotion, bool) {
	return promotion.CartEvaluation{Results: results}.Find(ruleID)
}
