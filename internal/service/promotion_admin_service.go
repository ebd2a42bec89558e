package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dujiao-next/promo-engine/internal/logger"
	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/promotion"
	"github.com/dujiao-next/promo-engine/internal/queue"
	"github.com/dujiao-next/promo-engine/internal/repository"
)

// PromotionGiftInput 赠品池条目输入
type PromotionGiftInput struct {
	SKUID    uint
	UnitCost models.Money
}

// PromotionInput 创建/更新促销规则输入
type PromotionInput struct {
	Name           string
	Kind           string
	ScopeType      string
	ScopeRefIDs    []uint
	ScopeTags      []string
	ActionType     string
	Value          models.Money
	ThresholdUnit  string
	MinThreshold   models.Money
	IsRepeatable   bool
	MaxRepeatCount *int
	StartsAt       *time.Time
	EndsAt         *time.Time
	IsActive       *bool
	Priority       int
	Gifts          []PromotionGiftInput
}

// PromotionAdminService 促销规则管理服务
type PromotionAdminService struct {
	repo             repository.PromotionRepository
	skuRepo          repository.ProductSKURepository
	promotionService *PromotionService
	queueClient      *queue.Client
}

// NewPromotionAdminService 创建促销规则管理服务
func NewPromotionAdminService(repo repository.PromotionRepository, skuRepo repository.ProductSKURepository, promotionService *PromotionService, queueClient *queue.Client) *PromotionAdminService {
	return &PromotionAdminService{
		repo:             repo,
		skuRepo:          skuRepo,
		promotionService: promotionService,
		queueClient:      queueClient,
	}
}

// Get 获取促销规则
func (s *PromotionAdminService) Get(id uint) (*models.Promotion, error) {
	if id == 0 {
		return nil, ErrPromotionInvalid
	}
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.Join(ErrPromotionFetchFailed, err)
	}
	if row == nil {
		return nil, ErrPromotionNotFound
	}
	return row, nil
}

// List 获取促销规则列表
func (s *PromotionAdminService) List(filter repository.PromotionListFilter) ([]models.Promotion, int64, error) {
	rows, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, errors.Join(ErrPromotionFetchFailed, err)
	}
	return rows, total, nil
}

// Create 创建促销规则
func (s *PromotionAdminService) Create(ctx context.Context, input PromotionInput) (*models.Promotion, error) {
	row := &models.Promotion{IsActive: true}
	if err := s.apply(row, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(row); err != nil {
		return nil, errors.Join(ErrPromotionCreateFailed, err)
	}
	s.afterChange(ctx, row.ID, "create")
	return row, nil
}

// Update 更新促销规则，赠品池整体替换
func (s *PromotionAdminService) Update(ctx context.Context, id uint, input PromotionInput) (*models.Promotion, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(existing, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(existing); err != nil {
		return nil, errors.Join(ErrPromotionUpdateFailed, err)
	}
	s.afterChange(ctx, existing.ID, "update")
	return s.Get(existing.ID)
}

// Delete 删除促销规则
func (s *PromotionAdminService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return errors.Join(ErrPromotionDeleteFailed, err)
	}
	s.afterChange(ctx, id, "delete")
	return nil
}

// Refresh 手动重建规则快照
func (s *PromotionAdminService) Refresh(ctx context.Context) (*PromotionSnapshot, error) {
	snapshot, err := s.promotionService.Refresh(ctx)
	if err != nil {
		return nil, errors.Join(ErrPromotionFetchFailed, err)
	}
	return snapshot, nil
}

// Preview 以草稿规则替换同 ID 的已生效规则后为购物车报价，不落库
func (s *PromotionAdminService) Preview(ctx context.Context, id uint, input PromotionInput, items []QuoteItem) (*CartQuote, error) {
	draft := &models.Promotion{ID: id, IsActive: true}
	if id != 0 {
		existing, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		draft.IsActive = existing.IsActive
	}
	if err := s.apply(draft, input); err != nil {
		return nil, err
	}
	rule, err := draft.ToRule()
	if err != nil {
		return nil, errors.Join(ErrPromotionInvalid, err)
	}

	snapshot, err := s.promotionService.Snapshot(ctx)
	if err != nil {
		return nil, errors.Join(ErrPromotionFetchFailed, err)
	}
	rules := make([]promotion.Rule, 0, len(snapshot.Rules)+1)
	for _, existing := range snapshot.Rules {
		if id != 0 && existing.ID == id {
			continue
		}
		rules = append(rules, existing)
	}
	rules = append(rules, rule)
	return s.promotionService.QuoteWithRules(ctx, items, rules)
}

// afterChange 规则变更后丢弃快照并通知其他实例刷新
func (s *PromotionAdminService) afterChange(ctx context.Context, id uint, reason string) {
	if err := s.promotionService.Invalidate(ctx); err != nil {
		logger.Warnw("promotion_snapshot_invalidate_failed", "promotion_id", id, "error", err)
	}
	if err := s.queueClient.EnqueuePromotionSnapshotRefresh(queue.PromotionSnapshotRefreshPayload{
		PromotionID: id,
		Reason:      reason,
	}); err != nil {
		logger.Warnw("promotion_snapshot_refresh_enqueue_failed", "promotion_id", id, "error", err)
	}
}

// apply 规范化输入并写入模型，写入后按引擎规则校验
func (s *PromotionAdminService) apply(row *models.Promotion, input PromotionInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ErrPromotionInvalid
	}
	row.Name = name
	row.Kind = strings.ToLower(strings.TrimSpace(input.Kind))
	row.ScopeType = strings.ToLower(strings.TrimSpace(input.ScopeType))
	row.ActionType = strings.ToLower(strings.TrimSpace(input.ActionType))
	row.ThresholdUnit = strings.ToLower(strings.TrimSpace(input.ThresholdUnit))
	if row.ThresholdUnit == "" {
		row.ThresholdUnit = promotion.UnitAmount.String()
	}
	row.ScopeRefIDs = normalizeIDs(input.ScopeRefIDs)
	row.ScopeTags = normalizeTags(input.ScopeTags)
	row.Value = input.Value
	row.MinThreshold = input.MinThreshold
	row.IsRepeatable = input.IsRepeatable
	row.MaxRepeatCount = input.MaxRepeatCount
	row.StartsAt = input.StartsAt
	row.EndsAt = input.EndsAt
	if input.IsActive != nil {
		row.IsActive = *input.IsActive
	}
	row.Priority = input.Priority

	row.Gifts = row.Gifts[:0]
	for i, gift := range input.Gifts {
		row.Gifts = append(row.Gifts, models.PromotionGift{
			PromotionID: row.ID,
			SKUID:       gift.SKUID,
			UnitCost:    gift.UnitCost,
			SortOrder:   i,
		})
	}

	rule, err := row.ToRule()
	if err != nil {
		return errors.Join(ErrPromotionInvalid, err)
	}
	if err := rule.Validate(); err != nil {
		return errors.Join(ErrPromotionInvalid, err)
	}
	if rule.Action.Type != promotion.ActionGift && len(row.Gifts) > 0 {
		return errors.Join(ErrPromotionInvalid, promotion.ErrActionUnsupported)
	}
	if rule.Action.Type != promotion.ActionGift && !rule.Action.Value.IsPositive() {
		return errors.Join(ErrPromotionInvalid, promotion.ErrActionValueInvalid)
	}
	return s.checkGiftSKUs(row.Gifts)
}

func (s *PromotionAdminService) checkGiftSKUs(gifts []models.PromotionGift) error {
	if len(gifts) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(gifts))
	for _, gift := range gifts {
		ids = append(ids, gift.SKUID)
	}
	ids = normalizeIDs(ids)
	if len(ids) != len(gifts) {
		// 同一 SKU 重复出现在赠品池
		return ErrPromotionInvalid
	}
	skus, err := s.skuRepo.ListByIDs(ids)
	if err != nil {
		return errors.Join(ErrPromotionFetchFailed, err)
	}
	if len(skus) != len(ids) {
		return errors.Join(ErrPromotionInvalid, ErrSKUNotFound)
	}
	return nil
}

func normalizeIDs(ids []uint) models.UintArray {
	result := make(models.UintArray, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func normalizeTags(tags []string) models.StringArray {
	result := make(models.StringArray, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}
	return result
}
