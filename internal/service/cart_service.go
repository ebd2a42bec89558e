package service

import (
	"context"
	"errors"
	"time"

	"github.com/dujiao-next/promo-engine/internal/logger"
	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/promotion"
	"github.com/dujiao-next/promo-engine/internal/repository"

	"gorm.io/gorm"
)

// UpsertCartItemInput 购物车更新输入
type UpsertCartItemInput struct {
	UserID    uint
	ProductID uint
	SKUID     uint
	Quantity  int
}

// ClaimGiftsInput 赠品领取输入
type ClaimGiftsInput struct {
	UserID     uint
	RuleID     uint
	Selections []promotion.GiftSelection
}

// CartService 购物车服务
type CartService struct {
	cartRepo         repository.CartRepository
	productRepo      repository.ProductRepository
	skuRepo          repository.ProductSKURepository
	promotionService *PromotionService
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, skuRepo repository.ProductSKURepository, promotionService *PromotionService) *CartService {
	return &CartService{
		cartRepo:         cartRepo,
		productRepo:      productRepo,
		skuRepo:          skuRepo,
		promotionService: promotionService,
	}
}

// GetCart 获取用户购物车报价；只读，已下架商品或 SKU 的普通行不参与报价，列在 unavailable_lines 中
func (s *CartService) GetCart(ctx context.Context, userID uint) (*CartQuote, error) {
	if userID == 0 {
		return nil, ErrInvalidCartItem
	}
	items, unavailable, err := s.loadCart(userID)
	if err != nil {
		return nil, err
	}
	quote, err := s.promotionService.Quote(ctx, items)
	if err != nil {
		return nil, err
	}
	quote.UnavailableLines = unavailable
	return quote, nil
}

// loadCart 读取购物车，拆分为可报价行与已失效的普通行
func (s *CartService) loadCart(userID uint) ([]QuoteItem, []QuoteItem, error) {
	rows, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, nil, errors.Join(ErrCartFetchFailed, err)
	}
	items := make([]QuoteItem, 0, len(rows))
	var unavailable []QuoteItem
	for _, row := range rows {
		item := QuoteItem{
			ProductID:  row.ProductID,
			SKUID:      row.SKUID,
			Quantity:   row.Quantity,
			IsGift:     row.IsGift,
			GiftRuleID: row.GiftRuleID,
		}
		if !row.IsGift && !cartLineAvailable(row) {
			unavailable = append(unavailable, item)
			continue
		}
		if row.Product == nil {
			continue
		}
		items = append(items, item)
	}
	return items, unavailable, nil
}

func cartLineAvailable(row models.CartItem) bool {
	if row.Product == nil || !row.Product.IsActive {
		return false
	}
	if row.SKUID == 0 {
		return true
	}
	return row.SKU != nil && row.SKU.IsActive
}

// pruneUnavailable 按 SKU 删除已失效的普通行，失败只记录日志
func (s *CartService) pruneUnavailable(userID uint, lines []QuoteItem) {
	for _, line := range lines {
		if err := s.cartRepo.DeleteByUserProductSKU(userID, line.ProductID, line.SKUID); err != nil {
			logger.Warnw("cart_prune_failed",
				"user_id", userID,
				"product_id", line.ProductID,
				"sku_id", line.SKUID,
				"error", err,
			)
			continue
		}
		logger.Infow("cart_line_pruned", "user_id", userID, "product_id", line.ProductID, "sku_id", line.SKUID)
	}
}

// UpsertItem 添加或更新购物车普通行；未指定 SKU 时使用商品的第一个启用 SKU
func (s *CartService) UpsertItem(input UpsertCartItemInput) error {
	if input.UserID == 0 || input.ProductID == 0 || input.Quantity <= 0 {
		return ErrInvalidCartItem
	}
	product, err := s.productRepo.GetByID(input.ProductID, true)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotAvailable
	}

	skuID := input.SKUID
	if skuID == 0 {
		for _, sku := range product.SKUs {
			if sku.IsActive {
				skuID = sku.ID
				break
			}
		}
	} else {
		found := false
		for _, sku := range product.SKUs {
			if sku.ID == skuID {
				if !sku.IsActive {
					return ErrProductNotAvailable
				}
				found = true
				break
			}
		}
		if !found {
			return ErrSKUNotFound
		}
	}

	now := time.Now()
	item := &models.CartItem{
		UserID:    input.UserID,
		ProductID: input.ProductID,
		SKUID:     skuID,
		Quantity:  input.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cartRepo.Upsert(item); err != nil {
		return errors.Join(ErrCartUpdateFailed, err)
	}
	if _, unavailable, err := s.loadCart(input.UserID); err != nil {
		logger.Warnw("cart_prune_load_failed", "user_id", input.UserID, "error", err)
	} else {
		s.pruneUnavailable(input.UserID, unavailable)
	}
	return nil
}

// RemoveItem 删除购物车普通行；skuID 为 0 时删除该商品全部 SKU 的行
func (s *CartService) RemoveItem(userID, productID, skuID uint) error {
	if userID == 0 || productID == 0 {
		return ErrInvalidCartItem
	}
	var err error
	if skuID == 0 {
		err = s.cartRepo.DeleteByUserAndProduct(userID, productID)
	} else {
		err = s.cartRepo.DeleteByUserProductSKU(userID, productID, skuID)
	}
	if err != nil {
		return errors.Join(ErrCartUpdateFailed, err)
	}
	return nil
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	if userID == 0 {
		return ErrInvalidCartItem
	}
	return s.cartRepo.ClearByUser(userID)
}

// GiftMenu 按购物车普通行计算某个赠品活动的可选赠品
func (s *CartService) GiftMenu(ctx context.Context, userID, ruleID uint) ([]promotion.GiftOption, error) {
	if userID == 0 || ruleID == 0 {
		return nil, ErrInvalidCartItem
	}
	items, _, err := s.loadCart(userID)
	if err != nil {
		return nil, err
	}
	return s.promotionService.GiftMenu(ctx, paidItems(items), ruleID)
}

func paidItems(items []QuoteItem) []QuoteItem {
	paid := make([]QuoteItem, 0, len(items))
	for _, item := range items {
		if !item.IsGift {
			paid = append(paid, item)
		}
	}
	return paid
}

// ClaimGifts 在已达标的赠品活动下领取赠品，替换该活动此前领取的赠品行。
// 空选择表示放弃该活动的赠品。
func (s *CartService) ClaimGifts(ctx context.Context, input ClaimGiftsInput) (*CartQuote, error) {
	if input.UserID == 0 || input.RuleID == 0 {
		return nil, ErrInvalidCartItem
	}
	for _, selection := range input.Selections {
		if selection.VariantID == 0 || selection.Quantity <= 0 {
			return nil, errors.Join(ErrGiftSelectionInvalid, promotion.ErrGiftSelectionQuantity)
		}
	}

	items, unavailable, err := s.loadCart(input.UserID)
	if err != nil {
		return nil, err
	}
	s.pruneUnavailable(input.UserID, unavailable)
	// 只保留普通行参与门槛计算，原有赠品行不影响达标判断
	quote, err := s.promotionService.Quote(ctx, paidItems(items))
	if err != nil {
		return nil, err
	}
	if len(input.Selections) > 0 {
		if err := s.promotionService.ValidateGiftClaim(quote, input.RuleID, input.Selections); err != nil {
			return nil, err
		}
	}

	ids := make([]uint, 0, len(input.Selections))
	for _, selection := range input.Selections {
		ids = append(ids, selection.VariantID)
	}
	skus, err := s.skuRepo.ListByIDs(ids)
	if err != nil {
		return nil, errors.Join(ErrCartUpdateFailed, err)
	}
	productBySKU := make(map[uint]uint, len(skus))
	for _, sku := range skus {
		productBySKU[sku.ID] = sku.ProductID
	}

	err = s.cartRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		if err := repo.DeleteGiftsByRule(input.UserID, input.RuleID); err != nil {
			return err
		}
		now := time.Now()
		for _, selection := range input.Selections {
			productID, ok := productBySKU[selection.VariantID]
			if !ok {
				return ErrSKUNotFound
			}
			if err := repo.Upsert(&models.CartItem{
				UserID:     input.UserID,
				ProductID:  productID,
				SKUID:      selection.VariantID,
				IsGift:     true,
				GiftRuleID: input.RuleID,
				Quantity:   selection.Quantity,
				CreatedAt:  now,
				UpdatedAt:  now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSKUNotFound) {
			return nil, err
		}
		return nil, errors.Join(ErrCartUpdateFailed, err)
	}
	return s.GetCart(ctx, input.UserID)
}
