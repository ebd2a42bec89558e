package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("weak password")

	ErrCaptchaRequired    = errors.New("captcha required")
	ErrCaptchaInvalid     = errors.New("captcha invalid")
	ErrCaptchaUnavailable = errors.New("captcha unavailable")

	ErrCategoryInvalid     = errors.New("category invalid")
	ErrCategorySlugExists  = errors.New("category slug exists")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNotAvailable = errors.New("product not available")
	ErrSKUNotFound         = errors.New("sku not found")
	ErrInvalidCartItem     = errors.New("invalid cart item")
	ErrCartFetchFailed     = errors.New("cart fetch failed")
	ErrCartUpdateFailed    = errors.New("cart update failed")

	ErrPromotionNotFound     = errors.New("promotion not found")
	ErrPromotionInvalid      = errors.New("promotion invalid")
	ErrPromotionFetchFailed  = errors.New("promotion fetch failed")
	ErrPromotionCreateFailed = errors.New("promotion create failed")
	ErrPromotionUpdateFailed = errors.New("promotion update failed")
	ErrPromotionDeleteFailed = errors.New("promotion delete failed")
	ErrGiftSelectionInvalid  = errors.New("gift selection invalid")
)
