package promotion

import "errors"

var (
	ErrUnknownKind   = errors.New("unknown promotion kind")
	ErrUnknownScope  = errors.New("unknown promotion scope")
	ErrUnknownAction = errors.New("unknown promotion action")
	ErrUnknownUnit   = errors.New("unknown promotion threshold unit")

	ErrScopeEmpty          = errors.New("promotion scope has no targets")
	ErrActionValueInvalid  = errors.New("promotion action value invalid")
	ErrActionUnsupported   = errors.New("promotion action unsupported for kind")
	ErrThresholdInvalid    = errors.New("promotion threshold invalid")
	ErrRepeatableUnit      = errors.New("repeatable discount requires amount threshold")
	ErrRepeatableThreshold = errors.New("repeatable discount requires positive threshold")
	ErrRepeatCapInvalid    = errors.New("promotion max repeat count invalid")
	ErrGiftPoolEmpty       = errors.New("gift promotion has empty gift pool")
	ErrGiftCostInvalid     = errors.New("gift unit cost must be positive")
	ErrWindowInvalid       = errors.New("promotion window ends before it starts")

	ErrGiftRuleNotQualified  = errors.New("gift promotion not qualified")
	ErrGiftNotInPool         = errors.New("gift variant not in pool")
	ErrGiftQuantityExceeded  = errors.New("gift quantity exceeds affordable count")
	ErrGiftCountCapExceeded  = errors.New("gift count exceeds rule cap")
	ErrGiftSelectionNotGift  = errors.New("promotion does not award gifts")
	ErrGiftSelectionQuantity = errors.New("gift selection quantity must be positive")
)
