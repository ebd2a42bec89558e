// Package promotion 促销规则计算引擎。
//
// 引擎只做纯计算：输入规则快照与购物车快照，输出命中规则、优惠金额与可选赠品。
// 不持有任何可变状态，也不读取时钟，可被多个请求并发调用。
package promotion

import "github.com/shopspring/decimal"

// DefaultCurrencyScale 默认金额精度（小数位数）
const DefaultCurrencyScale int32 = 2

// Engine 促销计算引擎
type Engine struct {
	scale int32
}

// Option 引擎配置项
type Option func(*Engine)

// WithCurrencyScale 设置金额四舍五入的小数位数
func WithCurrencyScale(scale int32) Option {
	return func(e *Engine) {
		if scale >= 0 {
			e.scale = scale
		}
	}
}

// New 创建引擎
func New(opts ...Option) *Engine {
	e := &Engine{scale: DefaultCurrencyScale}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Scale 金额精度
func (e *Engine) Scale() int32 {
	return e.scale
}

// RoundMoney 按引擎精度四舍五入（半数向上，输入非负）
func (e *Engine) RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(e.scale)
}
