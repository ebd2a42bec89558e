package promotion

import (
	"math"

	"github.com/shopspring/decimal"
)

// ComputeDiscount 计算已达标规则的优惠金额。
// 赠品规则返回 0；配置错误返回 0 与对应错误，调用方应跳过该规则。
func (e *Engine) ComputeDiscount(rule Rule, qualifyingTotal decimal.Decimal, lines []CartLine) (decimal.Decimal, error) {
	amount, _, err := e.computeDiscount(rule, qualifyingTotal, lines)
	return amount, err
}

// computeDiscount 返回优惠金额与重复次数
func (e *Engine) computeDiscount(rule Rule, qualifyingTotal decimal.Decimal, lines []CartLine) (decimal.Decimal, int, error) {
	switch rule.Action.Type {
	case ActionPercent:
		base := qualifyingTotal
		if rule.ThresholdUnit == UnitQuantity {
			// 件数门槛不能直接乘百分比，按同一批命中行重新汇总金额
			base = sumAmount(lines, scopedLines(rule.Scope, lines))
		}
		discount := base.Mul(rule.Action.Value).Div(hundred)
		return e.RoundMoney(discount), 1, nil
	case ActionFixedAmount:
		if !rule.IsRepeatable {
			return e.RoundMoney(rule.Action.Value), 1, nil
		}
		if rule.ThresholdUnit != UnitAmount {
			return decimal.Zero, 0, ErrRepeatableUnit
		}
		if !rule.MinThreshold.IsPositive() {
			return decimal.Zero, 0, ErrRepeatableThreshold
		}
		times := repeatTimes(qualifyingTotal, rule.MinThreshold, rule.MaxRepeatCount)
		discount := rule.Action.Value.Mul(decimal.NewFromInt(int64(times)))
		return e.RoundMoney(discount), times, nil
	case ActionGift:
		return decimal.Zero, 0, nil
	default:
		return decimal.Zero, 0, ErrUnknownAction
	}
}

// repeatTimes floor(total / threshold)，受 maxCount 限制；threshold 非正时为 0
func repeatTimes(total, threshold decimal.Decimal, maxCount *int) int {
	if !threshold.IsPositive() || !total.IsPositive() {
		return 0
	}
	times := floorDiv(total, threshold)
	if maxCount != nil && times > *maxCount {
		times = *maxCount
	}
	if times < 0 {
		return 0
	}
	return times
}

// floorDiv 非负数整除，结果超出 int 范围时截断为最大值
func floorDiv(numerator, denominator decimal.Decimal) int {
	quotient, _ := numerator.QuoRem(denominator, 0)
	if !quotient.IsPositive() {
		return 0
	}
	if quotient.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return math.MaxInt32
	}
	return int(quotient.IntPart())
}
