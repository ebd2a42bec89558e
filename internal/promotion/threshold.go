package promotion

import (
	"time"

	"github.com/shopspring/decimal"
)

// Qualification 门槛计算结果
type Qualification struct {
	QualifyingTotal decimal.Decimal
	IsQualified     bool
	// Lines 命中范围且非赠品的购物车行下标
	Lines []int
}

// Empty 是否没有任何命中行
func (q Qualification) Empty() bool {
	return len(q.Lines) == 0
}

// Qualify 计算规则的门槛累计值及是否达标；规则未生效时视为空集合
func Qualify(rule Rule, lines []CartLine, now time.Time) Qualification {
	if !rule.IsValidAt(now) {
		return Qualification{QualifyingTotal: decimal.Zero}
	}
	return qualify(rule, lines)
}

func qualify(rule Rule, lines []CartLine) Qualification {
	matched := scopedLines(rule.Scope, lines)
	var total decimal.Decimal
	switch rule.ThresholdUnit {
	case UnitQuantity:
		total = sumQuantity(lines, matched)
	case UnitAmount:
		total = sumAmount(lines, matched)
	default:
		total = decimal.Zero
	}
	return Qualification{
		QualifyingTotal: total,
		IsQualified:     len(matched) > 0 && total.GreaterThanOrEqual(rule.MinThreshold),
		Lines:           matched,
	}
}

// scopedLines 过滤出命中范围的非赠品行
func scopedLines(scope Scope, lines []CartLine) []int {
	matched := make([]int, 0, len(lines))
	for i := range lines {
		if lines[i].IsGift {
			continue
		}
		if !MatchesScope(scope, lines[i].Item) {
			continue
		}
		matched = append(matched, i)
	}
	return matched
}

func sumQuantity(lines []CartLine, idx []int) decimal.Decimal {
	var total int64
	for _, i := range idx {
		total += int64(lines[i].Quantity)
	}
	return decimal.NewFromInt(total)
}

func sumAmount(lines []CartLine, idx []int) decimal.Decimal {
	total := decimal.Zero
	for _, i := range idx {
		total = total.Add(lines[i].Subtotal())
	}
	return total
}
