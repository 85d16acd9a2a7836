/*
- @Author: aztec
- @Date: 2024-02-09 11:30:47
- @Description: 因子收益序列。每期重新按组合权重计算，不考虑持仓漂移
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package evaluate

import (
	"iter"
	"time"

	"github.com/serenity0102/factor-modelling-mining/common"
)

// 组合从from持有到to的收益
func portfolioReturn(p Portfolio, from, to time.Time, prices PriceSource) (float64, error) {
	r := 0.0
	for _, m := range p.Members {
		p0, ok0 := prices.Close(m.Ticker, from)
		p1, ok1 := prices.Close(m.Ticker, to)
		if !ok0 || !ok1 {
			missing := to
			if !ok0 {
				missing = from
			}
			return 0, common.NewConditionError(common.CondMissingData, m.Ticker, missing, "no close price")
		}
		r += m.Weight * (p1/p0 - 1)
	}
	return r, nil
}

// 因子收益序列
// pairs[i]在其日期d构建，获得d之后下一个交易日的收益。最后一个交易日构建的组合没有收益
// 某期成员缺价格时，该期产出一个MissingData错误，迭代继续
// 收益日晚于end的期被丢弃，end为零值时不限制
// 序列惰性求值，可重复遍历
func FactorReturns(factor string, pairs []PortfolioPair, prices PriceSource, end time.Time) iter.Seq2[FactorReturnPoint, error] {
	return func(yield func(FactorReturnPoint, error) bool) {
		for _, pair := range pairs {
			next, ok := nextWithin(prices, pair.Date, end)
			if !ok {
				continue
			}

			pt := FactorReturnPoint{Factor: factor, Date: next}
			hr, err := portfolioReturn(pair.High, pair.Date, next, prices)
			if err != nil {
				if !yield(pt, err) {
					return
				}
				continue
			}
			lr, err := portfolioReturn(pair.Low, pair.Date, next, prices)
			if err != nil {
				if !yield(pt, err) {
					return
				}
				continue
			}

			pt.HighReturn = hr
			pt.LowReturn = lr
			pt.Return = hr - lr
			if !yield(pt, nil) {
				return
			}
		}
	}
}

// d之后的下一交易日，超出end视为不存在
func nextWithin(prices PriceSource, d, end time.Time) (time.Time, bool) {
	next, ok := prices.NextDate(d)
	if !ok || (!end.IsZero() && next.After(end)) {
		return time.Time{}, false
	}
	return next, true
}

// 收集序列，分为有效点与缺口
func Collect(seq iter.Seq2[FactorReturnPoint, error]) (points []FactorReturnPoint, gaps []error) {
	points = []FactorReturnPoint{}
	for pt, err := range seq {
		if err != nil {
			gaps = append(gaps, err)
		} else {
			points = append(points, pt)
		}
	}
	return
}

// 转换为带日期的收益序列，用于回归
func ToDatedReturns(points []FactorReturnPoint) []DatedReturn {
	rs := make([]DatedReturn, len(points))
	for i, p := range points {
		rs[i] = DatedReturn{Date: p.Date, Value: p.Return}
	}
	return rs
}
