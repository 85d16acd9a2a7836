/*
- @Author: aztec
- @Date: 2024-01-29 10:37:00
- @Description: 模拟一个持仓，记录开仓价格，用于止损止盈
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package backtest

import "time"

type position struct {
	Ticker     string
	Weight     float64
	EntryPrice float64
	EntryTime  time.Time
	Closed     bool // 被止损/止盈平掉，直到下次调仓
}

// 开仓以来按方向调整后的收益率
func (p *position) profitRatio(price float64) float64 {
	r := price/p.EntryPrice - 1
	if p.Weight < 0 {
		return -r
	}
	return r
}
