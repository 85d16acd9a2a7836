/*
- @Author: aztec
- @Date: 2024-01-31 17:54:50
- @Description: 成交记录
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package backtest

import (
	"time"

	"github.com/shopspring/decimal"
)

type DealReason string

const (
	DealRebalance  DealReason = "rebalance"
	DealStopLoss   DealReason = "stop_loss"
	DealTakeProfit DealReason = "take_profit"
)

// 一次权重变化
type Deal struct {
	Time   time.Time
	Ticker string
	Price  decimal.Decimal
	From   float64 // 变化前权重
	To     float64 // 变化后权重
	Reason DealReason
}

func (d Deal) IsSell() bool {
	return d.To < d.From
}

// 权重变化量的绝对值
func (d Deal) Amount() float64 {
	if d.To > d.From {
		return d.To - d.From
	}
	return d.From - d.To
}
