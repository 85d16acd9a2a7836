/*
- @Author: aztec
- @Date: 2024-02-12 16:02:41
- @Description: 回测结果展示
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package backtest

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/table"
)

func (r Result) ToTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%s %s ~ %s", r.StrategyID, r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly)))
	t.AppendHeader(table.Row{"metric", "value"})
	t.AppendRow(table.Row{"periods", len(r.PeriodReturns)})
	t.AppendRow(table.Row{"total return", fmt.Sprintf("%.2f%%", r.TotalReturn*100)})
	t.AppendRow(table.Row{"annualized return", fmt.Sprintf("%.2f%%", r.AnnualizedReturn*100)})
	t.AppendRow(table.Row{"volatility", fmt.Sprintf("%.2f%%", r.Volatility*100)})
	t.AppendRow(table.Row{"sharpe", fmt.Sprintf("%.3f", r.SharpeRatio)})
	t.AppendRow(table.Row{"max drawdown", fmt.Sprintf("%.2f%%", r.MaxDrawdown*100)})
	t.AppendRow(table.Row{"win rate", fmt.Sprintf("%.2f%%", r.WinRate*100)})
	t.AppendRow(table.Row{"turnover", fmt.Sprintf("%.4f", r.Turnover)})
	t.AppendRow(table.Row{"gaps", len(r.Gaps)})
	t.AppendRow(table.Row{"rebalances", len(r.Rebalances)})
	buys, sells, traded := r.DealStats()
	t.AppendRow(table.Row{"deals", fmt.Sprintf("%d buys / %d sells, traded %.4f", buys, sells, traded)})
	gross, net := r.AvgExposure()
	t.AppendRow(table.Row{"exposure", fmt.Sprintf("gross %.2f, net %.2f", gross, net)})
	return t
}

// 买卖笔数与累计成交权重
func (r Result) DealStats() (buys, sells int, traded float64) {
	for _, d := range r.Deals {
		if d.IsSell() {
			sells++
		} else {
			buys++
		}
		traded += d.Amount()
	}
	return
}

// 成功调仓后的平均总敞口与净敞口
func (r Result) AvgExposure() (gross, net float64) {
	n := 0
	for _, rb := range r.Rebalances {
		if rb.OK {
			gross += rb.Gross
			net += rb.Net
			n++
		}
	}
	if n > 0 {
		gross /= float64(n)
		net /= float64(n)
	}
	return
}
