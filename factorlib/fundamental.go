/*
- @Author: aztec
- @Date: 2024-02-07 10:41:52
- @Description: 财务健康、财务风险、经营、成长类因子
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factorlib

import (
	"github.com/serenity0102/factor-modelling-mining/data"
	"github.com/serenity0102/factor-modelling-mining/factor"
)

var metaCurrentRatio = factor.Meta{
	Name:        NameCurrentRatio,
	Type:        factor.TypeFinancialHealth,
	Description: "Current assets to current liabilities",
}

var metaCashRatio = factor.Meta{
	Name:        NameCashRatio,
	Type:        factor.TypeFinancialHealth,
	Description: "Cash to current liabilities",
}

var metaDebtToEquity = factor.Meta{
	Name:        NameDebtToEquity,
	Type:        factor.TypeFinancialRisk,
	Description: "Total debt to shareholder equity",
}

var metaInterestCoverage = factor.Meta{
	Name:        NameInterestCoverage,
	Type:        factor.TypeFinancialRisk,
	Description: "EBIT to interest expense",
}

var metaGrossProfitMargin = factor.Meta{
	Name:        NameGrossProfitMargin,
	Type:        factor.TypeOperational,
	Description: "Revenue less cost of goods sold, over revenue",
}

var metaInventoryTurnover = factor.Meta{
	Name:        NameInventoryTurnover,
	Type:        factor.TypeOperational,
	Description: "Cost of goods sold over the average of the latest two inventory filings",
}

var metaRevenueGrowth = factor.Meta{
	Name:        NameRevenueGrowth,
	Type:        factor.TypeGrowth,
	Description: "Revenue growth versus the filing window filings earlier",
}

func grossProfitMargin(h *data.History, i int) (float64, bool) {
	d := h.Prices[i].Date
	rev, ok := h.FieldAsOf(d, FieldRevenue)
	if !ok {
		return 0, false
	}
	cogs, ok := h.FieldAsOf(d, FieldCOGS)
	if !ok {
		return 0, false
	}
	return ratio(rev-cogs, rev)
}

// 存货少于两期披露时无定义
func inventoryTurnover(h *data.History, i int) (float64, bool) {
	d := h.Prices[i].Date
	cogs, ok := h.FieldAsOf(d, FieldCOGS)
	if !ok {
		return 0, false
	}
	inv := h.FieldSeriesAsOf(d, FieldInventory)
	if len(inv) < 2 {
		return 0, false
	}
	avg := (inv[len(inv)-1].Value + inv[len(inv)-2].Value) / 2
	return ratio(cogs, avg)
}

// 与window期之前的营收相比
func revenueGrowth(window int) fnValue {
	return func(h *data.History, i int) (float64, bool) {
		rev := h.FieldSeriesAsOf(h.Prices[i].Date, FieldRevenue)
		if len(rev) <= window {
			return 0, false
		}
		last := rev[len(rev)-1].Value
		prev := rev[len(rev)-1-window].Value
		return ratio(last-prev, prev)
	}
}
