/*
- @Author: aztec
- @Date: 2024-01-18 10:20:19
- @Description: 因子库的数据定义
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factorlib

import (
	"time"

	"github.com/serenity0102/factor-modelling-mining/data"
	"github.com/serenity0102/factor-modelling-mining/factor"
)

var logPrefix = "factorlib"

// 基本面/另类数据字段名
const (
	FieldBookValuePerShare  = "book_value_per_share"
	FieldEPS                = "eps"
	FieldEarningsGrowth     = "earnings_growth"
	FieldCurrentAssets      = "current_assets"
	FieldCurrentLiabilities = "current_liabilities"
	FieldCash               = "cash"
	FieldTotalDebt          = "total_debt"
	FieldShareholderEquity  = "shareholder_equity"
	FieldEBIT               = "ebit"
	FieldInterestExpense    = "interest_expense"
	FieldRevenue            = "revenue"
	FieldCOGS               = "cogs"
	FieldInventory          = "inventory"
	FieldBoardAge           = "board_age"
	FieldEnvRating          = "env_rating"
	FieldExecComp           = "exec_comp"
	FieldSentiment          = "sentiment"
)

// 因子名
const (
	NameRSI               = "RSI"
	NameROC               = "ROC"
	NameTradingVolume     = "TradingVolume"
	NamePB                = "PB"
	NamePE                = "PE"
	NamePEG               = "PEG"
	NameCurrentRatio      = "CurrentRatio"
	NameCashRatio         = "CashRatio"
	NameDebtToEquity      = "DebtToEquity"
	NameInterestCoverage  = "InterestCoverage"
	NameGrossProfitMargin = "GrossProfitMargin"
	NameInventoryTurnover = "InventoryTurnover"
	NameRevenueGrowth     = "RevenueGrowth"
	NameBoardAge          = "BoardAge"
	NameEnvRating         = "EnvRating"
	NameExecCompToRevenue = "ExecCompToRevenue"
	NameSMB               = "SMB"
	NameHML               = "HML"
	NameAvgSentiment      = "AVGSENT"
	NameNewSentiment      = "NEWSENT"
)

// 默认窗口
const (
	DefaultRSIWindow       = 14
	DefaultROCWindow       = 20
	DefaultVolumeWindow    = 20
	DefaultGrowthWindow    = 4
	DefaultSentimentWindow = 14
)

// 单日取值函数。i为h.Prices中的下标，返回false表示无定义
type fnValue func(h *data.History, i int) (float64, bool)

// 分母为0时无定义
func ratio(num, den float64) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// 两个基本面字段之比
func fieldRatio(numField, denField string) fnValue {
	return func(h *data.History, i int) (float64, bool) {
		d := h.Prices[i].Date
		num, ok := h.FieldAsOf(d, numField)
		if !ok {
			return 0, false
		}
		den, ok := h.FieldAsOf(d, denField)
		if !ok {
			return 0, false
		}
		return ratio(num, den)
	}
}

// 单个基本面字段
func fieldValue(field string) fnValue {
	return func(h *data.History, i int) (float64, bool) {
		return h.FieldAsOf(h.Prices[i].Date, field)
	}
}

// 收盘价与基本面字段之比
func closeOver(field string) fnValue {
	return func(h *data.History, i int) (float64, bool) {
		den, ok := h.FieldAsOf(h.Prices[i].Date, field)
		if !ok {
			return 0, false
		}
		return ratio(h.Prices[i].Close.InexactFloat64(), den)
	}
}

// 逐日计算[start, end]内的因子值
// smoothing>1时取最近smoothing个原始值的均值，其中任一无定义则结果无定义
func computeSeries(meta factor.Meta, ticker string, start, end time.Time, h *data.History, smoothing int, fn fnValue) []factor.Value {
	if h == nil {
		return nil
	}

	from, to := h.Span(start, end)
	if from >= to {
		return []factor.Value{}
	}

	// 平滑需要区间之前的原始值
	rawFrom := from
	if smoothing > 1 {
		rawFrom = max(0, from-smoothing+1)
	}
	raw := make([]float64, to-rawFrom)
	ok := make([]bool, to-rawFrom)
	for i := rawFrom; i < to; i++ {
		raw[i-rawFrom], ok[i-rawFrom] = fn(h, i)
	}

	values := make([]factor.Value, 0, to-from)
	for i := from; i < to; i++ {
		v := factor.Value{
			Factor: meta.Name,
			Type:   meta.Type,
			Ticker: ticker,
			Date:   h.Prices[i].Date,
		}

		k := i - rawFrom
		if smoothing > 1 {
			if k+1 >= smoothing {
				sum := 0.0
				valid := true
				for j := k - smoothing + 1; j <= k; j++ {
					if !ok[j] {
						valid = false
						break
					}
					sum += raw[j]
				}
				if valid {
					v.V, v.Valid = sum/float64(smoothing), true
				}
			}
		} else if ok[k] {
			v.V, v.Valid = raw[k], true
		}
		values = append(values, v)
	}

	return values
}
