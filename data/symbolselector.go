/*
- @Author: aztec
- @Date: 2024-01-15 17:58:57
- @Description: 股票选取器。根据一些列条件，从股票池中选取一组股票作为后续处理的目标
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package data

import (
	"slices"
	"strings"
	"time"

	"github.com/serenity0102/factor-modelling-mining/common"
)

type rankedTicker struct {
	ticker string
	value  float64
}

func selectBy(u *Universe, date time.Time, desc bool, limit int, fnValue func(string, time.Time) (float64, bool)) []string {
	ranked := []rankedTicker{}
	for _, t := range u.tickers {
		if v, ok := fnValue(t, date); ok {
			ranked = append(ranked, rankedTicker{ticker: t, value: v})
		}
	}

	// 数值相同时按代码排序，保证结果确定
	slices.SortFunc(ranked, func(a, b rankedTicker) int {
		if a.value < b.value {
			return valueIf(desc, 1, -1)
		} else if a.value > b.value {
			return valueIf(desc, -1, 1)
		} else {
			return strings.Compare(a.ticker, b.ticker)
		}
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	tickers := make([]string, 0, len(ranked))
	for _, r := range ranked {
		tickers = append(tickers, r.ticker)
	}
	return tickers
}

// 根据某日市值选取股票
func SelectTickersByMarketCap(u *Universe, date time.Time, desc bool, limit int) []string {
	logPrefix := "SelectTickersByMarketCap"
	tickers := selectBy(u, date, desc, limit, u.Cap)
	common.LogNormal(logPrefix, "%d of %d selected at %s, desc=%v, limit=%d", len(tickers), u.Len(), date.Format(time.DateOnly), desc, limit)
	return tickers
}

// 根据某日成交量选取股票
func SelectTickersByVolume(u *Universe, date time.Time, desc bool, limit int) []string {
	logPrefix := "SelectTickersByVolume"
	tickers := selectBy(u, date, desc, limit, u.Volume)
	common.LogNormal(logPrefix, "%d of %d selected at %s, desc=%v, limit=%d", len(tickers), u.Len(), date.Format(time.DateOnly), desc, limit)
	return tickers
}

func valueIf[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
