/*
- @Author: aztec
- @Date: 2024-02-09 10:11:05
- @Description: 组合构建。按因子值排序，取头部和尾部分别组成高/低组合
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package evaluate

import (
	"math"
	"slices"
	"strings"

	"github.com/serenity0102/factor-modelling-mining/common"
)

type ranked struct {
	ticker string
	value  float64
}

// 按因子值降序排列截面中的有效值，值相同时按代码升序
func Rank(section common.SectionData) []string {
	rs := rankSection(section)
	ts := make([]string, len(rs))
	for i, r := range rs {
		ts[i] = r.ticker
	}
	return ts
}

func rankSection(section common.SectionData) []ranked {
	rs := make([]ranked, 0, len(section.Tickers))
	for i, t := range section.Tickers {
		if section.Valid[i] && !math.IsNaN(section.Values[i]) {
			rs = append(rs, ranked{t, section.Values[i]})
		}
	}
	slices.SortFunc(rs, func(a, b ranked) int {
		if a.value > b.value {
			return -1
		} else if a.value < b.value {
			return 1
		}
		return strings.Compare(a.ticker, b.ticker)
	})
	return rs
}

// 构建高/低组合
// 配置错误返回普通error；组为空返回InsufficientUniverse；市值缺失返回MissingData
func Construct(section common.SectionData, caps MarketCaps, cfg PortfolioConfig) (high, low Portfolio, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	if !section.Consistent() {
		err = common.NewConditionError(common.CondAlignment, "", section.Time, "section length mismatch")
		return
	}

	rs := rankSection(section)
	n := len(rs)
	nHigh := int(math.Floor(float64(n)*cfg.HighFraction + fractionEps))
	nLow := int(math.Floor(float64(n)*cfg.LowFraction + fractionEps))
	if nHigh == 0 || nLow == 0 {
		err = common.NewConditionError(common.CondInsufficientUniverse, "", section.Time,
			"%d valid values, high=%d low=%d", n, nHigh, nLow)
		return
	}

	if high, err = weigh(section, rs[:nHigh], caps, cfg.Weighting); err != nil {
		return
	}
	if low, err = weigh(section, rs[n-nLow:], caps, cfg.Weighting); err != nil {
		high = Portfolio{}
		return
	}
	return
}

func weigh(section common.SectionData, group []ranked, caps MarketCaps, w Weighting) (Portfolio, error) {
	p := Portfolio{Date: section.Time, Members: make([]Member, len(group))}
	switch w {
	case WeightingEqual:
		for i, r := range group {
			p.Members[i] = Member{Ticker: r.ticker, Weight: 1 / float64(len(group))}
		}
	case WeightingMarketCap:
		total := 0.0
		for i, r := range group {
			c, ok := caps.Cap(r.ticker, section.Time)
			if !ok || c <= 0 {
				return Portfolio{}, common.NewConditionError(common.CondMissingData, r.ticker, section.Time, "no market cap")
			}
			p.Members[i] = Member{Ticker: r.ticker, Weight: c}
			total += c
		}
		for i := range p.Members {
			p.Members[i].Weight /= total
		}
	}
	return p, nil
}
