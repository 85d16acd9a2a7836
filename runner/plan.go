/*
- @Author: aztec
- @Date: 2024-02-14 10:32:55
- @Description: 把一个任务拆成若干独立的计算单元
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package runner

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/serenity0102/factor-modelling-mining/analysis"
	"github.com/serenity0102/factor-modelling-mining/data"
	"github.com/serenity0102/factor-modelling-mining/factorlib/basicinfo"
)

// 单元ID的命名空间，保证相同单元得到相同ID
var jobNamespace = uuid.MustParse("6f1c9d3e-8a52-4b7e-9d0c-2f4e5a6b7c81")

// 一个计算单元，以及它使用的股票
type Job struct {
	ID      string
	Unit    analysis.Unit
	Tickers []string
}

// 名称、区间、股票与参数指纹都参与，参数变化后不会被当作已完成跳过
func jobID(unit analysis.Unit, tickers []string) string {
	key := fmt.Sprintf("%s|%s|%s|%s|%s", unit.Factor, unit.Start.Format(time.DateOnly), unit.End.Format(time.DateOnly),
		strings.Join(tickers, ","), unit.Fingerprint())
	return uuid.NewSHA1(jobNamespace, []byte(key)).String()
}

// 按年拆分时间区间
func splitYears(start, end time.Time) [][2]time.Time {
	ranges := [][2]time.Time{}
	for s := start; !s.After(end); {
		e := time.Date(s.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
		if e.After(end) {
			e = end
		}
		ranges = append(ranges, [2]time.Time{s, e})
		s = e.AddDate(0, 0, 1)
	}
	return ranges
}

func splitTickers(tickers []string, n int) [][]string {
	chunks := [][]string{}
	for i := 0; i < len(tickers); i += n {
		chunks = append(chunks, tickers[i:min(i+n, len(tickers))])
	}
	return chunks
}

// 生成计算单元。allTickers为数据源中的全部股票，配置未指定股票时使用
func Plan(lc *LaunchConfig, allTickers []string) []Job {
	tickers := slices.Clone(lc.Tickers)
	if len(tickers) == 0 {
		tickers = slices.Clone(allTickers)
	}
	slices.Sort(tickers)

	ranges := [][2]time.Time{{lc.start, lc.end}}
	tickerGroups := [][]string{tickers}
	switch lc.SplitBy {
	case SplitYears:
		ranges = splitYears(lc.start, lc.end)
	case SplitTickers:
		tickerGroups = splitTickers(tickers, lc.TickersPerUnit)
	}

	jobs := []Job{}
	for _, fj := range lc.Factors {
		for _, rg := range ranges {
			for _, tg := range tickerGroups {
				unit := analysis.NewUnit(fj.Name, rg[0], rg[1])
				unit.FactorConfig = fj.Config
				unit.Components = fj.Components
				unit.Portfolio = lc.Portfolio
				unit.Test = lc.Test
				unit.Backtest = lc.Backtest
				unit.Strategies = lc.Strategies
				jobs = append(jobs, Job{ID: jobID(unit, tg), Unit: unit, Tickers: tg})
			}
		}
	}
	return jobs
}

// 确定任务使用的股票：配置的股票或数据源全部股票，再按起始日的市值/成交量筛选
func SelectTickers(lc *LaunchConfig, src basicinfo.Source) ([]string, error) {
	tickers := slices.Clone(lc.Tickers)
	if len(tickers) == 0 {
		tickers = src.Tickers()
	}
	if lc.Select.By == SelectNone {
		return tickers, nil
	}

	u, err := src.Universe(tickers, lc.start, lc.end)
	if err != nil {
		return nil, fmt.Errorf("select tickers: %w", err)
	}
	dates := u.DatesIn(lc.start, lc.end)
	if len(dates) == 0 {
		return nil, fmt.Errorf("select tickers: no trading date in range")
	}

	switch lc.Select.By {
	case SelectMarketCap:
		return data.SelectTickersByMarketCap(u, dates[0], lc.Select.Desc, lc.Select.Limit), nil
	default:
		return data.SelectTickersByVolume(u, dates[0], lc.Select.Desc, lc.Select.Limit), nil
	}
}
