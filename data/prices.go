/*
- @Author: aztec
- @Date: 2024-01-16 15:45:41
- @Description: 单只股票的价格序列与基本面快照
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package data

import (
	"fmt"
	"slices"
	"time"

	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/shopspring/decimal"
)

// 价格观测。由外部采集，核心只读
type PriceObservation struct {
	Ticker    string
	Date      time.Time
	Close     decimal.Decimal
	MarketCap decimal.Decimal // 0表示缺失
	Volume    decimal.Decimal // 0表示缺失
}

// 基本面快照。以披露日期为准，另类数据（情绪、ESG等）也用快照表达
type FundamentalSnapshot struct {
	Ticker     string
	FilingDate time.Time
	Fields     map[string]decimal.Decimal
}

func (f FundamentalSnapshot) Field(name string) (float64, bool) {
	if v, ok := f.Fields[name]; ok {
		return v.InexactFloat64(), true
	}
	return 0, false
}

// 带日期的数值
type DatedValue struct {
	Date  time.Time
	Value float64
}

// 单只股票的历史数据
// Prices按日期严格递增，Fundamentals按披露日期递增
type History struct {
	Ticker       string
	Prices       []PriceObservation
	Fundamentals []FundamentalSnapshot
}

// 创建并校验历史数据。输入会被复制、排序，日期统一截断到UTC零点
func NewHistory(ticker string, prices []PriceObservation, fundamentals []FundamentalSnapshot) (*History, error) {
	if !common.ValidTicker(ticker) {
		return nil, fmt.Errorf("invalid ticker %q", ticker)
	}

	h := &History{Ticker: ticker}
	h.Prices = make([]PriceObservation, 0, len(prices))
	for _, p := range prices {
		if p.Ticker != ticker {
			return nil, fmt.Errorf("price ticker %s mismatch, want %s", p.Ticker, ticker)
		}
		if !p.Close.IsPositive() {
			return nil, fmt.Errorf("non-positive close for %s at %s", ticker, p.Date.Format(time.DateOnly))
		}
		p.Date = common.DateOf(p.Date)
		h.Prices = append(h.Prices, p)
	}
	slices.SortStableFunc(h.Prices, func(a, b PriceObservation) int {
		return a.Date.Compare(b.Date)
	})
	for i := 1; i < len(h.Prices); i++ {
		if h.Prices[i].Date.Equal(h.Prices[i-1].Date) {
			return nil, fmt.Errorf("duplicate price date %s for %s", h.Prices[i].Date.Format(time.DateOnly), ticker)
		}
	}

	h.Fundamentals = make([]FundamentalSnapshot, 0, len(fundamentals))
	for _, f := range fundamentals {
		if f.Ticker != ticker {
			return nil, fmt.Errorf("fundamental ticker %s mismatch, want %s", f.Ticker, ticker)
		}
		f.FilingDate = common.DateOf(f.FilingDate)
		h.Fundamentals = append(h.Fundamentals, f)
	}
	slices.SortStableFunc(h.Fundamentals, func(a, b FundamentalSnapshot) int {
		return a.FilingDate.Compare(b.FilingDate)
	})

	return h, nil
}

// 日期在价格序列中的位置
func (h *History) IndexOf(date time.Time) (int, bool) {
	return slices.BinarySearchFunc(h.Prices, date, func(p PriceObservation, t time.Time) int {
		return p.Date.Compare(t)
	})
}

func (h *History) Dates() []time.Time {
	dates := make([]time.Time, len(h.Prices))
	for i, p := range h.Prices {
		dates[i] = p.Date
	}
	return dates
}

// [start, end]内的价格下标范围，左闭右开
func (h *History) Span(start, end time.Time) (from, to int) {
	from, _ = h.IndexOf(start)
	to, found := h.IndexOf(end)
	if found {
		to++
	}
	return
}

func (h *History) CloseAt(date time.Time) (float64, bool) {
	if i, ok := h.IndexOf(date); ok {
		return h.Prices[i].Close.InexactFloat64(), true
	}
	return 0, false
}

func (h *History) CapAt(date time.Time) (float64, bool) {
	if i, ok := h.IndexOf(date); ok && h.Prices[i].MarketCap.IsPositive() {
		return h.Prices[i].MarketCap.InexactFloat64(), true
	}
	return 0, false
}

func (h *History) VolumeAt(date time.Time) (float64, bool) {
	if i, ok := h.IndexOf(date); ok && h.Prices[i].Volume.IsPositive() {
		return h.Prices[i].Volume.InexactFloat64(), true
	}
	return 0, false
}

// 截至date（含）已披露的快照数量。未来披露的数据绝不可见
func (h *History) filedBy(date time.Time) int {
	n, found := slices.BinarySearchFunc(h.Fundamentals, date, func(f FundamentalSnapshot, t time.Time) int {
		return f.FilingDate.Compare(t)
	})
	// 同一天可能有多条快照，全部可见
	if found {
		for n < len(h.Fundamentals) && h.Fundamentals[n].FilingDate.Equal(date) {
			n++
		}
	}
	return n
}

// 截至date已披露的全部快照（按披露日期升序）
func (h *History) FundamentalsAsOf(date time.Time) []FundamentalSnapshot {
	return h.Fundamentals[:h.filedBy(date)]
}

// 截至date最近一次披露的某字段值
func (h *History) FieldAsOf(date time.Time, field string) (float64, bool) {
	filed := h.FundamentalsAsOf(date)
	for i := len(filed) - 1; i >= 0; i-- {
		if v, ok := filed[i].Field(field); ok {
			return v, true
		}
	}
	return 0, false
}

// 截至date已披露的某字段序列（按披露日期升序）
func (h *History) FieldSeriesAsOf(date time.Time, field string) []DatedValue {
	filed := h.FundamentalsAsOf(date)
	series := []DatedValue{}
	for _, f := range filed {
		if v, ok := f.Field(field); ok {
			series = append(series, DatedValue{Date: f.FilingDate, Value: v})
		}
	}
	return series
}

// 截取[start, end]，基本面只保留end前已披露的部分
func (h *History) Slice(start, end time.Time) *History {
	from, to := h.Span(start, end)
	return &History{
		Ticker:       h.Ticker,
		Prices:       h.Prices[from:to],
		Fundamentals: h.FundamentalsAsOf(end),
	}
}
