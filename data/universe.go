/*
- @Author: aztec
- @Date: 2024-02-05 14:20:11
- @Description: 股票池。一组股票的历史数据以及统一的交易日历
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/serenity0102/factor-modelling-mining/common"
)

// 股票池。创建后只读，可被多个goroutine共享
type Universe struct {
	tickers []string
	hists   map[string]*History
	dates   []time.Time // 所有股票交易日的并集，升序
}

func NewUniverse(hists ...*History) (*Universe, error) {
	u := &Universe{hists: make(map[string]*History, len(hists))}
	dateSet := map[time.Time]struct{}{}
	for _, h := range hists {
		if h == nil {
			continue
		}
		if _, ok := u.hists[h.Ticker]; ok {
			return nil, fmt.Errorf("duplicate ticker %s", h.Ticker)
		}
		u.hists[h.Ticker] = h
		u.tickers = append(u.tickers, h.Ticker)
		for _, p := range h.Prices {
			dateSet[p.Date] = struct{}{}
		}
	}

	slices.Sort(u.tickers)
	u.dates = make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		u.dates = append(u.dates, d)
	}
	slices.SortFunc(u.dates, func(a, b time.Time) int { return a.Compare(b) })
	return u, nil
}

// 股票列表（按代码升序）
func (u *Universe) Tickers() []string {
	return slices.Clone(u.tickers)
}

func (u *Universe) Len() int {
	return len(u.tickers)
}

func (u *Universe) History(ticker string) (*History, bool) {
	h, ok := u.hists[ticker]
	return h, ok
}

// 交易日历
func (u *Universe) Dates() []time.Time {
	return slices.Clone(u.dates)
}

// [start, end]内的交易日
func (u *Universe) DatesIn(start, end time.Time) []time.Time {
	dates := []time.Time{}
	for _, d := range u.dates {
		if common.InRange(d, start, end) {
			dates = append(dates, d)
		}
	}
	return dates
}

func (u *Universe) dateIndex(date time.Time) (int, bool) {
	return slices.BinarySearchFunc(u.dates, date, func(a, b time.Time) int { return a.Compare(b) })
}

// 日历上的前一个交易日
func (u *Universe) PrevDate(date time.Time) (time.Time, bool) {
	i, _ := u.dateIndex(date)
	if i > 0 {
		return u.dates[i-1], true
	}
	return time.Time{}, false
}

// 日历上的后一个交易日
func (u *Universe) NextDate(date time.Time) (time.Time, bool) {
	i, found := u.dateIndex(date)
	if found {
		i++
	}
	if i < len(u.dates) {
		return u.dates[i], true
	}
	return time.Time{}, false
}

func (u *Universe) Close(ticker string, date time.Time) (float64, bool) {
	if h, ok := u.hists[ticker]; ok {
		return h.CloseAt(date)
	}
	return 0, false
}

func (u *Universe) Cap(ticker string, date time.Time) (float64, bool) {
	if h, ok := u.hists[ticker]; ok {
		return h.CapAt(date)
	}
	return 0, false
}

func (u *Universe) Volume(ticker string, date time.Time) (float64, bool) {
	if h, ok := u.hists[ticker]; ok {
		return h.VolumeAt(date)
	}
	return 0, false
}

// 单日收益率 price[t]/price[t-1]-1，t-1为日历上的前一交易日
func (u *Universe) Return(ticker string, date time.Time) (float64, bool) {
	prev, ok := u.PrevDate(date)
	if !ok {
		return 0, false
	}
	p0, ok0 := u.Close(ticker, prev)
	p1, ok1 := u.Close(ticker, date)
	if !ok0 || !ok1 {
		return 0, false
	}
	return p1/p0 - 1, true
}

// 指定日期上的收益率序列，缺失的日期不出现在结果中
func (u *Universe) ReturnSeries(ticker string, dates []time.Time) []DatedValue {
	rs := make([]DatedValue, 0, len(dates))
	for _, d := range dates {
		if r, ok := u.Return(ticker, d); ok {
			rs = append(rs, DatedValue{Date: d, Value: r})
		}
	}
	return rs
}

// 股票池指纹：排序后的代码拼接再取sha256
func (u *Universe) Hash() string {
	sum := sha256.Sum256([]byte(strings.Join(u.tickers, ",")))
	return hex.EncodeToString(sum[:])
}

// 取子集。不存在的代码返回错误
func (u *Universe) Subset(tickers []string) (*Universe, error) {
	hists := make([]*History, 0, len(tickers))
	for _, t := range tickers {
		h, ok := u.hists[t]
		if !ok {
			return nil, fmt.Errorf("ticker %s not in universe", t)
		}
		hists = append(hists, h)
	}
	return NewUniverse(hists...)
}

// 截取[start, end]区间，基本面取end时点可见的部分
func (u *Universe) Slice(start, end time.Time) (*Universe, error) {
	hists := make([]*History, 0, len(u.tickers))
	for _, t := range u.tickers {
		hists = append(hists, u.hists[t].Slice(start, end))
	}
	return NewUniverse(hists...)
}

// 宽表形式的收盘价：行为日期，列为股票，缺失为NaN
func (u *Universe) PriceFrame(start, end time.Time) dataframe.DataFrame {
	dates := u.DatesIn(start, end)
	dateStrs := make([]string, len(dates))
	for i, d := range dates {
		dateStrs[i] = d.Format(time.DateOnly)
	}

	cols := []series.Series{series.New(dateStrs, series.String, "date")}
	for _, t := range u.tickers {
		values := make([]float64, len(dates))
		for i, d := range dates {
			if px, ok := u.Close(t, d); ok {
				values[i] = px
			} else {
				values[i] = math.NaN()
			}
		}
		cols = append(cols, series.New(values, series.Float, t))
	}
	return dataframe.New(cols...)
}
