/*
- @Author: aztec
- @Date: 2024-01-18 10:39:03
- @Description: 基础信息源。提供股票的价格与基本面历史
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package basicinfo

import (
	"fmt"
	"slices"
	"time"

	"github.com/serenity0102/factor-modelling-mining/data"
)

type Source interface {
	// 支持的字段名。价格字段为close/market_cap/volume，其余为基本面字段
	FieldNames() []string

	// 支持的股票列表（升序）
	Tickers() []string

	// 某股票在[start, end]内的价格，以及end之前已披露的全部基本面
	History(ticker string, start, end time.Time) (*data.History, bool)

	// 一组股票在[start, end]内的数据。tickers为空表示全部
	Universe(tickers []string, start, end time.Time) (*data.Universe, error)
}

const (
	KindCSV    = "csv"
	KindMemory = "memory"
)

// 按类型创建数据源。csv需要价格文件路径，基本面文件可选
func NewSource(kind string, pricePath, fundamentalPath string) (Source, error) {
	switch kind {
	case KindCSV:
		return LoadSourceCSV(pricePath, fundamentalPath)
	default:
		return nil, fmt.Errorf("invalid source kind %q", kind)
	}
}

// 内存数据源，直接由历史数据构成
type SourceMemory struct {
	u *data.Universe
}

func NewSourceMemory(u *data.Universe) *SourceMemory {
	return &SourceMemory{u: u}
}

func (s *SourceMemory) FieldNames() []string {
	return fieldNamesOf(s.u)
}

func (s *SourceMemory) Tickers() []string {
	return s.u.Tickers()
}

func (s *SourceMemory) History(ticker string, start, end time.Time) (*data.History, bool) {
	if h, ok := s.u.History(ticker); ok {
		return h.Slice(start, end), true
	}
	return nil, false
}

func (s *SourceMemory) Universe(tickers []string, start, end time.Time) (*data.Universe, error) {
	return universeOf(s.u, tickers, start, end)
}

// 从全量股票池中取子集并截取区间，tickers为空时取全部
func universeOf(all *data.Universe, tickers []string, start, end time.Time) (*data.Universe, error) {
	u := all
	if len(tickers) > 0 {
		sub, err := all.Subset(tickers)
		if err != nil {
			return nil, err
		}
		u = sub
	}
	return u.Slice(start, end)
}

func fieldNamesOf(u *data.Universe) []string {
	set := map[string]struct{}{}
	for _, t := range u.Tickers() {
		h, _ := u.History(t)
		for _, f := range h.Fundamentals {
			for k := range f.Fields {
				set[k] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(set))
	for k := range set {
		names = append(names, k)
	}
	slices.Sort(names)
	return append([]string{"close", "market_cap", "volume"}, names...)
}
