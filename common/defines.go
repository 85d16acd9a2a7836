/*
- @Author: aztec
- @Date: 2024-01-18 16:00:09
- @Description: 通用数据定义
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package common

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"time"

	"github.com/jedib0t/go-pretty/table"
)

type FnLog func(format string, args ...interface{})

var logNormal FnLog
var logWarn FnLog
var logError FnLog

// 日志出口由调用方注入，未注入时静默
func Init(fnLogNormal, fnLogError FnLog) {
	logNormal = fnLogNormal
	logError = fnLogError
}

func InitWarn(fnLogWarn FnLog) {
	logWarn = fnLogWarn
}

func LogNormal(prefix, format string, args ...interface{}) {
	if logNormal != nil {
		logNormal(fmt.Sprintf("[%s] %s", prefix, format), args...)
	}
}

func LogWarn(prefix, format string, args ...interface{}) {
	if logWarn != nil {
		logWarn(fmt.Sprintf("[%s] %s", prefix, format), args...)
	} else if logNormal != nil {
		logNormal(fmt.Sprintf("[%s] %s", prefix, format), args...)
	}
}

func LogError(prefix, format string, args ...interface{}) {
	if logError != nil {
		logError(fmt.Sprintf("[%s] %s", prefix, format), args...)
	}
}

// 股票代码：大写字母+数字，最多10位
var tickerPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

func ValidTicker(ticker string) bool {
	return tickerPattern.MatchString(ticker)
}

// 截面数据
// 某一日期各个股票的某一数据。Valid[i]为false表示该股票当日无有效值
type SectionData struct {
	Time    time.Time // 日期
	Tickers []string  // 股票
	Values  []float64 // 值。长度与Tickers相同。可以代表价格、因子值等数据
	Valid   []bool    // 有效性，长度与Tickers相同
}

func NewSectionData(t time.Time, tickers []string) SectionData {
	return SectionData{
		Time:    t,
		Tickers: slices.Clone(tickers),
		Values:  make([]float64, len(tickers)),
		Valid:   make([]bool, len(tickers)),
	}
}

func (s SectionData) Consistent() bool {
	return len(s.Tickers) == len(s.Values) && len(s.Tickers) == len(s.Valid)
}

// 有效值数量
func (s SectionData) ValidCount() int {
	n := 0
	for _, v := range s.Valid {
		if v {
			n++
		}
	}
	return n
}

// 按股票取值
func (s SectionData) Get(ticker string) (float64, bool) {
	if i := slices.Index(s.Tickers, ticker); i >= 0 && s.Valid[i] {
		return s.Values[i], true
	}
	return math.NaN(), false
}

func (s SectionData) ToTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetAutoIndex(true)
	t.SetTitle(s.Time.Format(time.DateOnly))
	t.AppendHeader(table.Row{"Ticker", "Value"})
	l := len(s.Tickers)
	for i := 0; i < l; i++ {
		if s.Valid[i] {
			t.AppendRow(table.Row{s.Tickers[i], s.Values[i]})
		} else {
			t.AppendRow(table.Row{s.Tickers[i], "-"})
		}
	}
	return t
}

// 截面序列
// 截面序列中的data，共享相同的Tickers，数量和顺序都需要一致
type SectionSequence struct {
	Tickers []string
	Data    []SectionData
}

func (s SectionSequence) Valid() bool {
	for i, sd := range s.Data {
		if !sd.Consistent() {
			return false
		}

		if slices.Compare(sd.Tickers, s.Tickers) != 0 {
			return false
		}

		// 时间必须严格递增
		if i > 0 && !s.Data[i-1].Time.Before(sd.Time) {
			return false
		}
	}

	return true
}

// 按日期查找截面
func (s SectionSequence) At(t time.Time) (SectionData, bool) {
	i, found := slices.BinarySearchFunc(s.Data, t, func(sd SectionData, t time.Time) int {
		return sd.Time.Compare(t)
	})
	if found {
		return s.Data[i], true
	}
	return SectionData{}, false
}

// 单行数据太多时，最多显示n列
func (s SectionSequence) ToTable(n int) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetAutoIndex(true)

	l := len(s.Tickers)
	overlen := l > n
	header := table.Row{"date"}
	for i := 0; i < l && i < n; i++ {
		header = append(header, s.Tickers[i])
	}
	if overlen {
		header = append(header, fmt.Sprintf("%d more...", l-n))
	}
	t.AppendHeader(header)

	for _, sd := range s.Data {
		row := table.Row{sd.Time.Format(time.DateOnly)}
		for i := 0; i < l && i < n; i++ {
			if sd.Valid[i] {
				row = append(row, sd.Values[i])
			} else {
				row = append(row, "-")
			}
		}
		t.AppendRow(row)
	}

	return t
}
