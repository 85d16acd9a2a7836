/*
- @Author: aztec
- @Date: 2024-02-08 14:02:36
- @Description: 基础数据源（CSV）
- @价格: ticker,date,close,market_cap,volume
- @基本面: ticker,filing_date,field,value（长表，同一股票同一披露日的多行合并为一个快照）
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package basicinfo

import (
	"fmt"
	"io"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/serenity0102/factor-modelling-mining/data"
	"github.com/serenity0102/factor-modelling-mining/data/local"
	"github.com/shopspring/decimal"
)

var priceColumns = []string{"ticker", "date", "close", "market_cap", "volume"}
var fundamentalColumns = []string{"ticker", "filing_date", "field", "value"}

type SourceCSV struct {
	logPrefix string
	u         *data.Universe
}

func LoadSourceCSV(pricePath, fundamentalPath string) (*SourceCSV, error) {
	pf, err := local.OpenZipOrRawFile(pricePath)
	if err != nil {
		return nil, fmt.Errorf("open prices: %w", err)
	}
	defer pf.Close()

	var fr io.Reader
	if fundamentalPath != "" {
		ff, err := local.OpenZipOrRawFile(fundamentalPath)
		if err != nil {
			return nil, fmt.Errorf("open fundamentals: %w", err)
		}
		defer ff.Close()
		fr = ff
	}

	return NewSourceCSV(pf, fr)
}

// fundamentals可以为nil
func NewSourceCSV(prices io.Reader, fundamentals io.Reader) (*SourceCSV, error) {
	s := &SourceCSV{logPrefix: "BasicInfoSrc-CSV"}

	pricesByTicker, err := readPrices(prices)
	if err != nil {
		return nil, err
	}

	fundsByTicker := map[string][]data.FundamentalSnapshot{}
	if fundamentals != nil {
		if fundsByTicker, err = readFundamentals(fundamentals); err != nil {
			return nil, err
		}
	}

	hists := make([]*data.History, 0, len(pricesByTicker))
	for ticker, ps := range pricesByTicker {
		h, err := data.NewHistory(ticker, ps, fundsByTicker[ticker])
		if err != nil {
			return nil, err
		}
		hists = append(hists, h)
	}
	for ticker := range fundsByTicker {
		if _, ok := pricesByTicker[ticker]; !ok {
			common.LogWarn(s.logPrefix, "fundamentals for %s have no prices, ignored", ticker)
		}
	}

	if s.u, err = data.NewUniverse(hists...); err != nil {
		return nil, err
	}
	common.LogNormal(s.logPrefix, "loaded %d tickers, %d trading dates", s.u.Len(), len(s.u.Dates()))
	return s, nil
}

// 全部按字符串读入，数值再用decimal解析，避免精度损失
func readFrame(r io.Reader, columns []string) (dataframe.DataFrame, error) {
	types := map[string]series.Type{}
	for _, c := range columns {
		types[c] = series.String
	}
	df := dataframe.ReadCSV(r, dataframe.WithTypes(types))
	if df.Err != nil {
		return df, fmt.Errorf("read csv: %w", df.Err)
	}
	names := df.Names()
	for _, c := range columns {
		found := false
		for _, n := range names {
			if n == c {
				found = true
				break
			}
		}
		if !found {
			return df, fmt.Errorf("missing column %s", c)
		}
	}
	return df, nil
}

// 空值视为缺失（零）
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" || s == "NaN" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func readPrices(r io.Reader) (map[string][]data.PriceObservation, error) {
	df, err := readFrame(r, priceColumns)
	if err != nil {
		return nil, fmt.Errorf("prices: %w", err)
	}

	tickers := df.Col("ticker").Records()
	dates := df.Col("date").Records()
	closes := df.Col("close").Records()
	caps := df.Col("market_cap").Records()
	volumes := df.Col("volume").Records()

	result := map[string][]data.PriceObservation{}
	for i := range tickers {
		row := i + 2
		d, err := common.ParseDate(dates[i])
		if err != nil {
			return nil, fmt.Errorf("prices row %d: %w", row, err)
		}
		o := data.PriceObservation{Ticker: tickers[i], Date: d}
		if o.Close, err = decimal.NewFromString(closes[i]); err != nil {
			return nil, fmt.Errorf("prices row %d close: %w", row, err)
		}
		if o.MarketCap, err = parseDecimal(caps[i]); err != nil {
			return nil, fmt.Errorf("prices row %d market_cap: %w", row, err)
		}
		if o.Volume, err = parseDecimal(volumes[i]); err != nil {
			return nil, fmt.Errorf("prices row %d volume: %w", row, err)
		}
		result[o.Ticker] = append(result[o.Ticker], o)
	}
	return result, nil
}

func readFundamentals(r io.Reader) (map[string][]data.FundamentalSnapshot, error) {
	df, err := readFrame(r, fundamentalColumns)
	if err != nil {
		return nil, fmt.Errorf("fundamentals: %w", err)
	}

	tickers := df.Col("ticker").Records()
	dates := df.Col("filing_date").Records()
	fields := df.Col("field").Records()
	values := df.Col("value").Records()

	type key struct {
		ticker string
		date   time.Time
	}
	snaps := map[key]*data.FundamentalSnapshot{}
	order := []key{}
	for i := range tickers {
		row := i + 2
		d, err := common.ParseDate(dates[i])
		if err != nil {
			return nil, fmt.Errorf("fundamentals row %d: %w", row, err)
		}
		v, err := decimal.NewFromString(values[i])
		if err != nil {
			return nil, fmt.Errorf("fundamentals row %d value: %w", row, err)
		}

		k := key{tickers[i], d}
		sn, ok := snaps[k]
		if !ok {
			sn = &data.FundamentalSnapshot{Ticker: k.ticker, FilingDate: d, Fields: map[string]decimal.Decimal{}}
			snaps[k] = sn
			order = append(order, k)
		}
		sn.Fields[fields[i]] = v
	}

	result := map[string][]data.FundamentalSnapshot{}
	for _, k := range order {
		result[k.ticker] = append(result[k.ticker], *snaps[k])
	}
	return result, nil
}

func (s *SourceCSV) FieldNames() []string {
	return fieldNamesOf(s.u)
}

func (s *SourceCSV) Tickers() []string {
	return s.u.Tickers()
}

func (s *SourceCSV) History(ticker string, start, end time.Time) (*data.History, bool) {
	if h, ok := s.u.History(ticker); ok {
		return h.Slice(start, end), true
	}
	common.LogError(s.logPrefix, "ticker %s not found", ticker)
	return nil, false
}

func (s *SourceCSV) Universe(tickers []string, start, end time.Time) (*data.Universe, error) {
	return universeOf(s.u, tickers, start, end)
}
