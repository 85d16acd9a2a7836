package factorlib

import (
	"math"
	"testing"
	"time"

	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/serenity0102/factor-modelling-mining/data"
	"github.com/serenity0102/factor-modelling-mining/factor"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = common.MustParseDate("2024-01-01")

func dayN(n int) time.Time {
	return day0.AddDate(0, 0, n)
}

// 按给定收盘价生成连续日期的历史
func history(t *testing.T, closes []float64, fundamentals ...data.FundamentalSnapshot) *data.History {
	prices := make([]data.PriceObservation, len(closes))
	for i, c := range closes {
		prices[i] = data.PriceObservation{
			Ticker:    "AAA",
			Date:      dayN(i),
			Close:     decimal.NewFromFloat(c),
			MarketCap: decimal.NewFromFloat(c * 1e6),
			Volume:    decimal.NewFromInt(int64(1000 * (i + 1))),
		}
	}
	h, err := data.NewHistory("AAA", prices, fundamentals)
	require.NoError(t, err)
	return h
}

func filing(n int, fields map[string]float64) data.FundamentalSnapshot {
	f := data.FundamentalSnapshot{Ticker: "AAA", FilingDate: dayN(n), Fields: map[string]decimal.Decimal{}}
	for k, v := range fields {
		f.Fields[k] = decimal.NewFromFloat(v)
	}
	return f
}

func build(t *testing.T, name string, cfg factor.Config) factor.Factor {
	f, err := Default().New(name, cfg)
	require.NoError(t, err)
	return f
}

func computeAll(f factor.Factor, h *data.History) []factor.Value {
	return f.Compute("AAA", h.Prices[0].Date, h.Prices[len(h.Prices)-1].Date, h)
}

func TestDefaultRegistersEveryFactor(t *testing.T) {
	r := Default()
	names := []string{
		NameRSI, NameROC, NameTradingVolume, NamePB, NamePE, NamePEG,
		NameCurrentRatio, NameCashRatio, NameDebtToEquity, NameInterestCoverage,
		NameGrossProfitMargin, NameInventoryTurnover, NameRevenueGrowth,
		NameBoardAge, NameEnvRating, NameExecCompToRevenue, NameSMB, NameHML,
		NameAvgSentiment, NameNewSentiment,
	}
	assert.Len(t, r.Names(), len(names))
	for _, n := range names {
		m, ok := r.Meta(n)
		assert.True(t, ok, n)
		assert.Equal(t, n, m.Name)
	}

	_, err := r.New("NOPE", factor.Config{})
	assert.Error(t, err)
	_, err = r.New(NameRSI, factor.Config{Window: -1})
	assert.Error(t, err)
}

func TestRSI(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 10 + float64(i)
	}
	h := history(t, closes)
	vs := computeAll(build(t, NameRSI, factor.Config{}), h)
	require.Len(t, vs, 20)

	// 少于14个价格变动时无定义
	for i := 0; i < DefaultRSIWindow; i++ {
		assert.False(t, vs[i].Valid, "index %d", i)
	}
	// 只涨不跌
	assert.True(t, vs[DefaultRSIWindow].Valid)
	assert.Equal(t, 100.0, vs[DefaultRSIWindow].V)

	flat := history(t, []float64{5, 5, 5})
	vs = computeAll(build(t, NameRSI, factor.Config{Window: 2}), flat)
	assert.Equal(t, 50.0, vs[2].V)

	zigzag := history(t, []float64{10, 11, 10, 12})
	vs = computeAll(build(t, NameRSI, factor.Config{Window: 2}), zigzag)
	assert.InDelta(t, 50.0, vs[2].V, 1e-9)
	// 变动 -1, +2
	assert.InDelta(t, 100-100/(1+2.0), vs[3].V, 1e-9)
}

func TestROCAndSmoothing(t *testing.T) {
	h := history(t, []float64{10, 11, 12, 15})
	vs := computeAll(build(t, NameROC, factor.Config{Window: 1}), h)
	assert.False(t, vs[0].Valid)
	assert.InDelta(t, 10.0, vs[1].V, 1e-9)
	assert.InDelta(t, 25.0, vs[3].V, 1e-9)

	vs = computeAll(build(t, NameROC, factor.Config{Window: 1, Smoothing: 2}), h)
	assert.False(t, vs[1].Valid)
	assert.True(t, vs[2].Valid)
	assert.InDelta(t, (10.0+100.0/11)/2, vs[2].V, 1e-9)

	// 平滑使用区间之前的原始值
	vs = build(t, NameROC, factor.Config{Window: 1, Smoothing: 2}).Compute("AAA", dayN(2), dayN(3), h)
	require.Len(t, vs, 2)
	assert.True(t, vs[0].Valid)
}

func TestTradingVolume(t *testing.T) {
	// 成交量1000,2000,3000
	h := history(t, []float64{1, 1, 1})
	vs := computeAll(build(t, NameTradingVolume, factor.Config{Window: 2}), h)
	assert.False(t, vs[1].Valid)
	assert.InDelta(t, 2.0, vs[2].V, 1e-9)
}

func TestValuationNeverUsesFutureFilings(t *testing.T) {
	h := history(t, []float64{10, 10, 10, 10, 10},
		filing(2, map[string]float64{FieldBookValuePerShare: 2, FieldEPS: 1, FieldEarningsGrowth: 0.1}),
		filing(4, map[string]float64{FieldBookValuePerShare: 0}),
	)

	vs := computeAll(build(t, NamePB, factor.Config{}), h)
	assert.False(t, vs[0].Valid)
	assert.False(t, vs[1].Valid)
	assert.Equal(t, 5.0, vs[2].V)
	assert.Equal(t, 5.0, vs[3].V)
	// 账面价值为0，无定义
	assert.False(t, vs[4].Valid)

	vs = computeAll(build(t, NamePEG, factor.Config{}), h)
	assert.InDelta(t, 1.0, vs[2].V, 1e-9)

	vs = computeAll(build(t, NameHML, factor.Config{}), h)
	assert.InDelta(t, 0.2, vs[2].V, 1e-9)
	assert.Equal(t, 0.0, vs[4].V)
	assert.True(t, vs[4].Valid)
}

func TestFundamentalRatios(t *testing.T) {
	h := history(t, []float64{10, 10, 10},
		filing(0, map[string]float64{
			FieldCurrentAssets: 200, FieldCurrentLiabilities: 100, FieldCash: 50,
			FieldTotalDebt: 30, FieldShareholderEquity: 60, FieldEBIT: 20, FieldInterestExpense: 0,
			FieldRevenue: 100, FieldCOGS: 60, FieldInventory: 10, FieldExecComp: 1,
			FieldBoardAge: 58, FieldEnvRating: 3,
		}),
		filing(1, map[string]float64{FieldInventory: 30, FieldRevenue: 120}),
	)

	cases := []struct {
		name  string
		idx   int
		want  float64
		valid bool
	}{
		{NameCurrentRatio, 0, 2, true},
		{NameCashRatio, 0, 0.5, true},
		{NameDebtToEquity, 0, 0.5, true},
		{NameInterestCoverage, 0, 0, false},
		{NameGrossProfitMargin, 0, 0.4, true},
		{NameInventoryTurnover, 0, 0, false},
		{NameInventoryTurnover, 1, 3, true},
		{NameBoardAge, 2, 58, true},
		{NameEnvRating, 2, 3, true},
		{NameExecCompToRevenue, 1, 1.0 / 120, true},
	}
	for _, c := range cases {
		vs := computeAll(build(t, c.name, factor.Config{}), h)
		assert.Equal(t, c.valid, vs[c.idx].Valid, c.name)
		if c.valid {
			assert.InDelta(t, c.want, vs[c.idx].V, 1e-9, c.name)
		}
	}
}

func TestRevenueGrowth(t *testing.T) {
	h := history(t, []float64{1, 1, 1},
		filing(0, map[string]float64{FieldRevenue: 100}),
		filing(1, map[string]float64{FieldRevenue: 110}),
		filing(2, map[string]float64{FieldRevenue: 150}),
	)
	vs := computeAll(build(t, NameRevenueGrowth, factor.Config{Window: 2}), h)
	assert.False(t, vs[1].Valid)
	assert.InDelta(t, 0.5, vs[2].V, 1e-9)
}

func TestSMBAndSentiment(t *testing.T) {
	h := history(t, []float64{1, 2, 3},
		filing(0, map[string]float64{FieldSentiment: 0.2}),
		filing(1, map[string]float64{FieldSentiment: 0.4}),
		filing(2, map[string]float64{FieldSentiment: -0.3}),
	)

	vs := computeAll(build(t, NameSMB, factor.Config{}), h)
	assert.InDelta(t, -math.Log(2e6), vs[1].V, 1e-9)
	assert.Greater(t, vs[0].V, vs[1].V)

	vs = computeAll(build(t, NameAvgSentiment, factor.Config{Window: 2}), h)
	assert.False(t, vs[0].Valid)
	assert.InDelta(t, 0.3, vs[1].V, 1e-9)
	assert.InDelta(t, 0.05, vs[2].V, 1e-9)

	vs = computeAll(build(t, NameNewSentiment, factor.Config{}), h)
	assert.InDelta(t, -0.3, vs[2].V, 1e-9)
}

func TestAvgSentimentDefaultWindow(t *testing.T) {
	closes := make([]float64, 20)
	filings := make([]data.FundamentalSnapshot, 20)
	for i := range closes {
		closes[i] = 10
		filings[i] = filing(i, map[string]float64{FieldSentiment: float64(i) / 100})
	}
	h := history(t, closes, filings...)

	// 未配置窗口时取最近14个观测
	vs := computeAll(build(t, NameAvgSentiment, factor.Config{}), h)
	assert.False(t, vs[12].Valid)
	assert.True(t, vs[13].Valid)
	assert.InDelta(t, 0.065, vs[13].V, 1e-9)
	assert.InDelta(t, 0.125, vs[19].V, 1e-9)
}

func TestComputeIsDeterministic(t *testing.T) {
	h := history(t, []float64{10, 12, 11, 13, 12, 14})
	f := build(t, NameRSI, factor.Config{Window: 3})
	assert.Equal(t, computeAll(f, h), computeAll(f, h))
}
