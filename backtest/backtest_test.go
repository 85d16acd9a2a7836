package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/serenity0102/factor-modelling-mining/data"
	"github.com/serenity0102/factor-modelling-mining/factor/evaluate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var d0 = common.MustParseDate("2024-04-01")

func dayN(n int) time.Time {
	return d0.AddDate(0, 0, n)
}

// closes中<=0表示当日缺价格
func market(t *testing.T, closes map[string][]float64) *data.Universe {
	hists := []*data.History{}
	for tk, cs := range closes {
		ps := []data.PriceObservation{}
		for i, c := range cs {
			if c > 0 {
				ps = append(ps, data.PriceObservation{Ticker: tk, Date: dayN(i), Close: decimal.NewFromFloat(c), MarketCap: decimal.NewFromInt(100)})
			}
		}
		h, err := data.NewHistory(tk, ps, nil)
		require.NoError(t, err)
		hists = append(hists, h)
	}
	u, err := data.NewUniverse(hists...)
	require.NoError(t, err)
	return u
}

// 固定因子值的截面序列，缺价格的日期无效
func panel(u *data.Universe, values map[string]float64) common.SectionSequence {
	tickers := u.Tickers()
	seq := common.SectionSequence{Tickers: tickers}
	for _, d := range u.Dates() {
		sd := common.NewSectionData(d, tickers)
		for i, tk := range tickers {
			if _, ok := u.Close(tk, d); ok {
				sd.Values[i] = values[tk]
				sd.Valid[i] = true
			}
		}
		seq.Data = append(seq.Data, sd)
	}
	return seq
}

func equalCfg() Config {
	cfg := DefaultConfig()
	cfg.Portfolio.Weighting = evaluate.WeightingEqual
	return cfg
}

func growth(n int, p0, r float64) []float64 {
	cs := make([]float64, n)
	for i := range cs {
		cs[i] = p0 * math.Pow(1+r, float64(i))
	}
	return cs
}

func TestCompoundingIdentity(t *testing.T) {
	const k = 10
	const r = 0.01
	u := market(t, map[string][]float64{
		"A": growth(k+1, 100, r),
		"B": growth(k+1, 50, -r),
	})
	p := panel(u, map[string]float64{"A": 2, "B": 1})

	res, err := Run(equalCfg(), NewLongOnly(), p, u)
	require.NoError(t, err)
	require.Len(t, res.PeriodReturns, k)
	for _, v := range res.PeriodReturns {
		assert.InDelta(t, r, v, 1e-12)
	}
	assert.InDelta(t, math.Pow(1+r, k)-1, res.TotalReturn, 1e-12)
	assert.InDelta(t, math.Pow(1+r, k)-1, res.Cumulative[k-1], 1e-12)
	assert.Equal(t, "LongOnly", res.StrategyID)
	assert.Equal(t, 1.0, res.WinRate)
	assert.Zero(t, res.MaxDrawdown)
	assert.Empty(t, res.Gaps)
	require.Len(t, res.Deals, 1)
	assert.Equal(t, "A", res.Deals[0].Ticker)
	assert.InDelta(t, 0.5/float64(k), res.Turnover, 1e-12)
	assert.InDelta(t, math.Pow(1+res.TotalReturn, float64(DefaultPeriodsPerYear)/k)-1, res.AnnualizedReturn, 1e-9)

	ls, err := Run(equalCfg(), NewLongShort(), p, u)
	require.NoError(t, err)
	for _, v := range ls.PeriodReturns {
		assert.InDelta(t, 2*r, v, 1e-12)
	}

	// 重复运行结果一致
	again, _ := Run(equalCfg(), NewLongShort(), p, u)
	assert.Equal(t, ls, again)
}

func TestGapExcludesOnePeriod(t *testing.T) {
	u := market(t, map[string][]float64{
		"A": {100, 101, 0, 103, 104},
		"B": {50, 50, 50, 50, 50},
	})
	p := panel(u, map[string]float64{"A": 2, "B": 1})

	res, err := Run(equalCfg(), NewLongOnly(), p, u)
	require.NoError(t, err)

	require.Len(t, res.Gaps, 1)
	assert.Equal(t, dayN(2), res.Gaps[0].Date)
	assert.Len(t, res.PeriodReturns, 3)
	assert.Equal(t, []time.Time{dayN(1), dayN(3), dayN(4)}, res.Dates)
	// 缺口之后相对最近一次估值日计算
	assert.InDelta(t, 103.0/101-1, res.PeriodReturns[1], 1e-12)

	// 第2日只有B有效，调仓失败，沿用原权重
	var failed []RebalanceRecord
	for _, rb := range res.Rebalances {
		if !rb.OK {
			failed = append(failed, rb)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, dayN(2), failed[0].Date)
	assert.Equal(t, common.CondInsufficientUniverse, failed[0].Condition)
	assert.InDelta(t, 104.0/100-1, res.TotalReturn, 1e-12)
}

func TestStopLossClosesPosition(t *testing.T) {
	u := market(t, map[string][]float64{
		"A": {100, 90, 80, 85},
		"B": {50, 50, 50, 50},
	})
	p := panel(u, map[string]float64{"A": 2, "B": 1})

	cfg := equalCfg()
	cfg.Schedule = ScheduleMonthly
	cfg.StopLoss = 0.05
	res, err := Run(cfg, NewLongOnly(), p, u)
	require.NoError(t, err)

	require.Len(t, res.Deals, 2)
	assert.Equal(t, DealRebalance, res.Deals[0].Reason)
	assert.Equal(t, DealStopLoss, res.Deals[1].Reason)
	assert.Equal(t, dayN(1), res.Deals[1].Time)
	assert.True(t, res.Deals[1].IsSell())
	assert.Equal(t, 1.0, res.Deals[1].Amount())
	buys, sells, traded := res.DealStats()
	assert.Equal(t, 1, buys)
	assert.Equal(t, 1, sells)
	assert.InDelta(t, 2.0, traded, 1e-12)
	assert.Contains(t, res.ToTable().Render(), "1 buys / 1 sells")

	// 平仓后不再承担价格变化
	assert.InDelta(t, -0.1, res.PeriodReturns[0], 1e-12)
	assert.Zero(t, res.PeriodReturns[1])
	assert.Zero(t, res.PeriodReturns[2])
	assert.InDelta(t, 0.1, res.MaxDrawdown, 1e-12)
}

func TestTakeProfitOnShort(t *testing.T) {
	u := market(t, map[string][]float64{
		"A": {100, 100, 100},
		"B": {50, 40, 45},
	})
	p := panel(u, map[string]float64{"A": 2, "B": 1})

	cfg := equalCfg()
	cfg.Schedule = ScheduleMonthly
	cfg.TakeProfit = 0.15
	res, err := Run(cfg, NewLongShort(), p, u)
	require.NoError(t, err)

	// 多空各满仓，总敞口2，净敞口0
	require.Len(t, res.Rebalances, 1)
	assert.Equal(t, 2.0, res.Rebalances[0].Gross)
	assert.Equal(t, 0.0, res.Rebalances[0].Net)
	gross, net := res.AvgExposure()
	assert.Equal(t, 2.0, gross)
	assert.Zero(t, net)

	// B做空，下跌20%止盈
	last := res.Deals[len(res.Deals)-1]
	assert.Equal(t, DealTakeProfit, last.Reason)
	assert.Equal(t, "B", last.Ticker)
	assert.InDelta(t, 0.2, res.PeriodReturns[0], 1e-12)
	assert.Zero(t, res.PeriodReturns[1])
}

func TestExecutorStates(t *testing.T) {
	u := market(t, map[string][]float64{"A": {1, 2, 3}, "B": {1, 1, 1}})
	e := NewExecutor(equalCfg())
	assert.Equal(t, StateIdle, e.State())

	states := []State{}
	e.SetStateHook(func(s State) { states = append(states, s) })
	_, err := e.Run(NewLongOnly(), panel(u, map[string]float64{"A": 1, "B": 2}), u)
	require.NoError(t, err)

	assert.Equal(t, StateClosed, e.State())
	assert.Equal(t, []State{StateRebalancing, StateHolding, StateRebalancing, StateHolding, StateClosed}, states)
	assert.Equal(t, "Closed", e.State().String())
}

func TestRunRejectsBadConfig(t *testing.T) {
	u := market(t, map[string][]float64{"A": {1}})
	cfg := DefaultConfig()
	cfg.Schedule = "Q"
	_, err := Run(cfg, NewLongOnly(), panel(u, nil), u)
	assert.Error(t, err)

	res, err := Run(DefaultConfig(), NewLongOnly(), common.SectionSequence{}, u)
	require.NoError(t, err)
	assert.Empty(t, res.PeriodReturns)
}

func TestSchedule(t *testing.T) {
	// 2024-04-01为周一
	dates := []time.Time{}
	for i := 0; i < 40; i++ {
		d := dayN(i)
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			dates = append(dates, d)
		}
	}

	weekly := ScheduleWeekly.Dates(dates)
	assert.Equal(t, dates[0], weekly[0])
	assert.Equal(t, common.MustParseDate("2024-04-05"), weekly[1])
	assert.Equal(t, common.MustParseDate("2024-04-12"), weekly[2])

	monthly := ScheduleMonthly.Dates(dates)
	assert.Equal(t, []time.Time{dates[0], common.MustParseDate("2024-04-30")}, monthly)

	assert.Len(t, ScheduleDaily.Dates(dates), len(dates)-1)
	assert.Error(t, Schedule("Y").Validate())
}

func TestMetrics(t *testing.T) {
	assert.InDelta(t, 0.1, MaxDrawdown([]float64{0.1, -0.01, 0.05}), 1e-12)
	assert.Equal(t, -1.0, AnnualizedReturn(0, 10, 252))
	assert.Zero(t, AnnualizedReturn(1.1, 0, 252))

	p := Positions{"A": 0.5, "B": -0.5}
	assert.Equal(t, []string{"A", "B"}, p.Tickers())
	assert.Equal(t, 1.0, p.Gross())
	assert.Equal(t, 0.0, p.Net())
	assert.NotEmpty(t, Result{StrategyID: "x"}.ToTable().Render())

	s, ok := NewStrategy("long_short")
	assert.True(t, ok)
	assert.Equal(t, "LongShort", s.Class())
}
