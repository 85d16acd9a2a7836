/*
- @Author: aztec
- @Date: 2024-01-31 10:19:32
- @Description: 策略执行器。按交易日推进，调仓、估值、止损止盈，并记录成交
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package backtest

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/serenity0102/factor-modelling-mining/factor/evaluate"
	"github.com/shopspring/decimal"
)

// 执行器。一次Run内部有状态，不能并发使用；不同执行器之间互不影响
type Executor struct {
	cfg    Config
	state  State
	market Market

	// 当前持仓，key=ticker
	positions map[string]*position

	// 最近一次成功估值（或调仓）的日期，下一期收益相对它计算
	markTime time.Time

	// 净值
	wealth float64

	result    Result
	turnovers []float64

	fnStateChanged func(State)
}

func NewExecutor(cfg Config) *Executor {
	return &Executor{cfg: cfg, state: StateIdle}
}

// 状态变化回调
func (e *Executor) SetStateHook(fn func(State)) {
	e.fnStateChanged = fn
}

func (e *Executor) State() State {
	return e.state
}

func (e *Executor) setState(s State) {
	if e.state != s {
		e.state = s
		if e.fnStateChanged != nil {
			e.fnStateChanged(s)
		}
	}
}

// 按panel中的日期逐日回测。panel为因子值的截面序列
func Run(cfg Config, s Strategy, panel common.SectionSequence, market Market) (Result, error) {
	return NewExecutor(cfg).Run(s, panel, market)
}

func (e *Executor) Run(s Strategy, panel common.SectionSequence, market Market) (Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("backtest config: %w", err)
	}
	if !panel.Valid() {
		return Result{}, fmt.Errorf("backtest panel is not a valid section sequence")
	}

	e.state = StateIdle
	e.market = market
	e.positions = map[string]*position{}
	e.markTime = time.Time{}
	e.wealth = 1
	e.turnovers = nil
	e.result = Result{
		StrategyID:    valueIf(e.cfg.StrategyID != "", e.cfg.StrategyID, s.Class()),
		Dates:         []time.Time{},
		PeriodReturns: []float64{},
		Cumulative:    []float64{},
	}

	dates := make([]time.Time, len(panel.Data))
	for i, sd := range panel.Data {
		dates[i] = sd.Time
	}
	if len(dates) > 0 {
		e.result.Start = dates[0]
		e.result.End = dates[len(dates)-1]
	}

	rebalanceDates := map[time.Time]bool{}
	for _, d := range e.cfg.Schedule.Dates(dates) {
		rebalanceDates[d] = true
	}

	for i, d := range dates {
		rebalance := rebalanceDates[d]

		if i > 0 {
			e.setState(StateHolding)
			if e.valuate(d) && !rebalance {
				e.manageRisk(d)
			}
		}

		if rebalance {
			e.setState(StateRebalancing)
			e.rebalance(s, panel.Data[i])
			e.setState(StateHolding)
		}
	}

	e.setState(StateClosed)
	computeMetrics(&e.result, e.turnovers, e.cfg.PeriodsPerYear, e.cfg.RiskFreeRate)
	common.LogNormal(logPrefix, "%s done, %d periods, %d gaps, total return %.4f",
		e.result.StrategyID, len(e.result.PeriodReturns), len(e.result.Gaps), e.result.TotalReturn)
	return e.result, nil
}

// 有效持仓（按代码排序）
func (e *Executor) activePositions() []*position {
	ps := []*position{}
	for _, t := range slices.Sorted(maps.Keys(e.positions)) {
		p := e.positions[t]
		if !p.Closed && p.Weight != 0 {
			ps = append(ps, p)
		}
	}
	return ps
}

// 估值：r = Σ w·(p_t/p_mark − 1)
// 任一持仓缺价格时记为缺口，本期不计入，估值基准日不变
func (e *Executor) valuate(t time.Time) bool {
	r := 0.0
	for _, p := range e.activePositions() {
		p0, ok0 := e.market.Close(p.Ticker, e.markTime)
		p1, ok1 := e.market.Close(p.Ticker, t)
		if !ok0 || !ok1 {
			err := common.NewConditionError(common.CondMissingData, p.Ticker, valueIf(ok0, t, e.markTime), "held position has no price")
			e.result.Gaps = append(e.result.Gaps, Gap{Date: t, Err: err.Error()})
			common.LogWarn(logPrefix, "gap at %s: %s", t.Format(time.DateOnly), err.Error())
			return false
		}
		r += p.Weight * (p1/p0 - 1)
	}

	e.wealth *= 1 + r
	e.markTime = t
	e.result.Dates = append(e.result.Dates, t)
	e.result.PeriodReturns = append(e.result.PeriodReturns, r)
	e.result.Cumulative = append(e.result.Cumulative, e.wealth-1)
	return true
}

// 止损止盈
func (e *Executor) manageRisk(t time.Time) {
	if e.cfg.StopLoss <= 0 && e.cfg.TakeProfit <= 0 {
		return
	}

	for _, p := range e.activePositions() {
		if p.EntryPrice <= 0 {
			continue
		}
		px, ok := e.market.Close(p.Ticker, t)
		if !ok {
			continue
		}

		pr := p.profitRatio(px)
		reason := DealReason("")
		if e.cfg.StopLoss > 0 && pr <= -e.cfg.StopLoss {
			reason = DealStopLoss
		} else if e.cfg.TakeProfit > 0 && pr >= e.cfg.TakeProfit {
			reason = DealTakeProfit
		}

		if reason != "" {
			e.result.Deals = append(e.result.Deals, Deal{
				Time:   t,
				Ticker: p.Ticker,
				Price:  decimal.NewFromFloat(px),
				From:   p.Weight,
				To:     0,
				Reason: reason,
			})
			p.Closed = true
			common.LogNormal(logPrefix, "%s %s at %s, profit ratio %.4f", reason, p.Ticker, t.Format(time.DateOnly), pr)
		}
	}
}

// 调仓。构建失败时沿用原有权重
func (e *Executor) rebalance(s Strategy, section common.SectionData) {
	t := section.Time
	rec := RebalanceRecord{Date: t}

	high, low, err := evaluate.Construct(section, e.market, e.cfg.Portfolio)
	if err != nil {
		rec.Condition = common.ConditionOf(err)
		rec.Err = err.Error()
		e.result.Rebalances = append(e.result.Rebalances, rec)
		common.LogWarn(logPrefix, "rebalance at %s failed, keep weights: %s", t.Format(time.DateOnly), err.Error())
		return
	}

	target := s.NextWeights(high, low)

	// 现有权重（已平仓的视为0）
	current := Positions{}
	for tk, p := range e.positions {
		if !p.Closed {
			current[tk] = p.Weight
		}
	}

	tickers := map[string]struct{}{}
	for tk := range current {
		tickers[tk] = struct{}{}
	}
	for tk := range target {
		tickers[tk] = struct{}{}
	}

	next := map[string]*position{}
	for _, tk := range slices.Sorted(maps.Keys(tickers)) {
		from, to := current[tk], target[tk]
		px, _ := e.market.Close(tk, t)

		if from != to {
			rec.Turnover += math.Abs(to - from)
			e.result.Deals = append(e.result.Deals, Deal{
				Time:   t,
				Ticker: tk,
				Price:  decimal.NewFromFloat(px),
				From:   from,
				To:     to,
				Reason: DealRebalance,
			})
		}

		if to == 0 {
			continue
		}

		// 方向不变的持仓保留开仓价
		if old, ok := e.positions[tk]; ok && !old.Closed && old.Weight*to > 0 {
			next[tk] = &position{Ticker: tk, Weight: to, EntryPrice: old.EntryPrice, EntryTime: old.EntryTime}
		} else {
			next[tk] = &position{Ticker: tk, Weight: to, EntryPrice: px, EntryTime: t}
		}
	}

	rec.Turnover /= 2
	rec.Gross = target.Gross()
	rec.Net = target.Net()
	rec.OK = true
	e.result.Rebalances = append(e.result.Rebalances, rec)
	e.turnovers = append(e.turnovers, rec.Turnover)
	e.positions = next
	e.markTime = t
}

func valueIf[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
