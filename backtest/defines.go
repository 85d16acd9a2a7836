/*
- @Author: aztec
- @Date: 2024-01-31 10:19:32
- @Description: 回测的数据定义
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package backtest

import (
	"fmt"
	"time"

	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/serenity0102/factor-modelling-mining/factor/evaluate"
)

const logPrefix = "backtest"

// 每年交易日数
const DefaultPeriodsPerYear = 252

// 执行器状态
type State int

const (
	StateIdle State = iota
	StateRebalancing
	StateHolding
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRebalancing:
		return "Rebalancing"
	case StateHolding:
		return "Holding"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// 行情：价格日历、收盘价、市值
type Market interface {
	evaluate.PriceSource
	evaluate.MarketCaps
}

type Config struct {
	StrategyID     string                   `json:"strategy_id" yaml:"strategy_id"` // 为空时使用策略类名
	Schedule       Schedule                 `json:"schedule" yaml:"schedule"`
	Portfolio      evaluate.PortfolioConfig `json:"portfolio" yaml:"portfolio"`
	PeriodsPerYear int                      `json:"periods_per_year" yaml:"periods_per_year"`
	RiskFreeRate   float64                  `json:"risk_free_rate" yaml:"risk_free_rate"` // 年化无风险利率
	StopLoss       float64                  `json:"stop_loss" yaml:"stop_loss"`           // 0表示不止损
	TakeProfit     float64                  `json:"take_profit" yaml:"take_profit"`       // 0表示不止盈
}

func DefaultConfig() Config {
	return Config{
		Schedule:       ScheduleDaily,
		Portfolio:      evaluate.DefaultPortfolioConfig(),
		PeriodsPerYear: DefaultPeriodsPerYear,
	}
}

func (c Config) Validate() error {
	if err := c.Schedule.Validate(); err != nil {
		return err
	}
	if err := c.Portfolio.Validate(); err != nil {
		return err
	}
	if c.PeriodsPerYear <= 0 {
		return fmt.Errorf("invalid periods per year %d", c.PeriodsPerYear)
	}
	if c.StopLoss < 0 || c.TakeProfit < 0 {
		return fmt.Errorf("stop loss and take profit must not be negative")
	}
	return nil
}

// 一次调仓的记录
type RebalanceRecord struct {
	Date      time.Time
	OK        bool
	Condition common.Condition // 失败时的原因
	Err       string
	Turnover  float64 // Σ|Δw|/2
	Gross     float64 // 调仓后总敞口
	Net       float64 // 调仓后净敞口
}

// 缺口：持仓无法估值的日期，不计入收益
type Gap struct {
	Date time.Time
	Err  string
}

// 回测结果
type Result struct {
	StrategyID string
	Start      time.Time
	End        time.Time

	// 有效估值的日期，以及对应的单期收益与累计收益
	Dates         []time.Time
	PeriodReturns []float64
	Cumulative    []float64

	TotalReturn      float64
	AnnualizedReturn float64
	Volatility       float64
	SharpeRatio      float64
	MaxDrawdown      float64 // 正数
	WinRate          float64
	Turnover         float64 // 每次成功调仓的平均换手

	Gaps       []Gap
	Rebalances []RebalanceRecord
	Deals      []Deal
}
