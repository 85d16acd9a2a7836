/*
- @Author: aztec
- @Date: 2024-01-15 11:44:19
- @Description: 因子评估的数据定义
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package evaluate

import (
	"fmt"
	"time"

	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/serenity0102/factor-modelling-mining/data"
)

var logPrefix = "evaluate"

// |t|超过此值视为显著。仅供调用方解释结果，核心计算不做判定
const SignificanceThreshold = 1.96

// 分组时的浮点容差，避免 3*(1/3) 落到 0.999... 被截断
const fractionEps = 1e-9

// 权重方式
type Weighting string

const (
	WeightingMarketCap Weighting = "market_cap"
	WeightingEqual     Weighting = "equal"
)

// 组合构建配置
type PortfolioConfig struct {
	HighFraction float64   `json:"high_fraction" yaml:"high_fraction"` // 高因子组占比
	LowFraction  float64   `json:"low_fraction" yaml:"low_fraction"`   // 低因子组占比
	Weighting    Weighting `json:"weighting" yaml:"weighting"`
}

// 默认参数
func DefaultPortfolioConfig() PortfolioConfig {
	return PortfolioConfig{HighFraction: 0.5, LowFraction: 0.5, Weighting: WeightingMarketCap}
}

func (c PortfolioConfig) Validate() error {
	if c.HighFraction <= 0 || c.HighFraction > 1 {
		return fmt.Errorf("high fraction %v out of (0,1]", c.HighFraction)
	}
	if c.LowFraction <= 0 || c.LowFraction > 1 {
		return fmt.Errorf("low fraction %v out of (0,1]", c.LowFraction)
	}
	if c.HighFraction+c.LowFraction > 1+fractionEps {
		return fmt.Errorf("high fraction %v + low fraction %v exceeds 1", c.HighFraction, c.LowFraction)
	}
	switch c.Weighting {
	case WeightingMarketCap, WeightingEqual:
	default:
		return fmt.Errorf("invalid weighting %q", c.Weighting)
	}
	return nil
}

// 显著性检验配置
type TestConfig struct {
	MinObservations int     `json:"min_observations" yaml:"min_observations"`
	FDRControl      bool    `json:"fdr_control" yaml:"fdr_control"` // 汇总时是否做Benjamini-Hochberg校正
	FDRLevel        float64 `json:"fdr_level" yaml:"fdr_level"`
}

func DefaultTestConfig() TestConfig {
	return TestConfig{MinObservations: 10, FDRControl: false, FDRLevel: 0.05}
}

// 市值查询
type MarketCaps interface {
	Cap(ticker string, date time.Time) (float64, bool)
}

// 价格查询。NextDate为价格日历上的下一个交易日
type PriceSource interface {
	Close(ticker string, date time.Time) (float64, bool)
	NextDate(date time.Time) (time.Time, bool)
}

// 组合成员
type Member struct {
	Ticker string
	Weight float64
}

// 组合。成员按因子排名排列，权重和为1
type Portfolio struct {
	Date    time.Time
	Members []Member
}

func (p Portfolio) Tickers() []string {
	ts := make([]string, len(p.Members))
	for i, m := range p.Members {
		ts[i] = m.Ticker
	}
	return ts
}

func (p Portfolio) Weights() map[string]float64 {
	w := make(map[string]float64, len(p.Members))
	for _, m := range p.Members {
		w[m.Ticker] = m.Weight
	}
	return w
}

func (p Portfolio) Empty() bool {
	return len(p.Members) == 0
}

// 同一日期构建的高/低组合
type PortfolioPair struct {
	Date time.Time
	High Portfolio
	Low  Portfolio
}

// 因子收益。Date为收益实现的日期，即组合构建日的下一个交易日
type FactorReturnPoint struct {
	Factor     string
	Date       time.Time
	Return     float64 // HighReturn - LowReturn
	HighReturn float64
	LowReturn  float64
}

type DatedReturn = data.DatedValue

// 单只股票对因子收益的回归结果
// Condition不为None时，数值字段无意义
type RegressionResult struct {
	Factor    string
	Ticker    string
	Alpha     float64
	Beta      float64
	TStat     float64
	PValue    float64
	StdErr    float64
	ConfLow   float64
	ConfHigh  float64
	RSquared  float64
	NObs      int
	Condition common.Condition
}

// 按|t|判断是否显著
func (r RegressionResult) Significant() bool {
	return r.Condition == common.CondNone && (r.TStat > SignificanceThreshold || r.TStat < -SignificanceThreshold)
}
