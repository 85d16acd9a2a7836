/*
- @Author: aztec
- @Date: 2024-02-01 11:08:06
- @Description: 策略接口
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package backtest

import (
	"maps"
	"math"
	"slices"

	"github.com/serenity0102/factor-modelling-mining/factor/evaluate"
)

// 目标仓位。股票 -> 权重，正数为多头，负数为空头
type Positions map[string]float64

// 按代码排序的股票列表
func (p Positions) Tickers() []string {
	return slices.Sorted(maps.Keys(p))
}

// 总敞口 Σ|w|
func (p Positions) Gross() float64 {
	g := 0.0
	for _, w := range p {
		g += math.Abs(w)
	}
	return g
}

// 净敞口 Σw
func (p Positions) Net() float64 {
	n := 0.0
	for _, w := range p {
		n += w
	}
	return n
}

// 策略
// 在每个调仓日，根据高/低因子组合给出目标仓位
type Strategy interface {
	// 基本信息
	Class() string

	NextWeights(high, low evaluate.Portfolio) Positions
}

// 多空：做多高因子组，做空低因子组
type LongShort struct {
	LongAllocation  float64
	ShortAllocation float64
}

func NewLongShort() LongShort {
	return LongShort{LongAllocation: 1, ShortAllocation: 1}
}

func (s LongShort) Class() string {
	return "LongShort"
}

func (s LongShort) NextWeights(high, low evaluate.Portfolio) Positions {
	p := Positions{}
	for _, m := range high.Members {
		p[m.Ticker] += m.Weight * s.LongAllocation
	}
	for _, m := range low.Members {
		p[m.Ticker] -= m.Weight * s.ShortAllocation
	}
	return p
}

// 纯多头：只做多高因子组
type LongOnly struct {
	Allocation float64
}

func NewLongOnly() LongOnly {
	return LongOnly{Allocation: 1}
}

func (s LongOnly) Class() string {
	return "LongOnly"
}

func (s LongOnly) NextWeights(high, low evaluate.Portfolio) Positions {
	p := Positions{}
	for _, m := range high.Members {
		p[m.Ticker] += m.Weight * s.Allocation
	}
	return p
}

// 按名称创建策略
func NewStrategy(class string) (Strategy, bool) {
	switch class {
	case "LongShort", "long_short":
		return NewLongShort(), true
	case "LongOnly", "long_only":
		return NewLongOnly(), true
	default:
		return nil, false
	}
}
