/*
- @Author: aztec
- @Date: 2024-01-17 11:53:54
- @Description: 因子的定义
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factor

import (
	"time"

	"github.com/serenity0102/factor-modelling-mining/data"
)

// 因子类型
type Type string

const (
	TypeTechnical       Type = "Technical"
	TypeLiquidity       Type = "Liquidity"
	TypeValuation       Type = "Valuation"
	TypeFinancialHealth Type = "Financial Health"
	TypeFinancialRisk   Type = "Financial Risk"
	TypeOperational     Type = "Operational"
	TypeGrowth          Type = "Growth"
	TypeESG             Type = "ESG"
	TypeFamaFrench      Type = "Fama-French"
	TypeSentiment       Type = "Sentiment"
	TypeComposite       Type = "Composite"
)

// 因子元信息
type Meta struct {
	Name        string
	Type        Type
	Description string
}

// 因子值。Valid为false表示数据不足、无法定义，此时V无意义
type Value struct {
	Factor string
	Type   Type
	Ticker string
	Date   time.Time
	V      float64
	Valid  bool
}

// 因子
// Compute对h中[start, end]内的每个交易日给出一个值，按日期升序
// 实现必须是纯函数：相同输入得到相同输出，不修改h
type Factor interface {
	Meta() Meta
	Compute(ticker string, start, end time.Time, h *data.History) []Value
}

// 构造时固定的因子参数
type Config struct {
	Window    int                `json:"window" yaml:"window"`       // 回看窗口
	Smoothing int                `json:"smoothing" yaml:"smoothing"` // 平滑窗口，0表示不平滑
	Params    map[string]float64 `json:"params" yaml:"params"`       // 其他参数
}

// 窗口未配置时取默认值
func (c Config) WindowOr(def int) int {
	if c.Window > 0 {
		return c.Window
	}
	return def
}

func (c Config) Param(name string, def float64) float64 {
	if v, ok := c.Params[name]; ok {
		return v
	}
	return def
}
