/*
- @Author: aztec
- @Date: 2024-02-13 10:20:16
- @Description: 一个计算单元：(因子, 股票池, 时间区间) -> 检验与回测结果
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/serenity0102/factor-modelling-mining/backtest"
	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/serenity0102/factor-modelling-mining/data"
	"github.com/serenity0102/factor-modelling-mining/factor"
	"github.com/serenity0102/factor-modelling-mining/factor/evaluate"
)

const logPrefix = "analysis"

// 结果的主键
type Key struct {
	Factor       string
	Start        time.Time
	End          time.Time
	UniverseHash string
	ConfigHash   string // 因子与检验参数的指纹，同名因子不同参数的结果互不覆盖
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", k.Factor, k.Start.Format(time.DateOnly), k.End.Format(time.DateOnly), k.UniverseHash, k.ConfigHash)
}

// 合成因子的组成部分
type Component struct {
	Factor string        `json:"factor" yaml:"factor"`
	Weight float64       `json:"weight" yaml:"weight"`
	Config factor.Config `json:"config" yaml:"config"`
}

// 计算单元
type Unit struct {
	Factor       string
	FactorConfig factor.Config
	Components   []Component // 非空时Factor为合成因子的名称
	Start        time.Time
	End          time.Time
	Portfolio    evaluate.PortfolioConfig
	Test         evaluate.TestConfig
	Backtest     backtest.Config
	Strategies   []string // 为空时不回测
}

func NewUnit(factorName string, start, end time.Time) Unit {
	return Unit{
		Factor:     factorName,
		Start:      common.DateOf(start),
		End:        common.DateOf(end),
		Portfolio:  evaluate.DefaultPortfolioConfig(),
		Test:       evaluate.DefaultTestConfig(),
		Backtest:   backtest.DefaultConfig(),
		Strategies: []string{"LongShort", "LongOnly"},
	}
}

// 参数指纹：因子参数、组成、组合、检验、回测与策略，不含名称和区间
// map按key排序编码，相同参数总得到相同指纹
func (u Unit) Fingerprint() string {
	params := struct {
		FactorConfig factor.Config            `json:"factor_config"`
		Components   []Component              `json:"components"`
		Portfolio    evaluate.PortfolioConfig `json:"portfolio"`
		Test         evaluate.TestConfig      `json:"test"`
		Backtest     backtest.Config          `json:"backtest"`
		Strategies   []string                 `json:"strategies"`
	}{u.FactorConfig, u.Components, u.Portfolio, u.Test, u.Backtest, u.Strategies}

	b, err := json.Marshal(params)
	if err != nil {
		// 只有NaN之类的参数会失败
		b = []byte(fmt.Sprintf("%+v", params))
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}

// 计算过程中遇到的可恢复异常
type Issue struct {
	Stage     string // construct / returns / test
	Date      time.Time
	Ticker    string
	Condition common.Condition
	Msg       string
}

func issueOf(stage string, err error) Issue {
	is := Issue{Stage: stage, Condition: common.ConditionOf(err), Msg: err.Error()}
	var ce *common.ConditionError
	if errors.As(err, &ce) {
		is.Date = ce.Date
		is.Ticker = ce.Ticker
		is.Msg = ce.Msg
	}
	return is
}

// 计算结果。生成后只读
type Result struct {
	Key           Key
	Meta          factor.Meta
	Values        []factor.Value
	Pairs         []evaluate.PortfolioPair
	FactorReturns []evaluate.FactorReturnPoint
	Regressions   []evaluate.RegressionResult
	Summary       evaluate.Summary
	IC            []evaluate.ICPoint
	ICSummary     evaluate.ICSummary
	Backtests     []backtest.Result
	Issues        []Issue
}

// 条件统计
func (r *Result) Conditions() map[common.Condition]int {
	m := map[common.Condition]int{}
	for _, is := range r.Issues {
		m[is.Condition]++
	}
	for _, rr := range r.Regressions {
		if rr.Condition != common.CondNone {
			m[rr.Condition]++
		}
	}
	return m
}

func (u Unit) validate(reg *factor.Registry) error {
	if u.End.Before(u.Start) {
		return fmt.Errorf("end %s before start %s", u.End.Format(time.DateOnly), u.Start.Format(time.DateOnly))
	}
	if len(u.Components) == 0 && !reg.Has(u.Factor) {
		return fmt.Errorf("unknown factor %q", u.Factor)
	}
	for _, c := range u.Components {
		if !reg.Has(c.Factor) {
			return fmt.Errorf("unknown component factor %q", c.Factor)
		}
	}
	if err := u.Portfolio.Validate(); err != nil {
		return err
	}
	for _, s := range u.Strategies {
		if _, ok := backtest.NewStrategy(s); !ok {
			return fmt.Errorf("unknown strategy %q", s)
		}
	}
	if len(u.Strategies) > 0 {
		bc := u.Backtest
		bc.Portfolio = u.Portfolio
		if err := bc.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// 因子值与截面序列
func computePanel(reg *factor.Registry, u *data.Universe, unit Unit) (factor.Meta, []factor.Value, common.SectionSequence, error) {
	if len(unit.Components) == 0 {
		f, err := reg.New(unit.Factor, unit.FactorConfig)
		if err != nil {
			return factor.Meta{}, nil, common.SectionSequence{}, err
		}
		values, panel := factor.ComputePanel(f, u, unit.Start, unit.End)
		return f.Meta(), values, panel, nil
	}

	panels := make([]common.SectionSequence, len(unit.Components))
	weights := make([]float64, len(unit.Components))
	for i, c := range unit.Components {
		f, err := reg.New(c.Factor, c.Config)
		if err != nil {
			return factor.Meta{}, nil, common.SectionSequence{}, err
		}
		_, panels[i] = factor.ComputePanel(f, u, unit.Start, unit.End)
		weights[i] = c.Weight
	}
	panel, err := evaluate.Composite(panels, weights)
	if err != nil {
		return factor.Meta{}, nil, common.SectionSequence{}, err
	}

	meta := factor.Meta{Name: unit.Factor, Type: factor.TypeComposite, Description: fmt.Sprintf("composite of %d factors", len(unit.Components))}
	values := []factor.Value{}
	for j, t := range panel.Tickers {
		for _, sd := range panel.Data {
			values = append(values, factor.Value{Factor: meta.Name, Type: meta.Type, Ticker: t, Date: sd.Time, V: sd.Values[j], Valid: sd.Valid[j]})
		}
	}
	return meta, values, panel, nil
}

// 运行一个计算单元
// 配置错误在计算开始前返回；计算中的异常记录在结果中，不中断其他部分
func Run(reg *factor.Registry, u *data.Universe, unit Unit) (*Result, error) {
	unit.Start = common.DateOf(unit.Start)
	unit.End = common.DateOf(unit.End)
	if err := unit.validate(reg); err != nil {
		return nil, fmt.Errorf("unit %s: %w", unit.Factor, err)
	}

	meta, values, panel, err := computePanel(reg, u, unit)
	if err != nil {
		return nil, fmt.Errorf("unit %s: %w", unit.Factor, err)
	}

	r := &Result{
		Key:    Key{Factor: unit.Factor, Start: unit.Start, End: unit.End, UniverseHash: u.Hash(), ConfigHash: unit.Fingerprint()},
		Meta:   meta,
		Values: values,
	}

	// 组合
	for _, sd := range panel.Data {
		high, low, err := evaluate.Construct(sd, u, unit.Portfolio)
		if err != nil {
			r.Issues = append(r.Issues, issueOf("construct", err))
			continue
		}
		r.Pairs = append(r.Pairs, evaluate.PortfolioPair{Date: sd.Time, High: high, Low: low})
	}

	// 因子收益，收益日不超出End
	points, gaps := evaluate.Collect(evaluate.FactorReturns(unit.Factor, r.Pairs, u, unit.End))
	r.FactorReturns = points
	for _, g := range gaps {
		r.Issues = append(r.Issues, issueOf("returns", g))
	}

	// 显著性
	r.Regressions = testTickers(unit, u, points)
	r.Summary = evaluate.Summarize(unit.Factor, r.Regressions, unit.Test)

	// IC
	r.IC = evaluate.ICSeries(panel, u, unit.End)
	r.ICSummary = evaluate.SummarizeIC(r.IC)

	// 回测
	for _, class := range unit.Strategies {
		s, _ := backtest.NewStrategy(class)
		cfg := unit.Backtest
		cfg.Portfolio = unit.Portfolio
		if cfg.StrategyID == "" {
			cfg.StrategyID = fmt.Sprintf("%s-%s", unit.Factor, s.Class())
		}
		br, err := backtest.Run(cfg, s, panel, u)
		if err != nil {
			return nil, fmt.Errorf("unit %s backtest %s: %w", unit.Factor, class, err)
		}
		r.Backtests = append(r.Backtests, br)
	}

	common.LogNormal(logPrefix, "%s done: %d values, %d factor returns, %d issues, %d/%d significant",
		r.Key, len(r.Values), len(r.FactorReturns), len(r.Issues), r.Summary.Significant, r.Summary.Tested)
	return r, nil
}

// 每只股票的收益对因子收益回归。股票缺收益的日期从两个序列中同时剔除
func testTickers(unit Unit, u *data.Universe, points []evaluate.FactorReturnPoint) []evaluate.RegressionResult {
	dates := make([]time.Time, len(points))
	factorRet := make(map[time.Time]float64, len(points))
	for i, p := range points {
		dates[i] = p.Date
		factorRet[p.Date] = p.Return
	}

	results := make([]evaluate.RegressionResult, 0, u.Len())
	for _, t := range u.Tickers() {
		series := u.ReturnSeries(t, dates)
		tr := make([]evaluate.DatedReturn, len(series))
		fr := make([]evaluate.DatedReturn, len(series))
		for i, dv := range series {
			tr[i] = evaluate.DatedReturn{Date: dv.Date, Value: dv.Value}
			fr[i] = evaluate.DatedReturn{Date: dv.Date, Value: factorRet[dv.Date]}
		}

		res, err := evaluate.Test(unit.Factor, t, tr, fr, unit.Test)
		if err != nil {
			common.LogError(logPrefix, "test %s/%s: %s", unit.Factor, t, err.Error())
		}
		results = append(results, res)
	}
	return results
}
