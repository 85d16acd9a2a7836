/*
- @Author: aztec
- @Date: 2024-02-09 14:02:19
- @Description: 显著性检验。单变量OLS：Ri = α + β·F + ε
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package evaluate

import (
	"math"
	"time"

	"github.com/serenity0102/factor-modelling-mining/common"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// 将股票收益对因子收益回归
// 两个序列必须等长且日期一一对应，否则返回AlignmentError
// 样本不足、因子收益无波动或残差为0时，结果标记为InsufficientSample，不计算β
func Test(factor, ticker string, tickerReturns, factorReturns []DatedReturn, cfg TestConfig) (RegressionResult, error) {
	// 未定义的统计量为NaN
	nan := math.NaN()
	res := RegressionResult{
		Factor: factor, Ticker: ticker, NObs: len(tickerReturns),
		Alpha: nan, Beta: nan, TStat: nan, PValue: nan, StdErr: nan, ConfLow: nan, ConfHigh: nan, RSquared: nan,
	}

	if len(tickerReturns) != len(factorReturns) {
		res.Condition = common.CondAlignment
		return res, common.NewConditionError(common.CondAlignment, ticker, time.Time{},
			"length %d vs %d", len(tickerReturns), len(factorReturns))
	}
	for i := range tickerReturns {
		if !tickerReturns[i].Date.Equal(factorReturns[i].Date) {
			res.Condition = common.CondAlignment
			return res, common.NewConditionError(common.CondAlignment, ticker, tickerReturns[i].Date,
				"factor return dated %s", factorReturns[i].Date.Format(time.DateOnly))
		}
	}

	n := len(tickerReturns)
	minObs := max(cfg.MinObservations, 3)
	if n < minObs {
		res.Condition = common.CondInsufficientSample
		return res, nil
	}

	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = factorReturns[i].Value
		y[i] = tickerReturns[i].Value
	}

	xMean := stat.Mean(x, nil)
	sxx := 0.0
	for _, v := range x {
		sxx += (v - xMean) * (v - xMean)
	}
	if sxx == 0 || floats.Min(x) == floats.Max(x) {
		res.Condition = common.CondInsufficientSample
		return res, nil
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)

	estimates := make([]float64, n)
	residuals := make([]float64, n)
	for i := range x {
		estimates[i] = alpha + beta*x[i]
		residuals[i] = y[i] - estimates[i]
	}
	sse := floats.Dot(residuals, residuals)
	yMean := stat.Mean(y, nil)
	syy := 0.0
	for _, v := range y {
		syy += (v - yMean) * (v - yMean)
	}
	// 完全拟合时残差只剩舍入误差
	if sse <= residualEps*syy {
		res.Condition = common.CondInsufficientSample
		return res, nil
	}

	df := float64(n - 2)
	se := math.Sqrt(sse / df / sxx)
	if se == 0 || math.IsNaN(se) || math.IsInf(se, 0) {
		res.Condition = common.CondInsufficientSample
		return res, nil
	}

	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	tstat := beta / se
	tcrit := tdist.Quantile(0.975)

	res.Alpha = alpha
	res.Beta = beta
	res.StdErr = se
	res.TStat = tstat
	res.PValue = 2 * tdist.Survival(math.Abs(tstat))
	res.ConfLow = beta - tcrit*se
	res.ConfHigh = beta + tcrit*se
	res.RSquared = clamp01(stat.RSquaredFrom(estimates, y, nil))
	return res, nil
}

const residualEps = 1e-20

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
