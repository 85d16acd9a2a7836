/*
- @Author: aztec
- @Date: 2024-02-12 15:20:08
- @Description: 回测绩效指标
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package backtest

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

func computeMetrics(r *Result, turnovers []float64, periodsPerYear int, riskFreeRate float64) {
	n := len(r.PeriodReturns)
	if n == 0 {
		return
	}

	P := float64(periodsPerYear)
	wealth := 1 + r.Cumulative[n-1]
	r.TotalReturn = wealth - 1
	r.AnnualizedReturn = AnnualizedReturn(wealth, n, periodsPerYear)
	r.MaxDrawdown = MaxDrawdown(r.Cumulative)

	wins := 0
	for _, v := range r.PeriodReturns {
		if v > 0 {
			wins++
		}
	}
	r.WinRate = float64(wins) / float64(n)

	if n > 1 {
		mean, std := stat.MeanStdDev(r.PeriodReturns, nil)
		r.Volatility = std * math.Sqrt(P)
		if std > 0 {
			r.SharpeRatio = (mean - riskFreeRate/P) / std * math.Sqrt(P)
		}
	}

	if len(turnovers) > 0 {
		r.Turnover = stat.Mean(turnovers, nil)
	}
}

// 年化收益 (wealth)^(P/n) − 1，净值不为正时为−1
func AnnualizedReturn(wealth float64, n, periodsPerYear int) float64 {
	if n == 0 {
		return 0
	}
	if wealth <= 0 {
		return -1
	}
	return math.Pow(wealth, float64(periodsPerYear)/float64(n)) - 1
}

// 最大回撤，以正数表示。初始净值为1
func MaxDrawdown(cumulative []float64) float64 {
	peak := 1.0
	mdd := 0.0
	for _, c := range cumulative {
		w := 1 + c
		if w > peak {
			peak = w
		}
		if peak > 0 {
			if dd := (peak - w) / peak; dd > mdd {
				mdd = dd
			}
		}
	}
	return mdd
}
