/*
- @Author: aztec
- @Date: 2024-01-15 09:51:41
- @Description: 信息系数。对应alphalens的information tear sheet
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package evaluate

import (
	"math"
	"slices"
	"time"

	"github.com/serenity0102/factor-modelling-mining/common"
	"gonum.org/v1/gonum/stat"
)

// 一个截面上的IC
type ICPoint struct {
	Time time.Time // 截面日期
	IC   float64
	N    int // 参与计算的股票数
}

type ICSummary struct {
	MeanIC float64
	StdIC  float64
	ICIR   float64 // MeanIC/StdIC，StdIC为0时为0
	N      int
}

// 平均秩，相同值取平均
func ranks(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		if xs[a] < xs[b] {
			return -1
		} else if xs[a] > xs[b] {
			return 1
		}
		return 0
	})

	r := make([]float64, len(xs))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			r[idx[k]] = avg
		}
		i = j + 1
	}
	return r
}

// Spearman秩相关系数
func SpearmanCorr(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	return stat.Correlation(ranks(x), ranks(y), nil)
}

// 每个截面上，因子值与下一交易日收益的秩相关
// 有效样本少于3个、相关系数无定义或下一交易日晚于end的截面被跳过
func ICSeries(panel common.SectionSequence, prices PriceSource, end time.Time) []ICPoint {
	points := []ICPoint{}
	for _, sd := range panel.Data {
		next, ok := nextWithin(prices, sd.Time, end)
		if !ok {
			continue
		}

		fvs := []float64{}
		rets := []float64{}
		for i, t := range sd.Tickers {
			if !sd.Valid[i] {
				continue
			}
			p0, ok0 := prices.Close(t, sd.Time)
			p1, ok1 := prices.Close(t, next)
			if !ok0 || !ok1 {
				continue
			}
			fvs = append(fvs, sd.Values[i])
			rets = append(rets, p1/p0-1)
		}

		if len(fvs) < 3 {
			continue
		}
		ic := SpearmanCorr(fvs, rets)
		if math.IsNaN(ic) {
			continue
		}
		points = append(points, ICPoint{Time: sd.Time, IC: ic, N: len(fvs)})
	}
	return points
}

func SummarizeIC(points []ICPoint) ICSummary {
	s := ICSummary{N: len(points)}
	if len(points) == 0 {
		return s
	}
	ics := make([]float64, len(points))
	for i, p := range points {
		ics[i] = p.IC
	}
	if len(ics) == 1 {
		s.MeanIC = ics[0]
		return s
	}
	s.MeanIC, s.StdIC = stat.MeanStdDev(ics, nil)
	if s.StdIC > 0 {
		s.ICIR = s.MeanIC / s.StdIC
	}
	return s
}
