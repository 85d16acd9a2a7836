/*
- @Author: aztec
- @Date: 2024-02-10 10:05:31
- @Description: 因子检验结果汇总
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package evaluate

import (
	"fmt"
	"math"

	"github.com/jedib0t/go-pretty/table"
	"github.com/serenity0102/factor-modelling-mining/common"
)

// 一个因子在所有股票上的检验汇总
type Summary struct {
	Factor         string
	Total          int     // 参与检验的股票数
	Tested         int     // 得到有效回归的股票数
	Insufficient   int     // 有异常状态的股票数
	AvgBeta        float64 // 以下平均值只统计有效回归
	AvgTStat       float64
	AvgRSquared    float64
	Significant    int  // |t|>SignificanceThreshold的数量
	FDRApplied     bool // 是否做了BH校正
	SignificantFDR int  // BH校正后仍显著的数量
}

func Summarize(factor string, results []RegressionResult, cfg TestConfig) Summary {
	s := Summary{Factor: factor, Total: len(results)}

	pvalues := []float64{}
	for _, r := range results {
		if r.Condition != common.CondNone {
			s.Insufficient++
			continue
		}
		s.Tested++
		s.AvgBeta += r.Beta
		s.AvgTStat += r.TStat
		s.AvgRSquared += r.RSquared
		if r.Significant() {
			s.Significant++
		}
		pvalues = append(pvalues, r.PValue)
	}

	if s.Tested > 0 {
		n := float64(s.Tested)
		s.AvgBeta /= n
		s.AvgTStat /= n
		s.AvgRSquared /= n
	} else {
		s.AvgBeta, s.AvgTStat, s.AvgRSquared = math.NaN(), math.NaN(), math.NaN()
	}

	if cfg.FDRControl {
		s.FDRApplied = true
		for _, rej := range BenjaminiHochberg(pvalues, cfg.FDRLevel) {
			if rej {
				s.SignificantFDR++
			}
		}
	}

	return s
}

func (s Summary) ToTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("factor %s", s.Factor))
	t.AppendHeader(table.Row{"item", "value"})
	t.AppendRow(table.Row{"tickers", s.Total})
	t.AppendRow(table.Row{"tested", s.Tested})
	t.AppendRow(table.Row{"insufficient", s.Insufficient})
	t.AppendRow(table.Row{"avg beta", fmt.Sprintf("%.6f", s.AvgBeta)})
	t.AppendRow(table.Row{"avg t", fmt.Sprintf("%.4f", s.AvgTStat)})
	t.AppendRow(table.Row{"avg r2", fmt.Sprintf("%.4f", s.AvgRSquared)})
	t.AppendRow(table.Row{fmt.Sprintf("|t|>%.2f", SignificanceThreshold), s.Significant})
	if s.FDRApplied {
		t.AppendRow(table.Row{"significant (BH)", s.SignificantFDR})
	}
	return t
}
