/*
- @Author: aztec
- @Date: 2024-02-07 09:30:10
- @Description: 技术面因子
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factorlib

import (
	"github.com/serenity0102/factor-modelling-mining/data"
	"github.com/serenity0102/factor-modelling-mining/factor"
)

var metaRSI = factor.Meta{
	Name:        NameRSI,
	Type:        factor.TypeTechnical,
	Description: "Relative Strength Index over a trailing window of price changes",
}

var metaROC = factor.Meta{
	Name:        NameROC,
	Type:        factor.TypeTechnical,
	Description: "Rate of change in percent versus the close window days earlier",
}

// RSI，使用简单平均
// 需要window个价格变动，即window+1个价格
func rsi(window int) fnValue {
	return func(h *data.History, i int) (float64, bool) {
		if i < window {
			return 0, false
		}

		gain, loss := 0.0, 0.0
		for j := i - window + 1; j <= i; j++ {
			d := h.Prices[j].Close.Sub(h.Prices[j-1].Close).InexactFloat64()
			if d > 0 {
				gain += d
			} else {
				loss -= d
			}
		}

		avgGain := gain / float64(window)
		avgLoss := loss / float64(window)
		if avgLoss == 0 {
			if avgGain == 0 {
				return 50, true
			}
			return 100, true
		}

		rs := avgGain / avgLoss
		return 100 - 100/(1+rs), true
	}
}

func roc(window int) fnValue {
	return func(h *data.History, i int) (float64, bool) {
		if i < window {
			return 0, false
		}
		p0 := h.Prices[i-window].Close.InexactFloat64()
		p1 := h.Prices[i].Close.InexactFloat64()
		return (p1/p0 - 1) * 100, true
	}
}
