/*
- @Author: aztec
- @Date: 2024-02-07 10:02:47
- @Description: 流动性因子
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factorlib

import (
	"github.com/serenity0102/factor-modelling-mining/data"
	"github.com/serenity0102/factor-modelling-mining/factor"
)

var metaTradingVolume = factor.Meta{
	Name:        NameTradingVolume,
	Type:        factor.TypeLiquidity,
	Description: "Volume relative to its trailing mean over the window",
}

// 当日成交量 / 之前window日的平均成交量
// 窗口内任一日成交量缺失则无定义
func relativeVolume(window int) fnValue {
	return func(h *data.History, i int) (float64, bool) {
		if i < window {
			return 0, false
		}

		cur := h.Prices[i].Volume
		if !cur.IsPositive() {
			return 0, false
		}

		sum := 0.0
		for j := i - window; j < i; j++ {
			v := h.Prices[j].Volume
			if !v.IsPositive() {
				return 0, false
			}
			sum += v.InexactFloat64()
		}

		return ratio(cur.InexactFloat64(), sum/float64(window))
	}
}
