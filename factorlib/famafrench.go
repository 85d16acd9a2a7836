/*
- @Author: aztec
- @Date: 2024-02-07 11:20:40
- @Description: Fama-French风格因子
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factorlib

import (
	"math"

	"github.com/serenity0102/factor-modelling-mining/data"
	"github.com/serenity0102/factor-modelling-mining/factor"
)

var metaSMB = factor.Meta{
	Name:        NameSMB,
	Type:        factor.TypeFamaFrench,
	Description: "Size exposure, negative log market cap (higher is smaller)",
}

var metaHML = factor.Meta{
	Name:        NameHML,
	Type:        factor.TypeFamaFrench,
	Description: "Value exposure, book value per share to price",
}

func smb(h *data.History, i int) (float64, bool) {
	c := h.Prices[i].MarketCap
	if !c.IsPositive() {
		return 0, false
	}
	return -math.Log(c.InexactFloat64()), true
}

func hml(h *data.History, i int) (float64, bool) {
	bv, ok := h.FieldAsOf(h.Prices[i].Date, FieldBookValuePerShare)
	if !ok {
		return 0, false
	}
	return ratio(bv, h.Prices[i].Close.InexactFloat64())
}
