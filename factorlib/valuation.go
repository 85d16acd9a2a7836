/*
- @Author: aztec
- @Date: 2024-02-07 10:20:05
- @Description: 估值因子
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factorlib

import (
	"github.com/serenity0102/factor-modelling-mining/data"
	"github.com/serenity0102/factor-modelling-mining/factor"
)

var metaPB = factor.Meta{
	Name:        NamePB,
	Type:        factor.TypeValuation,
	Description: "Price to book value per share",
}

var metaPE = factor.Meta{
	Name:        NamePE,
	Type:        factor.TypeValuation,
	Description: "Price to earnings per share",
}

var metaPEG = factor.Meta{
	Name:        NamePEG,
	Type:        factor.TypeValuation,
	Description: "PE divided by earnings growth in percent",
}

var pb = closeOver(FieldBookValuePerShare)
var pe = closeOver(FieldEPS)

func peg(h *data.History, i int) (float64, bool) {
	v, ok := pe(h, i)
	if !ok {
		return 0, false
	}
	g, ok := h.FieldAsOf(h.Prices[i].Date, FieldEarningsGrowth)
	if !ok {
		return 0, false
	}
	return ratio(v, g*100)
}
