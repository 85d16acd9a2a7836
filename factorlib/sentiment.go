/*
- @Author: aztec
- @Date: 2024-02-07 11:36:12
- @Description: 情绪因子。情绪分以快照形式提供，披露日即观测日
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factorlib

import (
	"github.com/serenity0102/factor-modelling-mining/data"
	"github.com/serenity0102/factor-modelling-mining/factor"
)

var metaAvgSentiment = factor.Meta{
	Name:        NameAvgSentiment,
	Type:        factor.TypeSentiment,
	Description: "Mean of the latest window sentiment observations",
}

var metaNewSentiment = factor.Meta{
	Name:        NameNewSentiment,
	Type:        factor.TypeSentiment,
	Description: "Latest sentiment observation",
}

func avgSentiment(window int) fnValue {
	return func(h *data.History, i int) (float64, bool) {
		obs := h.FieldSeriesAsOf(h.Prices[i].Date, FieldSentiment)
		if len(obs) < window {
			return 0, false
		}
		sum := 0.0
		for _, o := range obs[len(obs)-window:] {
			sum += o.Value
		}
		return sum / float64(window), true
	}
}

var newSentiment = fieldValue(FieldSentiment)
