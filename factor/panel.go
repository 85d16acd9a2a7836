/*
- @Author: aztec
- @Date: 2024-02-06 10:15:02
- @Description: 在整个股票池上计算因子，得到截面序列
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factor

import (
	"time"

	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/serenity0102/factor-modelling-mining/data"
)

// 计算股票池中每只股票的因子值
// 返回按股票分组的原始值，以及按交易日历对齐后的截面序列
// 某股票在某日无价格时，该截面中对应位置为无效
func ComputePanel(f Factor, u *data.Universe, start, end time.Time) ([]Value, common.SectionSequence) {
	tickers := u.Tickers()
	dates := u.DatesIn(start, end)

	seq := common.SectionSequence{Tickers: tickers, Data: make([]common.SectionData, len(dates))}
	dateIndex := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		seq.Data[i] = common.NewSectionData(d, tickers)
		dateIndex[d] = i
	}

	values := []Value{}
	for j, t := range tickers {
		h, _ := u.History(t)
		vs := f.Compute(t, start, end, h)
		values = append(values, vs...)
		for _, v := range vs {
			if i, ok := dateIndex[v.Date]; ok && v.Valid {
				seq.Data[i].Values[j] = v.V
				seq.Data[i].Valid[j] = true
			}
		}
	}

	return values, seq
}
