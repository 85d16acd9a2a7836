/*
- @Author: aztec
- @Date: 2024-02-10 14:40:02
- @Description: 多因子合成。各因子截面标准化后加权求和
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package evaluate

import (
	"slices"
	"time"

	"github.com/serenity0102/factor-modelling-mining/common"
	"gonum.org/v1/gonum/stat"
)

// 截面z-score。有效值少于2个或标准差为0时，全部无效
func ZScore(section common.SectionData) common.SectionData {
	out := common.NewSectionData(section.Time, section.Tickers)

	vs := []float64{}
	for i, v := range section.Values {
		if section.Valid[i] {
			vs = append(vs, v)
		}
	}
	if len(vs) < 2 {
		return out
	}
	mean, std := stat.MeanStdDev(vs, nil)
	if std == 0 {
		return out
	}

	for i, v := range section.Values {
		if section.Valid[i] {
			out.Values[i] = (v - mean) / std
			out.Valid[i] = true
		}
	}
	return out
}

// 合成因子。panels必须有相同的股票与日期，weights与panels等长
// 某股票只有在所有因子上都有效时，合成值才有效
func Composite(panels []common.SectionSequence, weights []float64) (common.SectionSequence, error) {
	if len(panels) == 0 || len(panels) != len(weights) {
		return common.SectionSequence{}, common.NewConditionError(common.CondAlignment, "", time.Time{}, "%d panels, %d weights", len(panels), len(weights))
	}

	base := panels[0]
	for _, p := range panels {
		if !p.Valid() || slices.Compare(p.Tickers, base.Tickers) != 0 || len(p.Data) != len(base.Data) {
			return common.SectionSequence{}, common.NewConditionError(common.CondAlignment, "", time.Time{}, "panels not aligned")
		}
		for i := range p.Data {
			if !p.Data[i].Time.Equal(base.Data[i].Time) {
				return common.SectionSequence{}, common.NewConditionError(common.CondAlignment, "", p.Data[i].Time, "panel dates differ")
			}
		}
	}

	out := common.SectionSequence{Tickers: slices.Clone(base.Tickers), Data: make([]common.SectionData, len(base.Data))}
	for i := range base.Data {
		sd := common.NewSectionData(base.Data[i].Time, base.Tickers)
		for j := range sd.Valid {
			sd.Valid[j] = true
		}
		for k, p := range panels {
			z := ZScore(p.Data[i])
			for j := range sd.Values {
				if !z.Valid[j] {
					sd.Valid[j] = false
					continue
				}
				sd.Values[j] += weights[k] * z.Values[j]
			}
		}
		for j := range sd.Values {
			if !sd.Valid[j] {
				sd.Values[j] = 0
			}
		}
		out.Data[i] = sd
	}
	return out, nil
}
