/*
- @Author: aztec
- @Date: 2024-02-12 09:33:50
- @Description: 调仓周期
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package backtest

import (
	"fmt"
	"time"
)

type Schedule string

const (
	ScheduleDaily   Schedule = "D" // 每个交易日
	ScheduleWeekly  Schedule = "W" // 每周最后一个交易日
	ScheduleMonthly Schedule = "M" // 每月最后一个交易日
)

func (s Schedule) Validate() error {
	switch s {
	case ScheduleDaily, ScheduleWeekly, ScheduleMonthly:
		return nil
	default:
		return fmt.Errorf("invalid schedule %q", s)
	}
}

// dates[i]是否为调仓日
// 第一个交易日总是调仓；最后一个交易日之后没有持仓期，不调仓
func (s Schedule) IsRebalance(dates []time.Time, i int) bool {
	if i == 0 {
		return true
	}
	if i >= len(dates)-1 {
		return false
	}

	cur, next := dates[i], dates[i+1]
	switch s {
	case ScheduleWeekly:
		y0, w0 := cur.ISOWeek()
		y1, w1 := next.ISOWeek()
		return y0 != y1 || w0 != w1
	case ScheduleMonthly:
		return cur.Year() != next.Year() || cur.Month() != next.Month()
	default:
		return true
	}
}

// 所有调仓日
func (s Schedule) Dates(dates []time.Time) []time.Time {
	rs := []time.Time{}
	for i := range dates {
		if s.IsRebalance(dates, i) {
			rs = append(rs, dates[i])
		}
	}
	return rs
}
