/*
- @Author: aztec
- @Date: 2024-02-05 11:03:47
- @Description: 日期工具。所有日期统一为UTC零点
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package common

import "time"

// 截断到UTC日期
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// 解析ISO-8601日期（2006-01-02）
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

func MustParseDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// 闭区间[start, end]
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
