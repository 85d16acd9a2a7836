/*
- @Author: aztec
- @Date: 2024-02-05 10:12:31
- @Description: 计算单元内可恢复的异常状态
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package common

import (
	"errors"
	"fmt"
	"time"
)

// 异常状态。结果记录上携带状态而不是数值
type Condition int

const (
	CondNone Condition = iota
	CondMissingData
	CondInsufficientSample
	CondAlignment
	CondInsufficientUniverse
)

var (
	ErrMissingData          = errors.New("missing data")
	ErrInsufficientSample   = errors.New("insufficient sample")
	ErrAlignment            = errors.New("alignment error")
	ErrInsufficientUniverse = errors.New("insufficient universe")
)

func (c Condition) String() string {
	switch c {
	case CondNone:
		return "None"
	case CondMissingData:
		return "MissingData"
	case CondInsufficientSample:
		return "InsufficientSample"
	case CondAlignment:
		return "AlignmentError"
	case CondInsufficientUniverse:
		return "InsufficientUniverse"
	default:
		return fmt.Sprintf("Condition(%d)", int(c))
	}
}

func (c Condition) sentinel() error {
	switch c {
	case CondMissingData:
		return ErrMissingData
	case CondInsufficientSample:
		return ErrInsufficientSample
	case CondAlignment:
		return ErrAlignment
	case CondInsufficientUniverse:
		return ErrInsufficientUniverse
	default:
		return nil
	}
}

// 带上下文的状态错误，可以用errors.Is与对应的哨兵错误比较
type ConditionError struct {
	Cond   Condition
	Ticker string
	Date   time.Time
	Msg    string
}

func NewConditionError(cond Condition, ticker string, date time.Time, format string, args ...interface{}) *ConditionError {
	return &ConditionError{Cond: cond, Ticker: ticker, Date: date, Msg: fmt.Sprintf(format, args...)}
}

func (e *ConditionError) Error() string {
	s := e.Cond.String()
	if e.Ticker != "" {
		s += " ticker=" + e.Ticker
	}
	if !e.Date.IsZero() {
		s += " date=" + e.Date.Format(time.DateOnly)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *ConditionError) Is(target error) bool {
	return target != nil && target == e.Cond.sentinel()
}

// 从错误链中提取状态，非状态错误返回CondNone
func ConditionOf(err error) Condition {
	var ce *ConditionError
	if errors.As(err, &ce) {
		return ce.Cond
	}
	switch {
	case errors.Is(err, ErrMissingData):
		return CondMissingData
	case errors.Is(err, ErrInsufficientSample):
		return CondInsufficientSample
	case errors.Is(err, ErrAlignment):
		return CondAlignment
	case errors.Is(err, ErrInsufficientUniverse):
		return CondInsufficientUniverse
	}
	return CondNone
}
