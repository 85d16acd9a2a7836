/*
- @Author: aztec
- @Date: 2024-02-07 09:12:33
- @Description: 由单个取值函数定义的因子
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factorlib

import (
	"fmt"
	"time"

	"github.com/serenity0102/factor-modelling-mining/data"
	"github.com/serenity0102/factor-modelling-mining/factor"
)

type simpleFactor struct {
	meta      factor.Meta
	smoothing int
	fn        fnValue
}

func (f *simpleFactor) Meta() factor.Meta {
	return f.meta
}

func (f *simpleFactor) Compute(ticker string, start, end time.Time, h *data.History) []factor.Value {
	return computeSeries(f.meta, ticker, start, end, h, f.smoothing, f.fn)
}

func checkConfig(name string, cfg factor.Config) error {
	if cfg.Window < 0 {
		return fmt.Errorf("%s: negative window %d", name, cfg.Window)
	}
	if cfg.Smoothing < 0 {
		return fmt.Errorf("%s: negative smoothing %d", name, cfg.Smoothing)
	}
	return nil
}

// 不需要窗口的因子
func simpleBuilder(meta factor.Meta, fn fnValue) factor.Builder {
	return func(cfg factor.Config) (factor.Factor, error) {
		if err := checkConfig(meta.Name, cfg); err != nil {
			return nil, err
		}
		return &simpleFactor{meta: meta, smoothing: cfg.Smoothing, fn: fn}, nil
	}
}

// 需要窗口的因子，mk根据窗口生成取值函数
func windowBuilder(meta factor.Meta, defWindow int, mk func(window int) fnValue) factor.Builder {
	return func(cfg factor.Config) (factor.Factor, error) {
		if err := checkConfig(meta.Name, cfg); err != nil {
			return nil, err
		}
		return &simpleFactor{meta: meta, smoothing: cfg.Smoothing, fn: mk(cfg.WindowOr(defWindow))}, nil
	}
}
