/*
- @Author: aztec
- @Date: 2024-02-16 09:48:19
- @Description: 把因子值、因子收益、回测指标写入influxdb
- @以时间、股票、因子名为key
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package influx

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/influxdata/influxdb/client/v2"
	"github.com/serenity0102/factor-modelling-mining/analysis"
	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/serenity0102/factor-modelling-mining/runner"
)

const logPrefix = "influx"

// measurement
const (
	MeasurementValues   = "factor_values"
	MeasurementReturns  = "factor_returns"
	MeasurementBacktest = "backtest"

	// 净值曲线，每个有效估值日一个点
	MeasurementBacktestSeries = "backtest_series"
)

type Sink struct {
	ic       client.Client
	database string
}

func New(cfg runner.InfluxConfig) (*Sink, error) {
	if len(cfg.Addr) == 0 {
		return nil, errors.New("influx addr not configured")
	}
	ic, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("create influx client: %w", err)
	}
	common.LogNormal(logPrefix, "influx client created, addr=%s, db=%s", cfg.Addr, cfg.Database)
	return NewWithClient(ic, cfg.Database), nil
}

func NewWithClient(ic client.Client, database string) *Sink {
	return &Sink{ic: ic, database: database}
}

func (s *Sink) Name() string {
	return "influx"
}

func (s *Sink) Close() error {
	return s.ic.Close()
}

func (s *Sink) Write(ctx context.Context, res *analysis.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bp, err := s.Points(res)
	if err != nil {
		return err
	}
	if len(bp.Points()) == 0 {
		return nil
	}
	if err := s.ic.Write(bp); err != nil {
		return fmt.Errorf("write influx: %w", err)
	}
	common.LogNormal(logPrefix, "%s written, %d points", res.Key.String(), len(bp.Points()))
	return nil
}

// 把结果转换成一批point
func (s *Sink) Points(res *analysis.Result) (client.BatchPoints, error) {
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{Database: s.database, Precision: "s"})
	if err != nil {
		return nil, err
	}

	add := func(name string, tags map[string]string, fields map[string]interface{}, t time.Time) error {
		if len(fields) == 0 {
			return nil
		}
		pt, err := client.NewPoint(name, tags, fields, t)
		if err != nil {
			return fmt.Errorf("new point %s: %w", name, err)
		}
		bp.AddPoint(pt)
		return nil
	}

	for _, v := range res.Values {
		if !v.Valid {
			continue
		}
		tags := map[string]string{"factor": v.Factor, "type": string(v.Type), "ticker": v.Ticker, "config": res.Key.ConfigHash}
		if err := add(MeasurementValues, tags, finiteFields(map[string]float64{"value": v.V}), v.Date); err != nil {
			return nil, err
		}
	}

	keyTags := func(extra ...string) map[string]string {
		tags := map[string]string{"factor": res.Key.Factor, "universe": res.Key.UniverseHash, "config": res.Key.ConfigHash}
		for i := 0; i+1 < len(extra); i += 2 {
			tags[extra[i]] = extra[i+1]
		}
		return tags
	}

	for _, p := range res.FactorReturns {
		fields := map[string]float64{"return": p.Return, "high": p.HighReturn, "low": p.LowReturn}
		if err := add(MeasurementReturns, keyTags(), finiteFields(fields), p.Date); err != nil {
			return nil, err
		}
	}
	// IC以截面日期为时间，单独成点
	for _, p := range res.IC {
		if err := add(MeasurementReturns, keyTags(), finiteFields(map[string]float64{"ic": p.IC}), p.Time); err != nil {
			return nil, err
		}
	}

	for _, bt := range res.Backtests {
		tags := keyTags("strategy", bt.StrategyID)
		fields := map[string]float64{
			"total_return":      bt.TotalReturn,
			"annualized_return": bt.AnnualizedReturn,
			"volatility":        bt.Volatility,
			"sharpe_ratio":      bt.SharpeRatio,
			"max_drawdown":      bt.MaxDrawdown,
			"win_rate":          bt.WinRate,
			"turnover":          bt.Turnover,
		}
		if err := add(MeasurementBacktest, tags, finiteFields(fields), res.Key.End); err != nil {
			return nil, err
		}
		for i, d := range bt.Dates {
			fields := map[string]float64{"period_return": bt.PeriodReturns[i], "cumulative": bt.Cumulative[i]}
			if err := add(MeasurementBacktestSeries, tags, finiteFields(fields), d); err != nil {
				return nil, err
			}
		}
	}

	return bp, nil
}

// influx不接受NaN和Inf
func finiteFields(m map[string]float64) map[string]interface{} {
	fields := make(map[string]interface{}, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			fields[k] = v
		}
	}
	return fields
}
