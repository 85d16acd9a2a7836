/*
- @Author: aztec
- @Date: 2024-02-15 14:40:51
- @Description: 把计算结果写入postgres。同一结果重复写入会覆盖旧值
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/serenity0102/factor-modelling-mining/analysis"
	"github.com/serenity0102/factor-modelling-mining/common"
)

const logPrefix = "postgres"

const defaultTimeout = 30 * time.Second

type Sink struct {
	db      *sqlx.DB
	timeout time.Duration
}

// 连接数据库并建表
func Open(ctx context.Context, dsn string) (*Sink, error) {
	if len(dsn) == 0 {
		return nil, errors.New("postgres dsn not configured")
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	common.LogNormal(logPrefix, "connected, schema ready")
	return s, nil
}

func New(db *sqlx.DB) *Sink {
	return &Sink{db: db, timeout: defaultTimeout}
}

func (s *Sink) Name() string {
	return "postgres"
}

func (s *Sink) Close() error {
	return s.db.Close()
}

func (s *Sink) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// 整个结果在一个事务中写入
func (s *Sink) Write(ctx context.Context, res *analysis.Result) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	k := res.Key
	key := []any{k.Factor, k.Start, k.End, k.UniverseHash, k.ConfigHash}

	sm := res.Summary
	if _, err := tx.ExecContext(ctx, upsertSummary, append(cloneKey(key),
		string(res.Meta.Type), sm.Total, sm.Tested, sm.Insufficient,
		nullFloat(sm.AvgBeta), nullFloat(sm.AvgTStat), nullFloat(sm.AvgRSquared),
		sm.Significant, sm.FDRApplied, sm.SignificantFDR,
		nullFloat(res.ICSummary.MeanIC), nullFloat(res.ICSummary.ICIR))...); err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}

	details := make([][]any, 0, len(res.Regressions))
	for _, rr := range res.Regressions {
		details = append(details, append(cloneKey(key), rr.Ticker,
			nullFloat(rr.Alpha), nullFloat(rr.Beta), nullFloat(rr.TStat), nullFloat(rr.PValue),
			nullFloat(rr.StdErr), nullFloat(rr.ConfLow), nullFloat(rr.ConfHigh), nullFloat(rr.RSquared),
			rr.NObs, rr.Condition.String()))
	}
	if err := execEach(ctx, tx, upsertDetail, details); err != nil {
		return fmt.Errorf("upsert details: %w", err)
	}

	points := make([][]any, 0, len(res.FactorReturns))
	for _, p := range res.FactorReturns {
		points = append(points, append(cloneKey(key), p.Date, p.Return, p.HighReturn, p.LowReturn))
	}
	if err := execEach(ctx, tx, upsertTimeseries, points); err != nil {
		return fmt.Errorf("upsert timeseries: %w", err)
	}

	// 因子值只存有效值
	values := make([][]any, 0, len(res.Values))
	for _, v := range res.Values {
		if v.Valid && !math.IsNaN(v.V) && !math.IsInf(v.V, 0) {
			values = append(values, []any{v.Factor, k.ConfigHash, string(v.Type), v.Ticker, v.Date, v.V})
		}
	}
	if err := execEach(ctx, tx, upsertValue, values); err != nil {
		return fmt.Errorf("upsert values: %w", err)
	}

	bts := make([][]any, 0, len(res.Backtests))
	for _, bt := range res.Backtests {
		bts = append(bts, append(cloneKey(key), bt.StrategyID,
			nullFloat(bt.TotalReturn), nullFloat(bt.AnnualizedReturn), nullFloat(bt.Volatility),
			nullFloat(bt.SharpeRatio), nullFloat(bt.MaxDrawdown), nullFloat(bt.WinRate), nullFloat(bt.Turnover),
			len(bt.PeriodReturns), len(bt.Gaps)))
	}
	if err := execEach(ctx, tx, upsertBacktest, bts); err != nil {
		return fmt.Errorf("upsert backtests: %w", err)
	}

	// 净值曲线
	series := [][]any{}
	for _, bt := range res.Backtests {
		for i, d := range bt.Dates {
			series = append(series, append(cloneKey(key), bt.StrategyID, d, bt.PeriodReturns[i], bt.Cumulative[i]))
		}
	}
	if err := execEach(ctx, tx, upsertBacktestSeries, series); err != nil {
		return fmt.Errorf("upsert backtest series: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	common.LogNormal(logPrefix, "%s written: %d details, %d returns, %d values, %d backtests, %d backtest periods",
		k.String(), len(details), len(points), len(values), len(bts), len(series))
	return nil
}

// 预编译一次，逐行执行
func execEach(ctx context.Context, tx *sqlx.Tx, query string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, args := range rows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

func cloneKey(key []any) []any {
	return append(make([]any, 0, len(key)+12), key...)
}

// NaN、Inf存为NULL
func nullFloat(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
