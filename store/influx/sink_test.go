package influx

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/influxdata/influxdb/client/v2"
	"github.com/serenity0102/factor-modelling-mining/analysis"
	"github.com/serenity0102/factor-modelling-mining/backtest"
	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/serenity0102/factor-modelling-mining/factor"
	"github.com/serenity0102/factor-modelling-mining/factor/evaluate"
	"github.com/serenity0102/factor-modelling-mining/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 只记录写入的point
type fakeClient struct {
	client.Client
	batches []client.BatchPoints
	err     error
}

func (c *fakeClient) Write(bp client.BatchPoints) error {
	if c.err != nil {
		return c.err
	}
	c.batches = append(c.batches, bp)
	return nil
}

func (c *fakeClient) Close() error { return nil }

func sampleResult() *analysis.Result {
	d1 := common.MustParseDate("2024-01-02")
	d2 := common.MustParseDate("2024-01-03")
	d3 := common.MustParseDate("2024-01-04")
	return &analysis.Result{
		Key:  analysis.Key{Factor: "ROC", Start: d1, End: d2, UniverseHash: "abc", ConfigHash: "cfg1"},
		Meta: factor.Meta{Name: "ROC", Type: factor.TypeTechnical},
		Values: []factor.Value{
			{Factor: "ROC", Type: factor.TypeTechnical, Ticker: "AAA", Date: d1, V: 0.05, Valid: true},
			{Factor: "ROC", Type: factor.TypeTechnical, Ticker: "BBB", Date: d1, V: math.NaN(), Valid: false},
		},
		FactorReturns: []evaluate.FactorReturnPoint{
			{Factor: "ROC", Date: d2, Return: 0.01, HighReturn: 0.03, LowReturn: 0.02},
		},
		IC: []evaluate.ICPoint{{Time: d1, IC: 0.4, N: 3}, {Time: d2, IC: -0.1, N: 3}, {Time: d3, IC: 0.2, N: 3}},
		Backtests: []backtest.Result{
			{StrategyID: "ROC-LongShort", Dates: []time.Time{d2, d3}, PeriodReturns: []float64{0.01, 0.02},
				Cumulative: []float64{0.01, 1.01*1.02 - 1}, TotalReturn: 0.01, SharpeRatio: math.NaN()},
		},
	}
}

func TestPoints(t *testing.T) {
	s := NewWithClient(&fakeClient{}, "factors")
	bp, err := s.Points(sampleResult())
	require.NoError(t, err)
	assert.Equal(t, "factors", bp.Database())

	byName := map[string][]*client.Point{}
	for _, p := range bp.Points() {
		byName[p.Name()] = append(byName[p.Name()], p)
	}
	require.Len(t, byName[MeasurementValues], 1)
	require.Len(t, byName[MeasurementReturns], 4)
	require.Len(t, byName[MeasurementBacktest], 1)
	require.Len(t, byName[MeasurementBacktestSeries], 2)

	v := byName[MeasurementValues][0]
	assert.Equal(t, map[string]string{"factor": "ROC", "type": "Technical", "ticker": "AAA", "config": "cfg1"}, v.Tags())
	fields, err := v.Fields()
	require.NoError(t, err)
	assert.Equal(t, 0.05, fields["value"])

	// NaN指标不写入
	fields, err = byName[MeasurementBacktest][0].Fields()
	require.NoError(t, err)
	assert.NotContains(t, fields, "sharpe_ratio")
	assert.Equal(t, 0.01, fields["total_return"])
	assert.Equal(t, "ROC-LongShort", byName[MeasurementBacktest][0].Tags()["strategy"])

	// 净值曲线逐日成点
	res := sampleResult()
	for i, p := range byName[MeasurementBacktestSeries] {
		assert.True(t, res.Backtests[0].Dates[i].Equal(p.Time()))
		assert.Equal(t, "ROC-LongShort", p.Tags()["strategy"])
		fields, err := p.Fields()
		require.NoError(t, err)
		assert.Equal(t, res.Backtests[0].PeriodReturns[i], fields["period_return"])
		assert.Equal(t, res.Backtests[0].Cumulative[i], fields["cumulative"])
	}
}

func TestPointsKeepICOrder(t *testing.T) {
	s := NewWithClient(&fakeClient{}, "factors")
	res := sampleResult()
	for n := 0; n < 5; n++ {
		bp, err := s.Points(res)
		require.NoError(t, err)

		days := []string{}
		for _, p := range bp.Points() {
			fields, err := p.Fields()
			require.NoError(t, err)
			if _, ok := fields["ic"]; ok {
				days = append(days, p.Time().UTC().Format(time.DateOnly))
			}
		}
		assert.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-04"}, days)
	}
}

func TestWrite(t *testing.T) {
	fc := &fakeClient{}
	s := NewWithClient(fc, "factors")
	require.NoError(t, s.Write(context.Background(), sampleResult()))
	require.Len(t, fc.batches, 1)
	assert.Len(t, fc.batches[0].Points(), 8)

	// 空结果不写
	require.NoError(t, s.Write(context.Background(), &analysis.Result{}))
	assert.Len(t, fc.batches, 1)

	fc.err = errors.New("timeout")
	assert.Error(t, s.Write(context.Background(), sampleResult()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Write(ctx, sampleResult()), context.Canceled)

	_, err := New(runner.InfluxConfig{})
	assert.Error(t, err)
	assert.Equal(t, "influx", s.Name())
}
