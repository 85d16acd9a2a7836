package runner

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/serenity0102/factor-modelling-mining/analysis"
	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/serenity0102/factor-modelling-mining/data"
	"github.com/serenity0102/factor-modelling-mining/factorlib"
	"github.com/serenity0102/factor-modelling-mining/factorlib/basicinfo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobYAML = `
name: test
start: 2024-01-01
end: 2024-02-19
warmup_days: 0
factors:
  - name: ROC
    config:
      window: 3
  - name: NOPE
portfolio:
  high_fraction: 0.5
  low_fraction: 0.5
  weighting: equal
strategies: [LongShort]
workers: 2
`

func memorySource(t *testing.T) *basicinfo.SourceMemory {
	d0 := common.MustParseDate("2024-01-01")
	hists := []*data.History{}
	for k, tk := range []string{"AAA", "BBB", "CCC", "DDD"} {
		px := 50.0
		ps := []data.PriceObservation{}
		for i := 0; i < 50; i++ {
			px *= 1 + 0.02*math.Cos(float64(i*(k+2)))
			ps = append(ps, data.PriceObservation{Ticker: tk, Date: d0.AddDate(0, 0, i), Close: decimal.NewFromFloat(px), MarketCap: decimal.NewFromInt(int64(1000 * (k + 1)))})
		}
		h, err := data.NewHistory(tk, ps, nil)
		require.NoError(t, err)
		hists = append(hists, h)
	}
	u, err := data.NewUniverse(hists...)
	require.NoError(t, err)
	return basicinfo.NewSourceMemory(u)
}

type memStatus struct {
	mu sync.Mutex
	m  map[string]string
}

func (s *memStatus) Get(ctx context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[id]
	return v, ok, nil
}

func (s *memStatus) Set(ctx context.Context, runID, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = status
	return nil
}

// 前failures次写入失败
type flakySink struct {
	mu       sync.Mutex
	failures int
	calls    int
	written  []*analysis.Result
}

func (s *flakySink) Name() string { return "flaky" }

func (s *flakySink) Write(ctx context.Context, res *analysis.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errors.New("temporary failure")
	}
	s.written = append(s.written, res)
	return nil
}

func zeroBackOff() backoff.BackOff {
	return &backoff.ZeroBackOff{}
}

func TestParseLaunchConfig(t *testing.T) {
	t.Setenv("FACTORBENCH_PG_DSN", "postgres://u:p@localhost/fb")
	t.Setenv("FACTORBENCH_WORKERS", "8")

	lc, err := ParseLaunchConfig([]byte(jobYAML))
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost/fb", lc.Postgres.DSN)
	assert.Equal(t, 8, lc.Workers)
	assert.Equal(t, 3, lc.Factors[0].Config.Window)
	assert.Equal(t, common.MustParseDate("2024-02-19"), lc.EndTime())
	assert.Equal(t, 0.05, lc.Test.FDRLevel)

	_, err = ParseLaunchConfig([]byte("start: 2024-01-02\nend: 2024-01-01\nfactors: [{name: ROC}]\n"))
	assert.Error(t, err)
	_, err = ParseLaunchConfig([]byte("start: 2024-01-01\nend: 2024-01-02\n"))
	assert.Error(t, err)
	_, err = ParseLaunchConfig([]byte("start: 2024-01-01\nend: 2024-01-02\nfactors: [{name: ROC}]\ntickers: [abc]\n"))
	assert.Error(t, err)
	_, err = ParseLaunchConfig([]byte("start: 2024-01-01\nend: 2024-01-02\nfactors: [{name: ROC}]\nsplit_by: months\n"))
	assert.Error(t, err)
}

func TestLoadExampleConfig(t *testing.T) {
	lc, err := LoadLaunchConfig("../job.example.yaml")
	require.NoError(t, err)
	assert.Len(t, lc.Factors, 5)
	assert.Len(t, lc.Factors[4].Components, 2)
	assert.Equal(t, SelectMarketCap, lc.Select.By)
	assert.True(t, lc.Test.FDRControl)

	_, err = LoadLaunchConfig("missing.yaml")
	assert.Error(t, err)
}

func TestPlan(t *testing.T) {
	lc, err := ParseLaunchConfig([]byte(`
start: 2022-06-01
end: 2024-03-01
factors: [{name: ROC}, {name: RSI}]
split_by: years
`))
	require.NoError(t, err)

	jobs := Plan(lc, []string{"BBB", "AAA"})
	require.Len(t, jobs, 6)
	assert.Equal(t, common.MustParseDate("2022-06-01"), jobs[0].Unit.Start)
	assert.Equal(t, common.MustParseDate("2022-12-31"), jobs[0].Unit.End)
	assert.Equal(t, common.MustParseDate("2024-01-01"), jobs[2].Unit.Start)
	assert.Equal(t, common.MustParseDate("2024-03-01"), jobs[2].Unit.End)
	assert.Equal(t, []string{"AAA", "BBB"}, jobs[0].Tickers)

	// 相同单元ID相同
	again := Plan(lc, []string{"AAA", "BBB"})
	assert.Equal(t, jobs[0].ID, again[0].ID)
	assert.NotEqual(t, jobs[0].ID, jobs[1].ID)

	lc.SplitBy = SplitTickers
	lc.TickersPerUnit = 2
	jobs = Plan(lc, []string{"A1", "A2", "A3"})
	require.Len(t, jobs, 4)
	assert.Equal(t, []string{"A3"}, jobs[1].Tickers)
}

func TestPlanIDTracksParameters(t *testing.T) {
	plan := func(doc string) Job {
		lc, err := ParseLaunchConfig([]byte(doc))
		require.NoError(t, err)
		jobs := Plan(lc, []string{"AAA", "BBB"})
		require.Len(t, jobs, 1)
		return jobs[0]
	}

	halves := plan(`
start: 2024-01-01
end: 2024-06-30
factors: [{name: RSI, config: {window: 14}}]
portfolio: {high_fraction: 0.5, low_fraction: 0.5, weighting: equal}
`)
	quintiles := plan(`
start: 2024-01-01
end: 2024-06-30
factors: [{name: RSI, config: {window: 5}}]
portfolio: {high_fraction: 0.2, low_fraction: 0.2, weighting: equal}
`)
	window := plan(`
start: 2024-01-01
end: 2024-06-30
factors: [{name: RSI, config: {window: 5}}]
portfolio: {high_fraction: 0.5, low_fraction: 0.5, weighting: equal}
`)
	assert.NotEqual(t, halves.ID, quintiles.ID)
	assert.NotEqual(t, halves.ID, window.ID)
	assert.NotEqual(t, window.ID, quintiles.ID)

	same := plan(`
start: 2024-01-01
end: 2024-06-30
factors: [{name: RSI, config: {window: 14}}]
portfolio: {high_fraction: 0.5, low_fraction: 0.5, weighting: equal}
`)
	assert.Equal(t, halves.ID, same.ID)
}

func TestSelectTickers(t *testing.T) {
	lc, err := ParseLaunchConfig([]byte(jobYAML))
	require.NoError(t, err)
	src := memorySource(t)

	tickers, err := SelectTickers(lc, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB", "CCC", "DDD"}, tickers)

	lc.Select = SelectConfig{By: SelectMarketCap, Limit: 2, Desc: true}
	tickers, err = SelectTickers(lc, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"DDD", "CCC"}, tickers)

	// 成交量缺失的股票不会被选中
	lc.Select = SelectConfig{By: SelectVolume}
	tickers, err = SelectTickers(lc, src)
	require.NoError(t, err)
	assert.Empty(t, tickers)
}

func TestRunnerIsolatesFailuresAndRetriesWrites(t *testing.T) {
	lc, err := ParseLaunchConfig([]byte(jobYAML))
	require.NoError(t, err)
	src := memorySource(t)
	sink := &flakySink{failures: 1}
	status := &memStatus{m: map[string]string{}}
	m := NewMetrics(prometheus.NewRegistry())

	r := New(lc, src, factorlib.Default(), WithSinks(sink), WithStatus(status), WithMetrics(m), WithBackOff(zeroBackOff))
	jobs := Plan(lc, src.Tickers())
	require.Len(t, jobs, 2)

	outcomes, err := r.Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	// ROC成功，写入失败一次后重试成功
	assert.NoError(t, outcomes[0].Err)
	require.NotNil(t, outcomes[0].Result)
	assert.NotEmpty(t, outcomes[0].Result.FactorReturns)
	assert.Equal(t, 2, sink.calls)
	assert.Len(t, sink.written, 1)
	assert.Equal(t, StatusDone, status.m[jobs[0].ID])

	// 未知因子失败，不影响其他单元
	assert.Error(t, outcomes[1].Err)
	assert.Equal(t, StatusFailed, status.m[jobs[1].ID])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Units.WithLabelValues(StatusDone)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Units.WithLabelValues(StatusFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SinkWrites.WithLabelValues("flaky", "ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveUnits))

	// 再次运行时跳过已完成的单元
	outcomes, err = r.Run(context.Background(), jobs)
	require.NoError(t, err)
	assert.True(t, outcomes[0].Skipped)
	assert.False(t, outcomes[1].Skipped)
	assert.Len(t, sink.written, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Units.WithLabelValues("skipped")))
}

func TestRunnerGivesUpAfterRetries(t *testing.T) {
	lc, err := ParseLaunchConfig([]byte(jobYAML))
	require.NoError(t, err)
	lc.Factors = lc.Factors[:1]
	lc.WriteRetries = 2
	src := memorySource(t)
	sink := &flakySink{failures: 100}

	r := New(lc, src, factorlib.Default(), WithSinks(sink), WithBackOff(zeroBackOff))
	outcomes, err := r.Run(context.Background(), Plan(lc, src.Tickers()))
	require.NoError(t, err)
	assert.Error(t, outcomes[0].Err)
	assert.Equal(t, 3, sink.calls)
}

func TestRunnerHonoursCancellation(t *testing.T) {
	lc, err := ParseLaunchConfig([]byte(jobYAML))
	require.NoError(t, err)
	src := memorySource(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New(lc, src, factorlib.Default())
	outcomes, err := r.Run(ctx, Plan(lc, src.Tickers()))
	assert.ErrorIs(t, err, context.Canceled)
	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
}
