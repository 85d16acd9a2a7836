/*
- @Author: aztec
- @Date: 2024-02-14 13:45:12
- @Description: 并行执行计算单元，写入结果，记录状态
- @单元之间互不影响：一个单元失败不会取消其他单元
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/serenity0102/factor-modelling-mining/analysis"
	"github.com/serenity0102/factor-modelling-mining/factor"
	"github.com/serenity0102/factor-modelling-mining/factorlib/basicinfo"
	"golang.org/x/sync/errgroup"
)

// 单元状态
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// 结果写入目标
type Sink interface {
	Name() string
	Write(ctx context.Context, res *analysis.Result) error
}

// 单元状态存储
type StatusStore interface {
	Get(ctx context.Context, id string) (string, bool, error)
	Set(ctx context.Context, runID, id, status string) error
}

// 单元执行结果
type Outcome struct {
	Job      Job
	Result   *analysis.Result
	Skipped  bool
	Err      error
	Duration time.Duration
}

type Runner struct {
	lc      *LaunchConfig
	src     basicinfo.Source
	reg     *factor.Registry
	sinks   []Sink
	status  StatusStore
	metrics *Metrics
	logger  zerolog.Logger
	runID   string

	// 重试间隔，测试中可以调小
	newBackOff func() backoff.BackOff
}

type Option func(r *Runner)

func WithSinks(sinks ...Sink) Option {
	return func(r *Runner) { r.sinks = append(r.sinks, sinks...) }
}

func WithStatus(s StatusStore) Option {
	return func(r *Runner) { r.status = s }
}

func WithMetrics(m *Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.logger = l.With().Str("component", "runner").Logger() }
}

func WithBackOff(fn func() backoff.BackOff) Option {
	return func(r *Runner) { r.newBackOff = fn }
}

func New(lc *LaunchConfig, src basicinfo.Source, reg *factor.Registry, opts ...Option) *Runner {
	r := &Runner{
		lc:     lc,
		src:    src,
		reg:    reg,
		logger: zerolog.Nop(),
		runID:  uuid.NewString(),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = NewMetrics(nil)
	}
	return r
}

func (r *Runner) RunID() string {
	return r.runID
}

// 执行全部单元。返回的outcomes与jobs一一对应
// 单元的错误记录在outcome中，只有ctx被取消时才返回错误
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))

	g := new(errgroup.Group)
	g.SetLimit(r.lc.Workers)
	for i, job := range jobs {
		g.Go(func() error {
			outcomes[i] = r.runJob(ctx, job)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	r.logger.Info().Str("run_id", r.runID).Int("units", len(jobs)).Int("failed", failed).Msg("run finished")
	return outcomes, ctx.Err()
}

func (r *Runner) runJob(ctx context.Context, job Job) (o Outcome) {
	o.Job = job
	log := r.logger.With().Str("job", job.ID).Str("factor", job.Unit.Factor).Logger()

	if err := ctx.Err(); err != nil {
		o.Err = err
		r.metrics.Units.WithLabelValues("cancelled").Inc()
		return
	}

	if r.lc.SkipDone && r.status != nil {
		st, ok, err := r.status.Get(ctx, job.ID)
		if err != nil {
			log.Warn().Err(err).Msg("read status failed")
		} else if ok && st == StatusDone {
			o.Skipped = true
			r.metrics.Units.WithLabelValues("skipped").Inc()
			log.Debug().Msg("already done, skipped")
			return
		}
	}

	r.metrics.ActiveUnits.Inc()
	defer r.metrics.ActiveUnits.Dec()
	t0 := time.Now()
	r.setStatus(ctx, job.ID, StatusRunning, log)

	o.Result, o.Err = r.execute(ctx, job)
	o.Duration = time.Since(t0)
	r.metrics.UnitDuration.WithLabelValues(job.Unit.Factor).Observe(o.Duration.Seconds())

	if o.Err != nil {
		r.metrics.Units.WithLabelValues(StatusFailed).Inc()
		r.setStatus(ctx, job.ID, StatusFailed, log)
		log.Error().Err(o.Err).Msg("unit failed")
		return
	}

	for cond, n := range o.Result.Conditions() {
		r.metrics.Conditions.WithLabelValues(cond.String()).Add(float64(n))
	}
	r.metrics.Units.WithLabelValues(StatusDone).Inc()
	r.setStatus(ctx, job.ID, StatusDone, log)
	log.Info().Dur("duration", o.Duration).Int("factor_returns", len(o.Result.FactorReturns)).Msg("unit done")
	return
}

func (r *Runner) execute(ctx context.Context, job Job) (*analysis.Result, error) {
	warmup := job.Unit.Start.AddDate(0, 0, -r.lc.WarmupDays)
	u, err := r.src.Universe(job.Tickers, warmup, job.Unit.End)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}

	res, err := analysis.Run(r.reg, u, job.Unit)
	if err != nil {
		return nil, err
	}

	for _, s := range r.sinks {
		if err := r.write(ctx, s, res); err != nil {
			return res, fmt.Errorf("write %s: %w", s.Name(), err)
		}
	}
	return res, nil
}

// 带指数退避的写入
func (r *Runner) write(ctx context.Context, s Sink, res *analysis.Result) error {
	b := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(max(r.lc.WriteRetries, 0))), ctx)
	err := backoff.Retry(func() error {
		return s.Write(ctx, res)
	}, b)
	r.metrics.SinkWrites.WithLabelValues(s.Name(), valueIf(err == nil, "ok", "error")).Inc()
	return err
}

func (r *Runner) setStatus(ctx context.Context, id, status string, log zerolog.Logger) {
	if r.status == nil {
		return
	}
	if err := r.status.Set(ctx, r.runID, id, status); err != nil {
		log.Warn().Err(err).Str("status", status).Msg("write status failed")
	}
}

func valueIf[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
