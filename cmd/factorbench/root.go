/*
- @Author: aztec
- @Date: 2024-02-16 15:10:52
- @Description: 子命令：run / plan / factors / show
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/jedib0t/go-pretty/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/serenity0102/factor-modelling-mining/factorlib"
	"github.com/serenity0102/factor-modelling-mining/factorlib/basicinfo"
	"github.com/serenity0102/factor-modelling-mining/runner"
	"github.com/serenity0102/factor-modelling-mining/store/influx"
	"github.com/serenity0102/factor-modelling-mining/store/postgres"
	"github.com/serenity0102/factor-modelling-mining/store/status"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	factorName string
	showPrices bool
)

func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:          "factorbench",
		Short:        "Factor evaluation and backtesting",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "job.yaml", "job config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overrides config")

	root.AddCommand(runCmd(), planCmd(), factorsCmd(), showCmd())
	return root.ExecuteContext(ctx)
}

func loadConfig() (*runner.LaunchConfig, error) {
	lc, err := runner.LoadLaunchConfig(configPath)
	if err != nil {
		return nil, err
	}
	if len(logLevel) > 0 {
		lc.LogLevel = logLevel
	}
	setLogLevel(lc.LogLevel)
	return lc, nil
}

func loadSource(lc *runner.LaunchConfig) (basicinfo.Source, error) {
	return basicinfo.NewSource(lc.Source.Kind, lc.Source.Prices, lc.Source.Fundamentals)
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every unit of a job and write the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lc, err := loadConfig()
			if err != nil {
				return err
			}
			src, err := loadSource(lc)
			if err != nil {
				return err
			}

			opts := []runner.Option{runner.WithLogger(log.Logger)}
			sinks, closeSinks, err := openSinks(ctx, lc)
			if err != nil {
				return err
			}
			defer closeSinks()
			opts = append(opts, runner.WithSinks(sinks...))

			if len(lc.Redis.Addr) > 0 {
				tr, err := status.New(lc.Redis)
				if err != nil {
					return err
				}
				opts = append(opts, runner.WithStatus(tr))
			}

			reg := prometheus.NewRegistry()
			opts = append(opts, runner.WithMetrics(runner.NewMetrics(reg)))
			if len(lc.MetricsAddr) > 0 {
				srv := serveMetrics(lc.MetricsAddr, reg)
				defer srv.Shutdown(context.Background())
			}

			tickers, err := runner.SelectTickers(lc, src)
			if err != nil {
				return err
			}
			r := runner.New(lc, src, factorlib.Default(), opts...)
			jobs := runner.Plan(lc, tickers)
			log.Info().Str("run_id", r.RunID()).Str("job", lc.Name).Int("units", len(jobs)).Msg("run started")

			outcomes, err := r.Run(ctx, jobs)
			fmt.Println(outcomeTable(outcomes).Render())
			if err != nil {
				return err
			}
			for _, o := range outcomes {
				if o.Err != nil {
					return errors.New("some units failed")
				}
			}
			return nil
		},
	}
}

// 按配置打开结果写入目标
func openSinks(ctx context.Context, lc *runner.LaunchConfig) ([]runner.Sink, func(), error) {
	sinks := []runner.Sink{}
	closers := []func() error{}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if len(lc.Influx.Addr) > 0 {
		s, err := influx.New(lc.Influx)
		if err != nil {
			return nil, closeAll, err
		}
		sinks = append(sinks, s)
		closers = append(closers, s.Close)
	}
	if len(lc.Postgres.DSN) > 0 {
		s, err := postgres.Open(ctx, lc.Postgres.DSN)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		sinks = append(sinks, s)
		closers = append(closers, s.Close)
	}
	if len(sinks) == 0 {
		log.Warn().Msg("no sink configured, results are only printed")
	}
	return sinks, closeAll, nil
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("addr", addr).Msg("metrics server started")
	return srv
}

func outcomeTable(outcomes []runner.Outcome) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetAutoIndex(true)
	t.AppendHeader(table.Row{"Factor", "Start", "End", "Tickers", "Result", "Returns", "Significant", "Duration"})
	for _, o := range outcomes {
		u := o.Job.Unit
		row := table.Row{u.Factor, u.Start.Format(time.DateOnly), u.End.Format(time.DateOnly), len(o.Job.Tickers)}
		switch {
		case o.Skipped:
			row = append(row, "skipped", "-", "-", "-")
		case o.Err != nil:
			row = append(row, o.Err.Error(), "-", "-", o.Duration.Round(time.Millisecond))
		default:
			row = append(row, "done", len(o.Result.FactorReturns), o.Result.Summary.Significant, o.Duration.Round(time.Millisecond))
		}
		t.AppendRow(row)
	}
	return t
}

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the units a job splits into",
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, err := loadConfig()
			if err != nil {
				return err
			}
			src, err := loadSource(lc)
			if err != nil {
				return err
			}

			tickers, err := runner.SelectTickers(lc, src)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetStyle(table.StyleLight)
			t.SetAutoIndex(true)
			t.AppendHeader(table.Row{"ID", "Factor", "Start", "End", "Tickers"})
			for _, j := range runner.Plan(lc, tickers) {
				t.AppendRow(table.Row{j.ID, j.Unit.Factor, j.Unit.Start.Format(time.DateOnly), j.Unit.End.Format(time.DateOnly), len(j.Tickers)})
			}
			fmt.Println(t.Render())
			return nil
		},
	}
}

func factorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "factors",
		Short: "List registered factors",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := factorlib.Default()
			t := table.NewWriter()
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Type", "Description"})
			for _, name := range reg.Names() {
				m, _ := reg.Meta(name)
				t.AppendRow(table.Row{m.Name, m.Type, m.Description})
			}
			fmt.Println(t.Render())
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Evaluate one factor of a job and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, err := loadConfig()
			if err != nil {
				return err
			}
			i := slices.IndexFunc(lc.Factors, func(fj runner.FactorJob) bool { return fj.Name == factorName })
			if i < 0 {
				return fmt.Errorf("factor %s not in job", factorName)
			}
			lc.Factors = lc.Factors[i : i+1]
			lc.SplitBy = runner.SplitNone
			lc.SkipDone = false

			src, err := loadSource(lc)
			if err != nil {
				return err
			}
			tickers, err := runner.SelectTickers(lc, src)
			if err != nil {
				return err
			}
			r := runner.New(lc, src, factorlib.Default(), runner.WithLogger(log.Logger))
			outcomes, err := r.Run(cmd.Context(), runner.Plan(lc, tickers))
			if err != nil {
				return err
			}
			o := outcomes[0]
			if o.Err != nil {
				return o.Err
			}

			res := o.Result
			fmt.Println(res.Summary.ToTable().Render())
			fmt.Printf("IC mean=%.4f std=%.4f IR=%.4f n=%d\n", res.ICSummary.MeanIC, res.ICSummary.StdIC, res.ICSummary.ICIR, res.ICSummary.N)
			for _, bt := range res.Backtests {
				fmt.Println(bt.ToTable().Render())
			}
			if len(res.Issues) > 0 {
				fmt.Fprintf(os.Stderr, "%d issues, conditions: %v\n", len(res.Issues), res.Conditions())
			}
			if showPrices {
				u, err := src.Universe(tickers, lc.StartTime(), lc.EndTime())
				if err != nil {
					return err
				}
				fmt.Println(u.PriceFrame(lc.StartTime(), lc.EndTime()))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&factorName, "factor", "f", "", "factor name in the job")
	cmd.Flags().BoolVar(&showPrices, "prices", false, "also print the close price frame of the selected tickers")
	cmd.MarkFlagRequired("factor")
	return cmd
}
