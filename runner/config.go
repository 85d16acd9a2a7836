/*
- @Author: aztec
- @Date: 2024-02-14 09:10:27
- @Description: 启动配置。yaml文件 + .env + 环境变量覆盖
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/serenity0102/factor-modelling-mining/analysis"
	"github.com/serenity0102/factor-modelling-mining/backtest"
	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/serenity0102/factor-modelling-mining/factor"
	"github.com/serenity0102/factor-modelling-mining/factor/evaluate"
	"gopkg.in/yaml.v3"
)

const logPrefix = "runner"

const envPrefix = "FACTORBENCH_"

// 任务拆分方式
const (
	SplitNone    = ""
	SplitYears   = "years"
	SplitTickers = "tickers"
)

type SourceConfig struct {
	Kind         string `json:"kind" yaml:"kind"`
	Prices       string `json:"prices" yaml:"prices"`
	Fundamentals string `json:"fundamentals" yaml:"fundamentals"`
}

// redis主要用来存储运行状态
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	Prefix   string `json:"prefix" yaml:"prefix"`
}

// influx中以时间、股票、因子名为key，存储因子值与收益
type InfluxConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
}

type PostgresConfig struct {
	DSN string `json:"dsn" yaml:"dsn"`
}

// 按某日的市值或成交量选股，By为空时不筛选
type SelectConfig struct {
	By    string `json:"by" yaml:"by"`
	Limit int    `json:"limit" yaml:"limit"`
	Desc  bool   `json:"desc" yaml:"desc"`
}

// 选股依据
const (
	SelectNone      = ""
	SelectMarketCap = "market_cap"
	SelectVolume    = "volume"
)

type FactorJob struct {
	Name       string               `json:"name" yaml:"name"`
	Config     factor.Config        `json:"config" yaml:"config"`
	Components []analysis.Component `json:"components" yaml:"components"`
}

type LaunchConfig struct {
	// 任务名称
	Name     string `json:"name" yaml:"name"`
	LogLevel string `json:"log_level" yaml:"log_level"`

	Source  SourceConfig `json:"source" yaml:"source"`
	Tickers []string     `json:"tickers" yaml:"tickers"` // 为空表示数据源中的全部股票
	Select  SelectConfig `json:"select" yaml:"select"`

	// 时间区间，格式2006-01-02
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`

	// 向前多取的自然日数，供窗口类因子预热
	WarmupDays int `json:"warmup_days" yaml:"warmup_days"`

	Factors    []FactorJob              `json:"factors" yaml:"factors"`
	Portfolio  evaluate.PortfolioConfig `json:"portfolio" yaml:"portfolio"`
	Test       evaluate.TestConfig      `json:"test" yaml:"test"`
	Backtest   backtest.Config          `json:"backtest" yaml:"backtest"`
	Strategies []string                 `json:"strategies" yaml:"strategies"`

	// 拆分与并发
	SplitBy        string `json:"split_by" yaml:"split_by"`
	TickersPerUnit int    `json:"tickers_per_unit" yaml:"tickers_per_unit"`
	Workers        int    `json:"workers" yaml:"workers"`
	SkipDone       bool   `json:"skip_done" yaml:"skip_done"`

	// 写入重试
	WriteRetries int `json:"write_retries" yaml:"write_retries"`

	Redis       RedisConfig    `json:"redis" yaml:"redis"`
	Influx      InfluxConfig   `json:"influx" yaml:"influx"`
	Postgres    PostgresConfig `json:"postgres" yaml:"postgres"`
	MetricsAddr string         `json:"metrics_addr" yaml:"metrics_addr"`

	start time.Time
	end   time.Time
}

func DefaultLaunchConfig() LaunchConfig {
	return LaunchConfig{
		Name:           "factorbench",
		LogLevel:       "info",
		Source:         SourceConfig{Kind: "csv"},
		Select:         SelectConfig{Desc: true},
		WarmupDays:     60,
		Portfolio:      evaluate.DefaultPortfolioConfig(),
		Test:           evaluate.DefaultTestConfig(),
		Backtest:       backtest.DefaultConfig(),
		Strategies:     []string{"LongShort", "LongOnly"},
		TickersPerUnit: 50,
		Workers:        4,
		SkipDone:       true,
		WriteRetries:   3,
		Redis:          RedisConfig{Prefix: "factorbench"},
		Influx:         InfluxConfig{Database: "factors"},
	}
}

// 读取配置文件。.env不存在时忽略
func LoadLaunchConfig(path string) (*LaunchConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		common.LogWarn(logPrefix, "load .env failed: %s", err.Error())
	}

	return ParseLaunchConfig(b)
}

func ParseLaunchConfig(b []byte) (*LaunchConfig, error) {
	lc := DefaultLaunchConfig()
	if err := yaml.Unmarshal(b, &lc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	lc.applyEnv()
	if err := lc.parse(); err != nil {
		return nil, err
	}
	return &lc, nil
}

func (lc *LaunchConfig) applyEnv() {
	setString(&lc.Redis.Addr, "REDIS_ADDR")
	setString(&lc.Redis.Password, "REDIS_PASSWORD")
	setString(&lc.Influx.Addr, "INFLUX_ADDR")
	setString(&lc.Influx.Username, "INFLUX_USER")
	setString(&lc.Influx.Password, "INFLUX_PASSWORD")
	setString(&lc.Postgres.DSN, "PG_DSN")
	setString(&lc.LogLevel, "LOG_LEVEL")
	setString(&lc.MetricsAddr, "METRICS_ADDR")
	if v := os.Getenv(envPrefix + "WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			lc.Workers = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		*dst = v
	}
}

func (lc *LaunchConfig) parse() error {
	var err error
	if lc.start, err = common.ParseDate(lc.Start); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if lc.end, err = common.ParseDate(lc.End); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	if lc.end.Before(lc.start) {
		return fmt.Errorf("end %s before start %s", lc.End, lc.Start)
	}
	if len(lc.Factors) == 0 {
		return fmt.Errorf("no factors configured")
	}
	for _, t := range lc.Tickers {
		if !common.ValidTicker(t) {
			return fmt.Errorf("invalid ticker %q", t)
		}
	}
	switch lc.SplitBy {
	case SplitNone, SplitYears, SplitTickers:
	default:
		return fmt.Errorf("invalid split_by %q", lc.SplitBy)
	}
	switch lc.Select.By {
	case SelectNone, SelectMarketCap, SelectVolume:
	default:
		return fmt.Errorf("invalid select.by %q", lc.Select.By)
	}
	if lc.Workers <= 0 {
		lc.Workers = 1
	}
	if lc.TickersPerUnit <= 0 {
		return fmt.Errorf("invalid tickers_per_unit %d", lc.TickersPerUnit)
	}
	if err := lc.Portfolio.Validate(); err != nil {
		return err
	}
	return nil
}

func (lc *LaunchConfig) StartTime() time.Time {
	return lc.start
}

func (lc *LaunchConfig) EndTime() time.Time {
	return lc.end
}
