/*
- @Author: aztec
- @Date: 2024-02-15 14:12:08
- @Description: 结果表结构
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package postgres

// 所有表以(factor, start_date, end_date, universe_hash, config_hash)区分一次计算
// config_hash为参数指纹，同名因子不同参数的结果分开存放
const Schema = `
CREATE TABLE IF NOT EXISTS factor_summary (
	factor          TEXT NOT NULL,
	start_date      DATE NOT NULL,
	end_date        DATE NOT NULL,
	universe_hash   TEXT NOT NULL,
	config_hash     TEXT NOT NULL,
	factor_type     TEXT NOT NULL,
	total           INTEGER NOT NULL,
	tested          INTEGER NOT NULL,
	insufficient    INTEGER NOT NULL,
	avg_beta        DOUBLE PRECISION,
	avg_tstat       DOUBLE PRECISION,
	avg_r_squared   DOUBLE PRECISION,
	significant     INTEGER NOT NULL,
	fdr_applied     BOOLEAN NOT NULL,
	significant_fdr INTEGER NOT NULL,
	mean_ic         DOUBLE PRECISION,
	ic_ir           DOUBLE PRECISION,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (factor, start_date, end_date, universe_hash, config_hash)
);

CREATE TABLE IF NOT EXISTS factor_details (
	factor        TEXT NOT NULL,
	start_date    DATE NOT NULL,
	end_date      DATE NOT NULL,
	universe_hash TEXT NOT NULL,
	config_hash   TEXT NOT NULL,
	ticker        TEXT NOT NULL,
	alpha         DOUBLE PRECISION,
	beta          DOUBLE PRECISION,
	t_stat        DOUBLE PRECISION,
	p_value       DOUBLE PRECISION,
	std_err       DOUBLE PRECISION,
	conf_low      DOUBLE PRECISION,
	conf_high     DOUBLE PRECISION,
	r_squared     DOUBLE PRECISION,
	n_obs         INTEGER NOT NULL,
	condition     TEXT NOT NULL,
	PRIMARY KEY (factor, start_date, end_date, universe_hash, config_hash, ticker)
);

CREATE TABLE IF NOT EXISTS factor_timeseries (
	factor        TEXT NOT NULL,
	start_date    DATE NOT NULL,
	end_date      DATE NOT NULL,
	universe_hash TEXT NOT NULL,
	config_hash   TEXT NOT NULL,
	date          DATE NOT NULL,
	factor_return DOUBLE PRECISION NOT NULL,
	high_return   DOUBLE PRECISION NOT NULL,
	low_return    DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (factor, start_date, end_date, universe_hash, config_hash, date)
);

CREATE TABLE IF NOT EXISTS factor_values (
	factor      TEXT NOT NULL,
	config_hash TEXT NOT NULL,
	factor_type TEXT NOT NULL,
	ticker      TEXT NOT NULL,
	date        DATE NOT NULL,
	value       DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (factor, config_hash, ticker, date)
);

CREATE TABLE IF NOT EXISTS backtest_results (
	factor            TEXT NOT NULL,
	start_date        DATE NOT NULL,
	end_date          DATE NOT NULL,
	universe_hash     TEXT NOT NULL,
	config_hash       TEXT NOT NULL,
	strategy_id       TEXT NOT NULL,
	total_return      DOUBLE PRECISION,
	annualized_return DOUBLE PRECISION,
	volatility        DOUBLE PRECISION,
	sharpe_ratio      DOUBLE PRECISION,
	max_drawdown      DOUBLE PRECISION,
	win_rate          DOUBLE PRECISION,
	turnover          DOUBLE PRECISION,
	periods           INTEGER NOT NULL,
	gaps              INTEGER NOT NULL,
	PRIMARY KEY (factor, start_date, end_date, universe_hash, config_hash, strategy_id)
);

CREATE TABLE IF NOT EXISTS backtest_series (
	factor        TEXT NOT NULL,
	start_date    DATE NOT NULL,
	end_date      DATE NOT NULL,
	universe_hash TEXT NOT NULL,
	config_hash   TEXT NOT NULL,
	strategy_id   TEXT NOT NULL,
	date          DATE NOT NULL,
	period_return DOUBLE PRECISION NOT NULL,
	cumulative    DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (factor, start_date, end_date, universe_hash, config_hash, strategy_id, date)
);
`

const upsertSummary = `
INSERT INTO factor_summary
	(factor, start_date, end_date, universe_hash, config_hash, factor_type, total, tested, insufficient,
	 avg_beta, avg_tstat, avg_r_squared, significant, fdr_applied, significant_fdr, mean_ic, ic_ir)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
ON CONFLICT (factor, start_date, end_date, universe_hash, config_hash) DO UPDATE SET
	factor_type = EXCLUDED.factor_type,
	total = EXCLUDED.total,
	tested = EXCLUDED.tested,
	insufficient = EXCLUDED.insufficient,
	avg_beta = EXCLUDED.avg_beta,
	avg_tstat = EXCLUDED.avg_tstat,
	avg_r_squared = EXCLUDED.avg_r_squared,
	significant = EXCLUDED.significant,
	fdr_applied = EXCLUDED.fdr_applied,
	significant_fdr = EXCLUDED.significant_fdr,
	mean_ic = EXCLUDED.mean_ic,
	ic_ir = EXCLUDED.ic_ir,
	updated_at = now()`

const upsertDetail = `
INSERT INTO factor_details
	(factor, start_date, end_date, universe_hash, config_hash, ticker, alpha, beta, t_stat, p_value,
	 std_err, conf_low, conf_high, r_squared, n_obs, condition)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (factor, start_date, end_date, universe_hash, config_hash, ticker) DO UPDATE SET
	alpha = EXCLUDED.alpha,
	beta = EXCLUDED.beta,
	t_stat = EXCLUDED.t_stat,
	p_value = EXCLUDED.p_value,
	std_err = EXCLUDED.std_err,
	conf_low = EXCLUDED.conf_low,
	conf_high = EXCLUDED.conf_high,
	r_squared = EXCLUDED.r_squared,
	n_obs = EXCLUDED.n_obs,
	condition = EXCLUDED.condition`

const upsertTimeseries = `
INSERT INTO factor_timeseries
	(factor, start_date, end_date, universe_hash, config_hash, date, factor_return, high_return, low_return)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (factor, start_date, end_date, universe_hash, config_hash, date) DO UPDATE SET
	factor_return = EXCLUDED.factor_return,
	high_return = EXCLUDED.high_return,
	low_return = EXCLUDED.low_return`

const upsertValue = `
INSERT INTO factor_values (factor, config_hash, factor_type, ticker, date, value)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (factor, config_hash, ticker, date) DO UPDATE SET
	factor_type = EXCLUDED.factor_type,
	value = EXCLUDED.value`

const upsertBacktest = `
INSERT INTO backtest_results
	(factor, start_date, end_date, universe_hash, config_hash, strategy_id, total_return, annualized_return,
	 volatility, sharpe_ratio, max_drawdown, win_rate, turnover, periods, gaps)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (factor, start_date, end_date, universe_hash, config_hash, strategy_id) DO UPDATE SET
	total_return = EXCLUDED.total_return,
	annualized_return = EXCLUDED.annualized_return,
	volatility = EXCLUDED.volatility,
	sharpe_ratio = EXCLUDED.sharpe_ratio,
	max_drawdown = EXCLUDED.max_drawdown,
	win_rate = EXCLUDED.win_rate,
	turnover = EXCLUDED.turnover,
	periods = EXCLUDED.periods,
	gaps = EXCLUDED.gaps`

const upsertBacktestSeries = `
INSERT INTO backtest_series
	(factor, start_date, end_date, universe_hash, config_hash, strategy_id, date, period_return, cumulative)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (factor, start_date, end_date, universe_hash, config_hash, strategy_id, date) DO UPDATE SET
	period_return = EXCLUDED.period_return,
	cumulative = EXCLUDED.cumulative`
