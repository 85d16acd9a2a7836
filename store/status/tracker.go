/*
- @Author: aztec
- @Date: 2024-02-15 10:05:33
- @Description: 基于redis的计算单元状态记录
- @单元状态：<prefix>:status:<id>，本次运行汇总：<prefix>:run:<runID>
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/serenity0102/factor-modelling-mining/runner"
)

const logPrefix = "status"

// 运行汇总保留时间
const runTTL = 7 * 24 * time.Hour

type Tracker struct {
	rc     redis.Cmdable
	prefix string
}

func New(cfg runner.RedisConfig) (*Tracker, error) {
	if len(cfg.Addr) == 0 {
		return nil, errors.New("redis addr not configured")
	}
	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	common.LogNormal(logPrefix, "redis client created, addr=%s, db=%d", cfg.Addr, cfg.DB)
	return NewWithClient(rc, cfg.Prefix), nil
}

func NewWithClient(rc redis.Cmdable, prefix string) *Tracker {
	if len(prefix) == 0 {
		prefix = "factorbench"
	}
	return &Tracker{rc: rc, prefix: prefix}
}

func (t *Tracker) statusKey(id string) string {
	return fmt.Sprintf("%s:status:%s", t.prefix, id)
}

func (t *Tracker) runKey(runID string) string {
	return fmt.Sprintf("%s:run:%s", t.prefix, runID)
}

// 读取单元状态，不存在时ok为false
func (t *Tracker) Get(ctx context.Context, id string) (string, bool, error) {
	v, err := t.rc.Get(ctx, t.statusKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("get status %s: %w", id, err)
	}
	return v, true, nil
}

// 写入单元状态，同时记入本次运行的汇总
func (t *Tracker) Set(ctx context.Context, runID, id, status string) error {
	if err := t.rc.Set(ctx, t.statusKey(id), status, 0).Err(); err != nil {
		return fmt.Errorf("set status %s: %w", id, err)
	}

	rk := t.runKey(runID)
	if err := t.rc.HSet(ctx, rk, id, status).Err(); err != nil {
		return fmt.Errorf("record run %s: %w", runID, err)
	}
	if err := t.rc.Expire(ctx, rk, runTTL).Err(); err != nil {
		return fmt.Errorf("expire run %s: %w", runID, err)
	}
	return nil
}

// 本次运行中各单元的状态
func (t *Tracker) Run(ctx context.Context, runID string) (map[string]string, error) {
	m, err := t.rc.HGetAll(ctx, t.runKey(runID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", runID, err)
	}
	return m, nil
}

// 清除单元状态，下次运行时重新计算
func (t *Tracker) Reset(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = t.statusKey(id)
	}
	if err := t.rc.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("reset status: %w", err)
	}
	return nil
}
