/*
- @Author: aztec
- @Date: 2024-02-16 15:02:37
- @Description: 因子评估与回测命令行
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/serenity0102/factor-modelling-mining/common"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
	bindCommonLog()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// 核心包的日志出口接到zerolog
func bindCommonLog() {
	common.Init(
		func(format string, args ...interface{}) { log.Info().Msgf(format, args...) },
		func(format string, args ...interface{}) { log.Error().Msgf(format, args...) })
	common.InitWarn(func(format string, args ...interface{}) { log.Warn().Msgf(format, args...) })
}

func setLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
