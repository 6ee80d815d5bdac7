package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"miniagent/agent"
)

// MiniAgent 入口：读取配置，连接游戏服务端，注册玩家并发送随机动作
func main() {
	var (
		configPath string
		logPath    string
		seed       int64
	)
	flag.StringVar(&configPath, "config", "config.json", "path to the JSON config file")
	flag.StringVar(&logPath, "log", "app.log", "log file path (empty: console only)")
	flag.Int64Var(&seed, "seed", 0, "random seed for action selection (0: time based)")
	flag.Parse()

	if err := agent.InitLogger(logPath); err != nil {
		panic(err)
	}
	defer agent.SyncLogger()

	cfg, err := agent.LoadConfig(configPath, os.Stdin, os.Stdout)
	if err != nil {
		agent.Log.Errorf("cannot start: %v", err)
		agent.SyncLogger()
		os.Exit(1)
	}
	agent.Log.Infof("controlling player %s on %s", cfg.PlayerName, cfg.Endpoint())

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	h := agent.NewHandler(cfg, agent.WithRand(rand.New(rand.NewSource(seed))))

	// 优雅退出（Ctrl+C）：取消会话，发送关闭帧
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	agent.Log.Infof("attempting to connect to %s...", cfg.Endpoint())
	if err := agent.RunSession(ctx, cfg, h); err != nil && !errors.Is(err, context.Canceled) {
		agent.Log.Errorf("session ended: %v", err)
	}
	agent.Log.Info("agent terminated")
}
