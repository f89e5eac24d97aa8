package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap/zapcore"

	"pointblank/server"
)

// Point Blank 入口：主屏 + 手机光枪的派对射击游戏服务端
func main() {
	cfg, err := server.LoadConfig()
	if err != nil {
		panic(err)
	}
	var debug bool
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "server listen address, e.g. :8080")
	flag.StringVar(&cfg.LogFile, "log", cfg.LogFile, "rolling log file, empty for stdout only")
	flag.StringVar(&cfg.WebDir, "web", cfg.WebDir, "static web directory")
	flag.BoolVar(&debug, "debug", false, "debug logging")
	flag.Parse()

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	log := server.NewLogger(cfg.LogFile, level)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rooms := server.NewRoomManager(ctx, cfg, server.SystemTickers{}, log)
	go rooms.RunJanitor(ctx, time.Minute)

	api := server.NewAPI(rooms, cfg, log)
	srv := &http.Server{Addr: cfg.Addr, Handler: api.Router()}

	go func() {
		log.Infof("Point Blank listening on %s; open http://localhost%v/", cfg.Addr, cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("listen: %v", err)
			os.Exit(1)
		}
	}()

	// 优雅退出（Ctrl+C）
	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	rooms.DisposeAll()
}
