package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	https_server "MediLink/api/http"
	"MediLink/internal/config"
	"MediLink/pkg/redis"
	"MediLink/pkg/zlog"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()
	host := conf.MainConfig.Host
	port := conf.MainConfig.Port

	// 2. 启动后台组件：通知分发、outbox 中继、定时任务
	https_server.NotifyDispatcher.Start()

	relayCtx, stopRelay := context.WithCancel(context.Background())
	if https_server.Relay != nil {
		go func() {
			if err := https_server.Relay.Run(relayCtx); err != nil && err != context.Canceled {
				zlog.Error("outbox 中继退出: " + err.Error())
			}
		}()
	}

	if err := https_server.Scheduler.Start(); err != nil {
		zlog.Fatal("定时任务启动失败: " + err.Error())
	}

	// 3. 启动 HTTP 服务
	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		zlog.Info(fmt.Sprintf("服务器正在启动，监听地址: %s", addr))
		// 目前使用 HTTP 启动。如果需要 HTTPS，请配置证书并使用 GE.RunTLS
		if err := https_server.GE.Run(addr); err != nil {
			zlog.Fatal("服务器启动失败: " + err.Error())
			return
		}
	}()

	// 4. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("正在关闭服务器...")

	https_server.Scheduler.Stop()
	stopRelay()
	// 先停止入队，worker 清空队列后退出
	https_server.NotifyDispatcher.Stop()
	if https_server.KafkaPublisher != nil {
		_ = https_server.KafkaPublisher.Close()
	}
	_ = redis.Close()

	zlog.Info("服务器已关闭")
	zlog.Sync()
}
