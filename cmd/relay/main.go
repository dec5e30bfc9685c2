// Mint Factoryリレーサービスのエントリポイント。
// APIキーで保護されたコレクション作成リクエストを受け付け、
// ローカルのデプロイサービスへ転送してその応答をそのまま返す。
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/mintrelay/internal/config"
	"github.com/nao1215/mintrelay/internal/relay"
	"github.com/nao1215/mintrelay/pkg/logger"
	"github.com/nao1215/mintrelay/pkg/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	lg, err := logger.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗: %v", err)
	}

	gin.SetMode(strings.ToLower(cfg.GinMode))

	server, err := relay.NewServer(cfg, lg, metrics.New())
	if err != nil {
		log.Fatalf("リレーサーバーの初期化に失敗: %v", err)
	}

	if cfg.APIKey == "" {
		lg.Warn(ctx, "API_KEYが未設定のため、すべてのコレクション作成リクエストは拒否されます")
	}

	lg.Info(ctx, "リレーサービスを起動します",
		logger.String("addr", cfg.Addr()),
		logger.String("deploy_url", cfg.DeployURL),
		logger.Duration("request_timeout", cfg.RequestTimeout),
	)
	if err := server.Run(ctx); err != nil {
		lg.Error(context.Background(), "リレーサービスの起動に失敗", logger.Error(err))
		stop()
		os.Exit(1)
	}
	lg.Info(context.Background(), "リレーサービスを停止しました")
}
