package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/mintrelay/internal/config"
	"github.com/nao1215/mintrelay/pkg/httpclient"
	"github.com/nao1215/mintrelay/pkg/logger"
	"github.com/nao1215/mintrelay/pkg/metrics"
	"github.com/nao1215/mintrelay/pkg/middleware"
)

// 呼び出し元へ返す固定のエラーメッセージ。
const (
	msgMissingCreatorAddress = "Missing required parameter: creatorAddress"
	msgInvalidBody           = "Invalid request body"
	msgEndpointNotFound      = "Endpoint not found"
	msgUnknownError          = "Unknown error occurred"
)

const (
	// shutdownTimeout はグレースフルシャットダウンの待ち時間の上限。
	shutdownTimeout = 30 * time.Second
	// readHeaderTimeout はリクエストヘッダー読み取りの上限。
	readHeaderTimeout = 10 * time.Second
	// writeTimeoutGrace はリクエストタイムアウト後に応答を書き出すための猶予。
	writeTimeoutGrace = 5 * time.Second
)

// Server はリレーサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// addr はサーバーのリッスンアドレス。
	addr string
	// apiKey は認証ゲートで照合する共有シークレット。
	apiKey string
	// requestTimeout はリクエスト1件あたりの処理時間の上限。
	requestTimeout time.Duration
	// forwarder はデプロイサービスへの転送を行う。
	forwarder *Forwarder
	// log は構造化ロガー。
	log logger.Logger
	// metrics はPrometheusメトリクスの記録先。
	metrics *metrics.Recorder
}

// NewServer は設定からリレーサーバーを生成する。
// 設定は生成時に一度だけ参照し、以降は変更されない。
func NewServer(cfg config.Config, log logger.Logger, rec *metrics.Recorder) (*Server, error) {
	forwarder, err := NewForwarder(cfg.DeployURL, cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("フォワーダーの初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Metrics(rec))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	s := &Server{
		router:         router,
		addr:           cfg.Addr(),
		apiKey:         cfg.APIKey,
		requestTimeout: cfg.RequestTimeout,
		forwarder:      forwarder,
		log:            log,
		metrics:        rec,
	}
	s.setupRoutes()

	return s, nil
}

// Handler はサーバーのHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされるまでブロックする。
// ポートのバインドに失敗した場合はエラーを返す。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      s.requestTimeout + writeTimeoutGrace,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTPサーバーの起動に失敗: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info(context.Background(), "シャットダウンを開始します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("シャットダウンに失敗: %w", err)
	}
	return nil
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// ヘルスチェック（認証不要）
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// メトリクス（認証不要）
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	// 認証必須のエンドポイント
	api := s.router.Group("/")
	api.Use(middleware.APIKeyAuth(s.apiKey))
	{
		api.POST("/create-collection", s.handleCreateCollection())
	}

	// 未定義のルートとメソッド
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, middleware.Failure(msgEndpointNotFound))
	})
}

// handleCreateCollection はコレクション作成リクエストを検証・変換し、
// デプロイサービスへ転送するハンドラを返す。
//
// 入力検証の失敗とデプロイサービスとの通信失敗は、どちらもHTTP 200で
// {"success": false, "error": ...} を返す。
func (s *Server) handleCreateCollection() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := middleware.GetRequestID(c)
		log := s.log.With(logger.String("request_id", requestID))

		body, err := c.GetRawData()
		if err != nil {
			s.metrics.CountDeploy(metrics.OutcomeInvalid)
			c.JSON(http.StatusOK, middleware.Failure(msgInvalidBody))
			return
		}

		req, err := DecodeCollectionRequest(body)
		if err != nil {
			s.metrics.CountDeploy(metrics.OutcomeInvalid)
			log.Warn(c.Request.Context(), "リクエストボディが不正です", logger.Error(err))
			c.JSON(http.StatusOK, middleware.Failure(msgInvalidBody))
			return
		}

		payload, err := Normalize(req)
		if err != nil {
			s.metrics.CountDeploy(metrics.OutcomeInvalid)
			c.JSON(http.StatusOK, middleware.Failure(validationMessage(err)))
			return
		}

		// クライアントが切断してもデプロイ呼び出しは最後まで実行する
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), s.requestTimeout)
		defer cancel()
		ctx = httpclient.WithRequestID(ctx, requestID)

		start := time.Now()
		result, err := s.forwarder.Deploy(ctx, payload)
		if err != nil {
			s.metrics.ObserveDeploy(metrics.OutcomeError, time.Since(start))
			fields := []logger.Field{logger.Error(err)}
			var deployErr *DeployError
			if errors.As(err, &deployErr) {
				fields = append(fields, logger.String("detail", deployErr.err.Error()))
			}
			log.Error(ctx, "コレクション作成に失敗", fields...)
			c.JSON(http.StatusOK, middleware.Failure(errorMessage(err)))
			return
		}
		s.metrics.ObserveDeploy(metrics.OutcomeOK, time.Since(start))
		log.Info(ctx, "デプロイサービスが応答しました", logger.Int("deploy_status", result.StatusCode))

		c.Data(http.StatusOK, "application/json; charset=utf-8", result.Body)
	}
}

// validationMessage は入力検証エラーを呼び出し元向けのメッセージに変換する。
func validationMessage(err error) string {
	if errors.Is(err, ErrMissingCreatorAddress) {
		return msgMissingCreatorAddress
	}
	return msgInvalidBody
}

// errorMessage はエラーの説明文を返す。説明が空の場合は固定の文言を返す。
func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return msgUnknownError
	}
	return err.Error()
}
