// Package config はリレーサービスのプロセス設定を提供する。
//
// 設定はプロセス起動時に一度だけ読み込み、イミュータブルな値として
// サーバー生成関数へ明示的に渡す。実行中に再読み込みは行わない。
package config

import "time"

// Config はリレーサービスの設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `koanf:"port"`
	// APIKey は認証ゲートで照合する共有シークレット。
	// 未設定の場合、認証が必要なリクエストはすべて失敗する。
	APIKey string `koanf:"api_key"`
	// DeployURL はデプロイサービスのエンドポイントURL。
	DeployURL string `koanf:"deploy_url"`
	// RequestTimeout はリクエスト1件あたりの処理時間の上限。
	RequestTimeout time.Duration `koanf:"request_timeout"`
	// LogLevel はログの出力レベル（debug, info, warn, error）。
	LogLevel string `koanf:"log_level"`
	// GinMode はGinの動作モード（debug, release, test）。
	GinMode string `koanf:"gin_mode"`
}

// デフォルト値。
const (
	DefaultPort           = "3000"
	DefaultDeployURL      = "http://localhost:7890/deploy"
	DefaultRequestTimeout = 90 * time.Second
	DefaultLogLevel       = "info"
	DefaultGinMode        = "release"
)

// New はデフォルト値を設定したConfigを返す。
func New() Config {
	return Config{
		Port:           DefaultPort,
		DeployURL:      DefaultDeployURL,
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       DefaultLogLevel,
		GinMode:        DefaultGinMode,
	}
}

// Addr はhttp.Serverに渡すリッスンアドレスを返す。
func (c Config) Addr() string {
	return ":" + c.Port
}
