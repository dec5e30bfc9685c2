package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/nao1215/mintrelay/pkg/logger"
)

// EnvConfigFile は設定ファイル（YAML）のパスを指定する環境変数名。
const EnvConfigFile = "RELAY_CONFIG"

// envKeys は読み込み対象の環境変数と設定キーの対応。
// これ以外の環境変数は無視する。
var envKeys = map[string]string{
	"PORT":            "port",
	"API_KEY":         "api_key",
	"DEPLOY_URL":      "deploy_url",
	"REQUEST_TIMEOUT": "request_timeout",
	"LOG_LEVEL":       "log_level",
	"GIN_MODE":        "gin_mode",
}

// Load はデフォルト値、設定ファイル、環境変数の順に重ねてConfigを構築する。
// 後から読み込んだソースが優先される。
//  1. デフォルト値 (New)
//  2. RELAY_CONFIG が指定されていればYAMLファイル
//  3. 環境変数 (PORT, API_KEY, ...)。空の値は未設定として扱う
func Load(_ context.Context) (Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		// 空文字列を返したキーは読み込まれない。値が空の場合もデフォルト値を使う
		if value == "" {
			return "", nil
		}
		return envKeys[key], value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は設定値の整合性を検証する。
// APIキーの未設定はエラーとしない（認証が常に失敗するだけ）。
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("%w: port %q", ErrInvalidConfig, c.Port)
	}

	u, err := url.Parse(c.DeployURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: deploy_url %q", ErrInvalidConfig, c.DeployURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: deploy_url のスキームはhttpまたはhttpsである必要があります: %q", ErrInvalidConfig, c.DeployURL)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request_timeout は正の値である必要があります: %s", ErrInvalidConfig, c.RequestTimeout)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch strings.ToLower(c.GinMode) {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("%w: gin_mode %q", ErrInvalidConfig, c.GinMode)
	}
	return nil
}
