package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// defaultTimeout はWithTimeoutを指定しない場合のリクエストタイムアウト。
const defaultTimeout = 30 * time.Second

// headerRequestID はリクエストIDを伝播するためのHTTPヘッダーキー。
const headerRequestID = "X-Request-ID"

// ErrInvalidJSON はレスポンスボディがJSONとして不正な場合に返される。
// errors.Isで判定する。実際の値は*InvalidJSONError。
var ErrInvalidJSON = errors.New("response body is not valid JSON")

// InvalidJSONError はレスポンスボディがJSONとして不正だった応答の情報を持つ。
// メッセージは呼び出し元へそのまま返されることがあるため英語にしている。
type InvalidJSONError struct {
	// StatusCode は接続先が返したHTTPステータスコード。
	StatusCode int
	// Body は先頭を切り詰めたレスポンスボディ。
	Body string
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("%s: status=%d, body=%q", ErrInvalidJSON, e.StatusCode, e.Body)
}

// Is はErrInvalidJSONとの比較でtrueを返す。
func (e *InvalidJSONError) Is(target error) bool {
	return target == ErrInvalidJSON
}

// Client はサービス間通信用のHTTPクライアント。
// リトライは行わず、1回の呼び出しにつき1回だけリクエストを送信する。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先サービスのベースURL。
	baseURL string
}

// Response は完了したHTTP交換の結果。
type Response struct {
	// StatusCode は接続先が返したHTTPステータスコード。
	StatusCode int
	// Body は接続先が返したJSONボディ。
	Body json.RawMessage
}

// Option はClientの設定を変更する関数。
type Option func(*Client)

// WithTimeout はリクエスト全体のタイムアウトを設定する。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New は新しいサービス間通信用HTTPクライアントを生成する。
// baseURLには接続先サービスのベースURL（例: "http://localhost:7890"）を指定する。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON は指定パスにJSONボディでPOSTリクエストを送信する。
// ステータスコードに関わらず、JSONボディを持つ応答はすべて成功として返す。
func (c *Client) PostJSON(ctx context.Context, path string, body any) (*Response, error) {
	return c.doJSON(ctx, http.MethodPost, path, body)
}

// doJSON はJSON形式のHTTPリクエストを実行する共通処理。
func (c *Client) doJSON(ctx context.Context, method, path string, body any) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// コンテキストからリクエストIDを伝播する
	if requestID, ok := ctx.Value(contextKeyRequestID).(string); ok && requestID != "" {
		req.Header.Set(headerRequestID, requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗: %w", err)
	}

	if !json.Valid(respBody) {
		return nil, &InvalidJSONError{StatusCode: resp.StatusCode, Body: truncate(respBody, 200)}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       json.RawMessage(respBody),
	}, nil
}

// truncate はエラーメッセージに含めるボディを先頭nバイトに切り詰める。
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// contextKey はコンテキストキーの型。
type contextKey string

// contextKeyRequestID はコンテキストにリクエストIDを格納するためのキー。
const contextKeyRequestID contextKey = "request_id"

// WithRequestID はコンテキストにリクエストIDを設定する。
// 下流サービスのログとリレーのログを突き合わせるために使用する。
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}
