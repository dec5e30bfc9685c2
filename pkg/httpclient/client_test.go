package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testRequest はテストサーバーが受け取ったリクエスト情報を保持する構造体。
type testRequest struct {
	// Method はHTTPメソッド。
	Method string
	// Path はリクエストパス。
	Path string
	// Body はリクエストボディ。
	Body []byte
	// Headers はリクエストヘッダー。
	Headers http.Header
}

// testPayload はテスト用のリクエストペイロード。
type testPayload struct {
	// Name はテスト用の名前フィールド。
	Name string `json:"name"`
	// Value はテスト用の値フィールド。
	Value int `json:"value"`
}

// TestNew はNew関数でクライアントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("クライアントが正常に生成されること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:7890")
		if client == nil {
			t.Fatal("New()がnilを返した")
		}
		if client.baseURL != "http://localhost:7890" {
			t.Errorf("baseURL = %q, want %q", client.baseURL, "http://localhost:7890")
		}
		if client.httpClient == nil {
			t.Fatal("httpClientがnil")
		}
	})

	t.Run("デフォルトのタイムアウトが30秒に設定されていること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:7890")
		if client.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want 30s", client.httpClient.Timeout)
		}
	})

	t.Run("WithTimeoutでタイムアウトを変更できること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:7890", WithTimeout(90*time.Second))
		if client.httpClient.Timeout != 90*time.Second {
			t.Errorf("Timeout = %v, want 90s", client.httpClient.Timeout)
		}
	})
}

// TestPostJSON はPostJSON関数を検証する。
func TestPostJSON(t *testing.T) {
	t.Parallel()

	t.Run("正常にPOSTリクエストを送信してレスポンスを取得できること", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received.Method = r.Method
			received.Path = r.URL.Path
			received.Body, _ = io.ReadAll(r.Body)
			received.Headers = r.Header

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"success":true,"address":"0xdeadbeef"}`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		resp, err := client.PostJSON(context.Background(), "/deploy", testPayload{Name: "request", Value: 100})
		if err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}

		// リクエストの検証
		if received.Method != http.MethodPost {
			t.Errorf("Method = %q, want %q", received.Method, http.MethodPost)
		}
		if received.Path != "/deploy" {
			t.Errorf("Path = %q, want %q", received.Path, "/deploy")
		}

		var sentBody testPayload
		if err := json.Unmarshal(received.Body, &sentBody); err != nil {
			t.Fatalf("リクエストボディのパースに失敗: %v", err)
		}
		if sentBody.Name != "request" || sentBody.Value != 100 {
			t.Errorf("sent body = %+v, want {request 100}", sentBody)
		}
		if got := received.Headers.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}

		// レスポンスの検証
		if resp.StatusCode != http.StatusOK {
			t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if string(resp.Body) != `{"success":true,"address":"0xdeadbeef"}` {
			t.Errorf("Body = %s, want passthrough", resp.Body)
		}
	})

	t.Run("サーバーが500を返してもJSONボディがそのまま返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"success":false,"error":"out of gas"}`))
		}))
		defer ts.Close()

		resp, err := New(ts.URL).PostJSON(context.Background(), "/deploy", testPayload{})
		if err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
		}
		if string(resp.Body) != `{"success":false,"error":"out of gas"}` {
			t.Errorf("Body = %s", resp.Body)
		}
	})

	t.Run("不正なJSONレスポンスでErrInvalidJSONが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("<html>Bad Gateway</html>"))
		}))
		defer ts.Close()

		_, err := New(ts.URL).PostJSON(context.Background(), "/deploy", testPayload{})
		if !errors.Is(err, ErrInvalidJSON) {
			t.Fatalf("err = %v, want ErrInvalidJSON", err)
		}
		var invalid *InvalidJSONError
		if !errors.As(err, &invalid) {
			t.Fatalf("err = %T, want *InvalidJSONError", err)
		}
		if invalid.StatusCode != http.StatusOK {
			t.Errorf("StatusCode = %d, want %d", invalid.StatusCode, http.StatusOK)
		}
		if invalid.Body != "<html>Bad Gateway</html>" {
			t.Errorf("Body = %q, want %q", invalid.Body, "<html>Bad Gateway</html>")
		}
	})

	t.Run("空のレスポンスボディでErrInvalidJSONが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer ts.Close()

		_, err := New(ts.URL).PostJSON(context.Background(), "/deploy", testPayload{})
		if !errors.Is(err, ErrInvalidJSON) {
			t.Fatalf("err = %v, want ErrInvalidJSON", err)
		}
	})

	t.Run("シリアライズできないボディでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		_, err := New("http://localhost:1").PostJSON(context.Background(), "/deploy", make(chan int))
		if err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("キャンセルされたコンテキストでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer ts.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(ts.URL).PostJSON(ctx, "/deploy", testPayload{})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	})

	t.Run("タイムアウトを超えた場合にエラーが返ること", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			<-release
			w.Write([]byte(`{}`))
		}))
		defer ts.Close()
		defer close(release)

		_, err := New(ts.URL, WithTimeout(50*time.Millisecond)).PostJSON(context.Background(), "/deploy", testPayload{})
		if err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("接続できないサーバーに対してエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := ts.URL
		ts.Close()

		_, err := New(url).PostJSON(context.Background(), "/deploy", testPayload{})
		if err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}
	})
}

// TestWithRequestID はリクエストIDの伝播を検証する。
func TestWithRequestID(t *testing.T) {
	t.Parallel()

	t.Run("コンテキストのリクエストIDがX-Request-IDヘッダーで伝播されること", func(t *testing.T) {
		t.Parallel()

		var got string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("X-Request-ID")
			w.Write([]byte(`{}`))
		}))
		defer ts.Close()

		ctx := WithRequestID(context.Background(), "req-123")
		if _, err := New(ts.URL).PostJSON(ctx, "/deploy", testPayload{}); err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
		if got != "req-123" {
			t.Errorf("X-Request-ID = %q, want %q", got, "req-123")
		}
	})

	t.Run("リクエストIDが設定されていない場合ヘッダーが空であること", func(t *testing.T) {
		t.Parallel()

		got := "unset"
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("X-Request-ID")
			w.Write([]byte(`{}`))
		}))
		defer ts.Close()

		if _, err := New(ts.URL).PostJSON(context.Background(), "/deploy", testPayload{}); err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
		if got != "" {
			t.Errorf("X-Request-ID = %q, want empty string", got)
		}
	})
}
