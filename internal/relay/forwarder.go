package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/nao1215/mintrelay/pkg/httpclient"
)

// ErrDownstream はデプロイサービスとのHTTP交換が完了しなかった場合に返される。
var ErrDownstream = errors.New("deploy service request failed")

// Forwarder はデプロイサービスへペイロードを転送する。
type Forwarder struct {
	client *httpclient.Client
	path   string
}

// NewForwarder はdeployURLへPOSTするForwarderを生成する。
// timeoutはデプロイサービスとの通信1回あたりの上限。
func NewForwarder(deployURL string, timeout time.Duration) (*Forwarder, error) {
	u, err := url.Parse(deployURL)
	if err != nil {
		return nil, fmt.Errorf("デプロイサービスURLの解析に失敗: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("デプロイサービスURLが不正です: %q", deployURL)
	}

	base := u.Scheme + "://" + u.Host
	path := u.RequestURI()

	return &Forwarder{
		client: httpclient.New(base, httpclient.WithTimeout(timeout)),
		path:   path,
	}, nil
}

// DeployError はデプロイサービスとの通信失敗を表す。
// Error() は呼び出し元へそのまま返せるよう、最も内側の原因だけを返す。
type DeployError struct {
	// Cause は通信失敗の原因。
	Cause error
	err   error
}

func (e *DeployError) Error() string {
	return e.Cause.Error()
}

// Unwrap はErrDownstreamとhttpclientが返した元のエラーを返す。
func (e *DeployError) Unwrap() []error {
	return []error{ErrDownstream, e.err}
}

// newDeployError はhttpclientのエラーから呼び出し元向けの原因を取り出す。
func newDeployError(err error) *DeployError {
	cause := err
	var urlErr *url.Error
	var invalid *httpclient.InvalidJSONError
	switch {
	case errors.As(err, &urlErr):
		cause = urlErr.Err
	case errors.As(err, &invalid):
		cause = invalid
	}
	return &DeployError{Cause: cause, err: err}
}

// DeployResult はデプロイサービスとのHTTP交換の結果。
type DeployResult struct {
	// StatusCode はデプロイサービスが返したHTTPステータスコード。ログにのみ使う。
	StatusCode int
	// Body はデプロイサービスが返したJSON。呼び出し元へそのまま返す。
	Body json.RawMessage
}

// Deploy はペイロードをデプロイサービスへ1回だけPOSTし、応答のJSONをそのまま返す。
// 応答のステータスコードは解釈しない。通信に失敗した場合やJSONでない応答は*DeployErrorとなる。
func (f *Forwarder) Deploy(ctx context.Context, payload DeployPayload) (*DeployResult, error) {
	resp, err := f.client.PostJSON(ctx, f.path, payload)
	if err != nil {
		return nil, newDeployError(err)
	}
	return &DeployResult{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}
