// Package http は外部API呼び出し用のHTTPクライアントを提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

//go:generate mockgen -source=httpclient.go -destination=mock/doer_mock.go -package=mock

// DefaultProviderTimeout は株価プロバイダー1回分のリクエストタイムアウトです。
// フォールバックチェーン全体の応答性を保つため短めに設定します。
const DefaultProviderTimeout = 5 * time.Second

// Doer is the subset of *http.Client used by provider clients.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ Doer = (*http.Client)(nil)

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（リクエストタイムアウトを超えない）
//   - MaxIdleConnsPerHost: 同一プロバイダーへの並行取得で接続を使い回すため16
//   - Client.Timeout: リクエスト全体のタイムアウト（0以下なら DefaultProviderTimeout）
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にこのクライアントを使用すること
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	dial := 3 * time.Second
	if timeout < dial {
		dial = timeout
	}
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dial,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: dial,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
