// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// APIキーによる認証ゲート、リクエストID、アクセスログ、メトリクス、
// パニックリカバリ、CORS設定を含む。エラー応答はすべて
// {"success": false, "error": "..."} 形式のJSONで返す。
package middleware
