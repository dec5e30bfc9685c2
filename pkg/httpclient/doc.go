// Package httpclient はサービス間のHTTP通信を行うクライアントを提供する。
//
// リレーサービスがローカルのデプロイサービスへJSONを送信する際に使用する。
// 応答のステータスコードは解釈せず、JSONボディをそのまま呼び出し元へ返す。
package httpclient
