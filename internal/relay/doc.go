// Package relay はMint Factoryリレーサービスの内部実装を提供する。
//
// コレクション作成リクエストをHTTPで受け付け、APIキーと必須パラメータを
// 検証したうえで、ローカルのデプロイサービスが期待する形式に変換して転送する。
// デプロイサービスの応答はそのまま呼び出し元へ返す。状態は持たず、
// リトライやキューイングも行わない。
package relay
