package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderAPIKey は呼び出し元が共有シークレットを送るHTTPヘッダーキー。
const HeaderAPIKey = "X-Api-Key"

// msgUnauthorized は認証失敗時に返す固定のエラーメッセージ。
const msgUnauthorized = "Unauthorized: Invalid API key"

// AuthResult は認証ゲートの判定結果。
type AuthResult int

const (
	// Unauthorized はシークレットが無いか一致しないことを示す。
	Unauthorized AuthResult = iota
	// Authorized はシークレットが一致したことを示す。
	Authorized
)

// CheckAPIKey は提示されたシークレットを期待値とバイト単位で比較する。
// 期待値が未設定の場合は常にUnauthorizedを返す。
func CheckAPIKey(presented, expected string) AuthResult {
	if presented == "" || expected == "" {
		return Unauthorized
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
		return Unauthorized
	}
	return Authorized
}

// APIKeyAuth はX-Api-Keyヘッダーを検証するGinミドルウェアを返す。
// 認証に失敗した場合は401と固定メッセージを返し、後続のハンドラを呼ばない。
func APIKeyAuth(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CheckAPIKey(c.GetHeader(HeaderAPIKey), expected) == Unauthorized {
			body := Failure(msgUnauthorized)
			body["code"] = http.StatusUnauthorized
			c.AbortWithStatusJSON(http.StatusUnauthorized, body)
			return
		}
		c.Next()
	}
}
