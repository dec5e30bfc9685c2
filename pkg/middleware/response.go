package middleware

import "github.com/gin-gonic/gin"

// Failure は失敗を表す共通のレスポンスボディを生成する。
func Failure(message string) gin.H {
	return gin.H{
		"success": false,
		"error":   message,
	}
}
