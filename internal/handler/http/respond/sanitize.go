package respond

import (
	"regexp"
)

var (
	// ゲートウェイ認証情報のパターン
	// 注意: Telegram のボットトークンは URL パスに埋め込まれる（/bot<token>/...）
	botTokenPattern = regexp.MustCompile(`bot\d+:[a-zA-Z0-9-_]+`)
	// Bearer トークン（プッシュ/メール/SMS ゲートウェイの Authorization ヘッダ）
	bearerTokenPattern = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._~+/=-]+`)

	// データベースパスワードパターン（DSN内）
	dbPasswordPattern = regexp.MustCompile(`://([^:]+):([^@]+)@`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	// ゲートウェイ認証情報のマスク
	msg = botTokenPattern.ReplaceAllString(msg, "bot****")
	msg = bearerTokenPattern.ReplaceAllString(msg, "Bearer ****")

	// DBパスワードのマスク
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")

	return msg
}
