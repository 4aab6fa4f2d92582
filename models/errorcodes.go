package models

// APIが返すerrorCode文字列の定義。
// これらはクライアントとの外部契約なので文字列を変更してはいけません。
const (
	CodeAuthInvalidEmail      = "errorCode_auth001" // メールアドレス形式が不正
	CodeAuthShortPassword     = "errorCode_auth002" // パスワードが4文字未満
	CodeAuthMissingField      = "errorCode_auth003" // 必須フィールド欠落
	CodeAuthDuplicateNickname = "errorCode_auth005" // ニックネームが既に存在
	CodeAuthUnknownUser       = "errorCode_auth006" // ログイン時ユーザー不在
	CodeAuthWrongPassword     = "errorCode_auth007" // パスワード不一致
	CodeAuthMissingToken      = "errorCode_auth008" // Authorizationヘッダー無し/不正
	CodeAuthRevokedToken      = "errorCode_auth009" // トークン行が不在・失効・期限切れ
	CodeAuthInvalidToken      = "errorCode_auth010" // 署名検証または内包期限で失敗
	CodeAuthTooManyAttempts   = "errorCode_auth011" // ログイン試行回数超過

	CodeUserNotFound   = "errorCode_user001"
	CodeUserNoNickname = "errorCode_user002"

	CodeServerError = "errorCode_public001"

	CodePostNotFound = "errorCode_post001"

	CodeCommentCreate = "errorCode_comment001"
	CodeCommentList   = "errorCode_comment002"
	CodeCommentDelete = "errorCode_comment003"

	CodeLikeToggle = "errorCode_like001"
	CodeLikeList   = "errorCode_like002"

	CodeInviteDuplicate = "errorCode_invite001" // 既に招待済み
)
