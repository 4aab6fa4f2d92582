package models

// AuthenticatedIdentity は認証済みリクエストの主体。
// TokenVerifierミドルウェアが検証成功時にコンテキストへ格納し、
// 各ハンドラーは所有権チェックにこの値だけを使います。
type AuthenticatedIdentity struct {
	UserID   uint
	Nickname string
}
