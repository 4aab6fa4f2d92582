package models

// SignupRequest はユーザー登録リクエストの構造体です。
type SignupRequest struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}
