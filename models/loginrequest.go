package models

// LoginRequest はログインリクエストの構造体です。
type LoginRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}
