package models

import (
	jwt "github.com/golang-jwt/jwt"
)

// SessionClaims はJWTクレームの構造体定義です。
// ペイロードにはuserIdとnicknameのみを内包します。
type SessionClaims struct {
	UserID   uint   `json:"userId"`
	Nickname string `json:"nickname"`
	jwt.StandardClaims
}
