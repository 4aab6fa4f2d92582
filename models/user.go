package models

import (
	"gorm.io/gorm"
)

// User モデルの定義。パスワードはbcryptハッシュのみ保存します。
type User struct {
	gorm.Model
	Nickname string `gorm:"unique;not null"`
	Email    string `gorm:"not null"`
	Password string `gorm:"not null"` // bcryptハッシュ
}
