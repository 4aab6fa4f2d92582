package models

import (
	"time"

	"gorm.io/gorm"
)

// InviteCode は使い捨ての招待コード。
// ToUserIDがNULLの間だけ受諾可能で、受諾時にアトミックに埋められます（二重受諾防止）。
type InviteCode struct {
	gorm.Model
	Code       string `gorm:"unique;not null"`
	FromUserID uint   `gorm:"not null;index"`
	ToUserID   *uint
	ExpiresAt  time.Time `gorm:"not null"`
}
