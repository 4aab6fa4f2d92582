package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionToken モデルの定義。
// JWTの署名・有効期限とは別に、サーバー側の失効状態をこの行で管理します。
// 「存在する・IsRevoked=false・ExpiresAtが未来」の三条件が揃って初めて有効。
type SessionToken struct {
	gorm.Model
	UserID     uint      `gorm:"not null;index"`
	Token      string    `gorm:"not null;index"`
	ExpiresAt  time.Time `gorm:"not null"`
	IsRevoked  bool      `gorm:"not null;default:false"`
	LastUsedAt *time.Time
}
