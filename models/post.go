package models

import (
	"gorm.io/gorm"
)

// Post モデルの定義。ImageURLは画像なし投稿の場合は空文字列。
type Post struct {
	gorm.Model
	UserID   uint   `gorm:"not null;index"`
	Content  string `gorm:"not null"`
	ImageURL string
}
