package models

import (
	"gorm.io/gorm"
)

// Comment モデルの定義
type Comment struct {
	gorm.Model
	PostID  uint   `gorm:"not null;index"`
	UserID  uint   `gorm:"not null;index"`
	Content string `gorm:"not null"`
}
