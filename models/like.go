package models

import (
	"gorm.io/gorm"
)

// Like モデルの定義。同じユーザーが同じ投稿に二重で「いいね」できないよう複合ユニーク。
type Like struct {
	gorm.Model
	PostID uint `gorm:"not null;uniqueIndex:idx_likes_post_user"`
	UserID uint `gorm:"not null;uniqueIndex:idx_likes_post_user"`
}
