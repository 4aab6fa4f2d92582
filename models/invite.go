package models

import (
	"gorm.io/gorm"
)

// Invite は「FromUserがToUserを招待した」関係を表すエッジ。
// ToUserのexploreフィードにFromUserの投稿が表示されるようになります。
type Invite struct {
	gorm.Model
	FromUserID uint `gorm:"not null;index"`
	ToUserID   uint `gorm:"not null;index"`
}
