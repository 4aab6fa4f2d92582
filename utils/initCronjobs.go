package utils

import (
	"time"

	"circleserver/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CronCleaner は期限切れ・失効済みの行を定期削除します。
// 有効性判定は常に読み取り時に行われるため、この掃除は正しさには影響せず
// テーブルの肥大化を防ぐためだけのものです。
func CronCleaner(db *gorm.DB, logger *zap.Logger) {
	c := cron.New()

	// 期限切れまたは失効済みのセッショントークンを削除するジョブ（毎日実行）
	c.AddFunc("@daily", func() {
		logger.Info("セッショントークンの掃除を開始")
		result := db.Where("expires_at <= ? OR is_revoked = ?", time.Now(), true).
			Delete(&models.SessionToken{})
		if result.Error != nil {
			logger.Error("セッショントークンの削除に失敗しました", zap.Error(result.Error))
		} else {
			logger.Info("セッショントークンの掃除完了", zap.Int64("tokens_deleted", result.RowsAffected))
		}
	})

	// 期限切れで未使用の招待コードを削除するジョブ（毎日3時に実行）
	c.AddFunc("0 3 * * *", func() {
		logger.Info("招待コードの掃除を開始")
		result := db.Where("expires_at <= ? AND to_user_id IS NULL", time.Now()).
			Delete(&models.InviteCode{})
		if result.Error != nil {
			logger.Error("招待コードの削除に失敗しました", zap.Error(result.Error))
		} else {
			logger.Info("招待コードの掃除完了", zap.Int64("codes_deleted", result.RowsAffected))
		}
	})

	c.Start()
}
