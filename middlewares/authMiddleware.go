package middlewares

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"circleserver/auth"
	"circleserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	identityContextKey = "authIdentity"
	rawTokenContextKey = "rawToken"
)

// TokenVerifier は保護ルート共通の検証ミドルウェアです。検証は三段階:
//  1. Bearerトークンの抽出（無ければauth008）
//  2. 署名と内包有効期限の検証（失敗ならauth010。この時点ではDBを見ない）
//  3. DB行の照合。行が無い・失効済み・行側の期限切れはいずれもauth009。
//     行の期限はJWT内包の期限とは独立に判定する。
//
// 成功時はLastUsedAtを更新し、型付きのAuthenticatedIdentityをコンテキストに格納します。
func TokenVerifier(db *gorm.DB, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":   "Fail",
				"errorCode": models.CodeAuthMissingToken,
			})
			return
		}
		rawToken := strings.TrimPrefix(header, "Bearer ")

		claims, err := auth.ParseSessionClaims(rawToken)
		if err != nil {
			logger.Warn("トークンのパースに失敗", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":   "Fail",
				"errorCode": models.CodeAuthInvalidToken,
			})
			return
		}

		var session models.SessionToken
		if err := db.Where("token = ?", rawToken).First(&session).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Error("トークン行の照会に失敗", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":   "Fail",
				"errorCode": models.CodeAuthRevokedToken,
			})
			return
		}
		if session.IsRevoked || session.ExpiresAt.Before(time.Now()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":   "Fail",
				"errorCode": models.CodeAuthRevokedToken,
			})
			return
		}

		// 最近使用時刻の更新。失敗しても認可判定には影響させない。
		if err := db.Model(&session).Update("last_used_at", time.Now()).Error; err != nil {
			logger.Warn("LastUsedAtの更新に失敗", zap.Error(err))
		}

		c.Set(identityContextKey, models.AuthenticatedIdentity{
			UserID:   claims.UserID,
			Nickname: claims.Nickname,
		})
		c.Set(rawTokenContextKey, rawToken)
		c.Next()
	}
}

// Identity はTokenVerifierが格納した認証主体を取り出します。
func Identity(c *gin.Context) (models.AuthenticatedIdentity, bool) {
	v, ok := c.Get(identityContextKey)
	if !ok {
		return models.AuthenticatedIdentity{}, false
	}
	identity, ok := v.(models.AuthenticatedIdentity)
	return identity, ok
}

// RawToken は検証済みの生トークン文字列を取り出します（ログアウトで使用）。
func RawToken(c *gin.Context) (string, bool) {
	v, ok := c.Get(rawTokenContextKey)
	if !ok {
		return "", false
	}
	raw, ok := v.(string)
	return raw, ok
}

// OptionalIdentity は認証必須でないルート向け。
// Bearerトークンが付いていて署名が有効な場合のみ主体を返し、それ以外はnil。
// isLiked等の表示用情報にだけ使い、認可判定には使いません。
func OptionalIdentity(c *gin.Context) *models.AuthenticatedIdentity {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	claims, err := auth.ParseSessionClaims(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil
	}
	return &models.AuthenticatedIdentity{UserID: claims.UserID, Nickname: claims.Nickname}
}
