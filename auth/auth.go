package auth

import (
	"time"

	"circleserver/models"

	jwt "github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JwtKey はJWT署名用のシークレットキー。main起動時にInitで設定されます。
var JwtKey []byte

func Init(secret string) {
	JwtKey = []byte(secret)
}

// IssueSessionToken はログイン成功時のセッション発行処理です。
// 同一ユーザーの未失効トークンを全て削除してから新トークンを発行・永続化するため、
// 有効なセッションは常にユーザーごとに最大1つになります。
func IssueSessionToken(db *gorm.DB, user models.User, validity time.Duration, logger *zap.Logger) (string, error) {
	// 旧セッションの一括失効。新トークン作成より必ず先に実行する。
	deleted := db.Where("user_id = ? AND is_revoked = ?", user.ID, false).Delete(&models.SessionToken{})
	if deleted.Error != nil {
		logger.Error("旧トークンの削除に失敗", zap.Error(deleted.Error))
		return "", deleted.Error
	}
	logger.Info("既存セッションを失効させました",
		zap.Uint("userID", user.ID),
		zap.Int64("deleted", deleted.RowsAffected),
	)

	now := time.Now()
	expiresAt := now.Add(validity)

	// JWTトークン生成時に内包するデータ。jtiを付けて同時刻発行でも衝突しないようにする。
	claims := &models.SessionClaims{
		UserID:   user.ID,
		Nickname: user.Nickname,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(JwtKey)
	if err != nil {
		logger.Error("トークン署名に失敗", zap.Error(err))
		return "", err
	}

	// トークンをDBに保存（サーバー側の失効管理用）
	session := models.SessionToken{
		UserID:    user.ID,
		Token:     tokenString,
		ExpiresAt: expiresAt,
		IsRevoked: false,
	}
	if err := db.Create(&session).Error; err != nil {
		logger.Error("セッショントークンの保存に失敗", zap.Error(err))
		return "", err
	}

	return tokenString, nil
}

// ParseSessionClaims はトークン文字列の署名と内包有効期限を検証し、クレームを返します。
// DBの失効状態はここでは見ません（TokenVerifier側で行います）。
func ParseSessionClaims(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.NewValidationError("invalid token", jwt.ValidationErrorClaimsInvalid)
	}

	return claims, nil
}
