package handlers

import (
	"errors"
	"net/http"
	"regexp"

	"circleserver/auth"
	"circleserver/middlewares"
	"circleserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Signup はユーザー登録ハンドラーです。
func Signup(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingField})
		return
	}

	// 入力検証。errorCodeはクライアント契約なので順序ごと維持する。
	if !emailRegex.MatchString(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Fail", "errorCode": models.CodeAuthInvalidEmail})
		return
	}
	if req.Password != "" && len(req.Password) < 4 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Fail", "errorCode": models.CodeAuthShortPassword})
		return
	}
	if req.Password == "" || req.Nickname == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingField})
		return
	}

	// 既に存在するニックネームか確認
	var existing models.User
	err := db.Where("nickname = ?", req.Nickname).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Fail", "errorCode": models.CodeAuthDuplicateNickname})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("ニックネーム重複チェックに失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("パスワードハッシュに失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	user := models.User{
		Nickname: req.Nickname,
		Email:    req.Email,
		Password: string(hashed),
	}
	if err := db.Create(&user).Error; err != nil {
		logger.Error("ユーザー作成に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Sign Up Success",
		"userId":  user.ID,
	})
}

// Login は認証・旧セッション失効・新トークン発行を行うハンドラーです。
func Login(c *gin.Context, db *gorm.DB, cfg models.Config, logger *zap.Logger) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingField})
		return
	}

	var user models.User
	if err := db.Where("nickname = ?", req.Nickname).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Fail", "errorCode": models.CodeAuthUnknownUser})
			return
		}
		logger.Error("ユーザー照会に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	// パスワード比較
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Fail", "errorCode": models.CodeAuthWrongPassword})
		return
	}

	token, err := auth.IssueSessionToken(db, user, cfg.TokenValidity(), logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Success",
		"data": gin.H{
			"token": token,
		},
	})
}

// Logout は提示されたトークンだけを失効させます（TokenVerifier通過後に呼ばれます）。
func Logout(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	rawToken, ok := middlewares.RawToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingToken})
		return
	}

	// 現在のトークンのみ失効させる。他ユーザー・他セッションには影響しない。
	result := db.Model(&models.SessionToken{}).
		Where("token = ? AND is_revoked = ?", rawToken, false).
		Update("is_revoked", true)
	if result.Error != nil {
		logger.Error("トークン失効に失敗", zap.Error(result.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logout Success"})
}
