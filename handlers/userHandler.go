package handlers

import (
	"errors"
	"net/http"

	"circleserver/middlewares"
	"circleserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetUser は自分のニックネームを返すハンドラーです。
func GetUser(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingToken})
		return
	}

	var user models.User
	if err := db.Select("nickname").First(&user, identity.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Fail", "errorCode": models.CodeUserNotFound})
			return
		}
		logger.Error("ユーザー照会に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	if user.Nickname == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Fail", "errorCode": models.CodeUserNoNickname})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Success",
		"data": gin.H{
			"nickname": user.Nickname,
		},
	})
}
