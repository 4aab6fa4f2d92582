package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"circleserver/middlewares"
	"circleserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ToggleLike は「いいね」のトグルを行うハンドラーです。
func ToggleLike(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingToken})
		return
	}

	var req models.ToggleLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PostID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	// 既存の「いいね」を確認してトグル
	var existing models.Like
	err := db.Where("post_id = ? AND user_id = ?", req.PostID, identity.UserID).First(&existing).Error
	switch {
	case err == nil:
		if err := db.Delete(&existing).Error; err != nil {
			logger.Error("いいね取り消しに失敗", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeLikeToggle})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Success", "data": gin.H{"liked": false}})
	case errors.Is(err, gorm.ErrRecordNotFound):
		like := models.Like{PostID: req.PostID, UserID: identity.UserID}
		if err := db.Create(&like).Error; err != nil {
			logger.Error("いいね追加に失敗", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeLikeToggle})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Success", "data": gin.H{"liked": true}})
	default:
		logger.Error("いいね照会に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeLikeToggle})
	}
}

// GetLikesByPostID は投稿の「いいね」数・自分の状態・ユーザー一覧を返すハンドラーです。
// トークンは任意で、付いていればisLikedを判定します。
func GetLikesByPostID(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	postID, err := strconv.Atoi(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "postId is required"})
		return
	}

	var count int64
	if err := db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		logger.Error("いいね数の取得に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeLikeList})
		return
	}

	isLiked := false
	if identity := middlewares.OptionalIdentity(c); identity != nil {
		var mine models.Like
		if err := db.Where("post_id = ? AND user_id = ?", postID, identity.UserID).First(&mine).Error; err == nil {
			isLiked = true
		}
	}

	var likes []models.Like
	if err := db.Where("post_id = ?", postID).Order("created_at desc").Find(&likes).Error; err != nil {
		logger.Error("いいね一覧の取得に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeLikeList})
		return
	}

	formatted := make([]gin.H, 0, len(likes))
	for _, like := range likes {
		var user models.User
		db.Select("id", "nickname").First(&user, like.UserID)

		formatted = append(formatted, gin.H{
			"id":        like.ID,
			"postId":    like.PostID,
			"userId":    like.UserID,
			"createdAt": like.CreatedAt,
			"user": gin.H{
				"id":       user.ID,
				"nickname": user.Nickname,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Success",
		"data": gin.H{
			"count":   count,
			"isLiked": isLiked,
			"likes":   formatted,
		},
	})
}
