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

// CreateComment はコメントを作成するハンドラーです。
func CreateComment(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingToken})
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PostID == 0 || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	comment := models.Comment{
		PostID:  req.PostID,
		UserID:  identity.UserID,
		Content: req.Content,
	}
	if err := db.Create(&comment).Error; err != nil {
		logger.Error("コメントの作成に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeCommentCreate})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Success",
		"data": gin.H{
			"id":        comment.ID,
			"postId":    comment.PostID,
			"userId":    comment.UserID,
			"content":   comment.Content,
			"createdAt": comment.CreatedAt,
			"user": gin.H{
				"id":       identity.UserID,
				"nickname": identity.Nickname,
			},
		},
	})
}

// GetCommentsByPostID は投稿に付いたコメント一覧を古い順で返すハンドラーです。
func GetCommentsByPostID(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	postID, err := strconv.Atoi(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "postId is required"})
		return
	}

	var comments []models.Comment
	if err := db.Where("post_id = ?", postID).Order("created_at asc").Find(&comments).Error; err != nil {
		logger.Error("コメント一覧の取得に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeCommentList})
		return
	}

	formatted := make([]gin.H, 0, len(comments))
	for _, comment := range comments {
		var author models.User
		db.Select("id", "nickname").First(&author, comment.UserID)

		formatted = append(formatted, gin.H{
			"id":        comment.ID,
			"postId":    comment.PostID,
			"userId":    comment.UserID,
			"content":   comment.Content,
			"createdAt": comment.CreatedAt,
			"user": gin.H{
				"id":       author.ID,
				"nickname": author.Nickname,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Success", "data": formatted})
}

// DeleteComment は自分のコメントを削除するハンドラーです。
// コメント不在は404、他人のコメントは403で区別します。
func DeleteComment(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingToken})
		return
	}

	commentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "id is required"})
		return
	}

	var comment models.Comment
	if err := db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Comment not found"})
			return
		}
		logger.Error("コメントの取得に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeCommentDelete})
		return
	}

	if comment.UserID != identity.UserID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this comment"})
		return
	}

	if err := db.Delete(&comment).Error; err != nil {
		logger.Error("コメントの削除に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeCommentDelete})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
