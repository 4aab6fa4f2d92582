package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"circleserver/middlewares"
	"circleserver/models"
	"circleserver/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreatePost は投稿を作成するハンドラーです。
// application/jsonに加え、画像付きのmultipart/form-data（contentフィールド +
// 任意のimageフィールド）も受け付けます。
func CreatePost(c *gin.Context, db *gorm.DB, cfg models.Config, logger *zap.Logger) {
	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingToken})
		return
	}

	var content string
	imageURL := ""

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		content = c.PostForm("content")

		if fileHeader, err := c.FormFile("image"); err == nil {
			filename, saveErr := utils.SaveUploadedImage(fileHeader, cfg.UploadDir)
			if saveErr != nil {
				logger.Warn("画像の保存に失敗", zap.Error(saveErr))
				c.JSON(http.StatusBadRequest, gin.H{"message": saveErr.Error()})
				return
			}
			imageURL = cfg.UploadBaseURL + "/" + filename
		}
	} else {
		var req models.CreatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Content is required"})
			return
		}
		content = req.Content
	}

	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Content is required"})
		return
	}

	post := models.Post{
		UserID:   identity.UserID,
		Content:  content,
		ImageURL: imageURL,
	}
	if err := db.Create(&post).Error; err != nil {
		logger.Error("投稿の作成に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Success",
		"data": gin.H{
			"id":        post.ID,
			"userId":    post.UserID,
			"content":   post.Content,
			"imageUrl":  post.ImageURL,
			"createdAt": post.CreatedAt,
			"updatedAt": post.UpdatedAt,
		},
	})
}

// GetMyPosts は自分の投稿一覧を「いいね」数・コメント数付きで返すハンドラーです。
func GetMyPosts(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingToken})
		return
	}

	var posts []models.Post
	if err := db.Where("user_id = ?", identity.UserID).Order("created_at desc").Find(&posts).Error; err != nil {
		logger.Error("投稿一覧の取得に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	// 各投稿に紐づく「いいね」数とコメント数も取得
	formatted := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		var likeCount, commentCount int64
		db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeCount)
		db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount)

		formatted = append(formatted, gin.H{
			"id":        post.ID,
			"userId":    post.UserID,
			"content":   post.Content,
			"imageUrl":  post.ImageURL,
			"createdAt": post.CreatedAt,
			"updatedAt": post.UpdatedAt,
			"user": gin.H{
				"id":       identity.UserID,
				"nickname": identity.Nickname,
			},
			"likeCount":    likeCount,
			"commentCount": commentCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Success", "data": formatted})
}

// GetPostByID は投稿を1件、カウントと自分の「いいね」状態付きで返すハンドラーです。
func GetPostByID(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	postID, err := strconv.Atoi(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "postId is required"})
		return
	}

	var post models.Post
	if err := db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
			return
		}
		logger.Error("投稿の取得に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodePostNotFound})
		return
	}

	var author models.User
	db.Select("id", "nickname").First(&author, post.UserID)

	var likeCount, commentCount int64
	db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeCount)
	db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount)

	// トークンが付いていれば自分の「いいね」状態も返す
	isLiked := false
	if identity := middlewares.OptionalIdentity(c); identity != nil {
		var like models.Like
		if err := db.Where("post_id = ? AND user_id = ?", post.ID, identity.UserID).First(&like).Error; err == nil {
			isLiked = true
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Success",
		"data": gin.H{
			"id":        post.ID,
			"userId":    post.UserID,
			"content":   post.Content,
			"imageUrl":  post.ImageURL,
			"createdAt": post.CreatedAt,
			"updatedAt": post.UpdatedAt,
			"user": gin.H{
				"id":       author.ID,
				"nickname": author.Nickname,
			},
			"likeCount":    likeCount,
			"commentCount": commentCount,
			"isLiked":      isLiked,
		},
	})
}

// DeletePost は自分の投稿をIDで削除するハンドラーです。
// 他人の投稿は存在有無を明かさず404を返します。
func DeletePost(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingToken})
		return
	}

	postIDParam := c.Query("postId")
	if postIDParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "postId is required"})
		return
	}
	postID, err := strconv.Atoi(postIDParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "postId is required"})
		return
	}

	// 自分の投稿かどうか確認してから削除
	var post models.Post
	if err := db.Where("id = ? AND user_id = ?", postID, identity.UserID).First(&post).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found or not owned by user"})
		return
	}

	if err := db.Delete(&post).Error; err != nil {
		logger.Error("投稿の削除に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Success"})
}
