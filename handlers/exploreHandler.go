package handlers

import (
	"math"
	"net/http"
	"strconv"

	"circleserver/middlewares"
	"circleserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ページネーションパラメータの取得。不正値は既定値に落とす。
func pageParams(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.Query("limit"))
	if limit < 1 {
		limit = 10
	}
	return page, limit, (page - 1) * limit
}

// GetExplorePosts は「自分を招待したユーザー」の投稿だけを新しい順で返すハンドラーです。
// 招待エッジが無ければフィードは空になります。
func GetExplorePosts(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Fail", "errorCode": models.CodeAuthMissingToken})
		return
	}

	page, limit, offset := pageParams(c)

	// 自分を招待したユーザーのID一覧
	var fromUserIDs []uint
	if err := db.Model(&models.Invite{}).Where("to_user_id = ?", identity.UserID).
		Pluck("from_user_id", &fromUserIDs).Error; err != nil {
		logger.Error("招待エッジの取得に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	if len(fromUserIDs) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "Success",
			"data": gin.H{
				"posts":       []gin.H{},
				"totalCount":  0,
				"currentPage": page,
				"totalPages":  0,
			},
		})
		return
	}

	var totalCount int64
	if err := db.Model(&models.Post{}).Where("user_id IN ?", fromUserIDs).Count(&totalCount).Error; err != nil {
		logger.Error("投稿数の取得に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	var posts []models.Post
	if err := db.Where("user_id IN ?", fromUserIDs).
		Order("created_at desc").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		logger.Error("exploreフィードの取得に失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Fail", "errorCode": models.CodeServerError})
		return
	}

	formatted := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		var author models.User
		db.Select("id", "nickname").First(&author, post.UserID)

		formatted = append(formatted, gin.H{
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
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Success",
		"data": gin.H{
			"posts":       formatted,
			"totalCount":  totalCount,
			"currentPage": page,
			"totalPages":  int(math.Ceil(float64(totalCount) / float64(limit))),
		},
	})
}
