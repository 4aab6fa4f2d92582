package routes

import (
	"time"

	"circleserver/handlers"
	"circleserver/middlewares"
	"circleserver/models"
	"circleserver/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter は全ルーティングとミドルウェアを組み立てます。
// dbとrdbは呼び出し側で構築して注入します（グローバル変数は使いません）。
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg models.Config, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	// CORS（Cross-Origin Resource Sharing）ポリシーを設定
	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// アップロード画像の配信
	router.Static(cfg.UploadBaseURL, cfg.UploadDir)

	verify := middlewares.TokenVerifier(db, logger)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", func(c *gin.Context) {
			handlers.Signup(c, db, logger)
		})
		authGroup.POST("/login", middlewares.LoginRateLimiter(rdb, logger), func(c *gin.Context) {
			handlers.Login(c, db, cfg, logger)
		})
		authGroup.POST("/logout", verify, func(c *gin.Context) {
			handlers.Logout(c, db, logger)
		})
	}

	userGroup := api.Group("/user")
	{
		userGroup.GET("/get-user", verify, func(c *gin.Context) {
			handlers.GetUser(c, db, logger)
		})
	}

	postGroup := api.Group("/posts")
	{
		postGroup.POST("/create-post", verify, func(c *gin.Context) {
			handlers.CreatePost(c, db, cfg, logger)
		})
		postGroup.GET("/get-post", verify, func(c *gin.Context) {
			handlers.GetMyPosts(c, db, logger)
		})
		postGroup.GET("/post/:postId", verify, func(c *gin.Context) {
			handlers.GetPostByID(c, db, logger)
		})
		postGroup.DELETE("/delete-post", verify, func(c *gin.Context) {
			handlers.DeletePost(c, db, logger)
		})
	}

	api.GET("/explore", verify, func(c *gin.Context) {
		handlers.GetExplorePosts(c, db, logger)
	})

	inviteGroup := api.Group("/invite")
	{
		inviteGroup.POST("/code", verify, func(c *gin.Context) {
			handlers.CreateInviteCode(c, db, cfg, logger)
		})
		inviteGroup.GET("/code/accept", verify, func(c *gin.Context) {
			handlers.AcceptInviteCode(c, db, logger)
		})
		inviteGroup.GET("/from-me", verify, func(c *gin.Context) {
			handlers.GetInvitesFromMe(c, db, logger)
		})
		inviteGroup.GET("/to-me", verify, func(c *gin.Context) {
			handlers.GetInvitesToMe(c, db, logger)
		})
		inviteGroup.DELETE("/:inviteId", verify, func(c *gin.Context) {
			handlers.DeleteInvite(c, db, logger)
		})
	}

	commentGroup := api.Group("/comments")
	{
		commentGroup.POST("", verify, func(c *gin.Context) {
			handlers.CreateComment(c, db, logger)
		})
		commentGroup.GET("/post/:postId", func(c *gin.Context) {
			handlers.GetCommentsByPostID(c, db, logger)
		})
		commentGroup.DELETE("/:id", verify, func(c *gin.Context) {
			handlers.DeleteComment(c, db, logger)
		})
	}

	likeGroup := api.Group("/likes")
	{
		likeGroup.POST("/toggle", verify, func(c *gin.Context) {
			handlers.ToggleLike(c, db, logger)
		})
		likeGroup.GET("/post/:postId", func(c *gin.Context) {
			handlers.GetLikesByPostID(c, db, logger)
		})
	}

	return router
}
