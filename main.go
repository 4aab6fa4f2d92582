package main

import (
	"os"

	"go.uber.org/zap"

	"circleserver/auth"     //JWTの署名とセッション発行
	"circleserver/database" //PostgreSQLとRedisの初期化
	"circleserver/routes"   //ルーティングの組み立て
	"circleserver/utils"    //ロガーの初期化とCronジョブ(PostgreSQLの定期クリーンナップ)

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

func main() {
	logger, err := utils.InitLogger() // ロガーの初期化
	if err != nil {
		panic(err) // 失敗した場合はプログラム停止
	}
	defer logger.Sync() // ロガーのクリーンアップ

	config, err := database.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("設定ファイルの読み込みに失敗しました", zap.Error(err))
	}
	if config.JWTSecret == "" {
		logger.Fatal("JWTシークレットが設定されていません（config.jsonまたはJWT_SECRET）")
	}
	auth.Init(config.JWTSecret)

	// 非同期でPostgreSQLとRedisの初期化
	var db *gorm.DB
	var rdb *redis.Client
	done := make(chan bool)

	go func() {
		var err error
		db, err = database.InitPostgreSQL(config, logger)
		if err != nil {
			logger.Fatal("PostgreSQLの初期化に失敗しました", zap.Error(err))
		}
		done <- true
	}()

	go func() {
		var err error
		rdb, err = database.InitRedis(logger)
		if err != nil {
			// Redisはログイン試行の制限にだけ使うため、落ちていても起動は継続する
			logger.Warn("Redisの初期化に失敗したためレート制限なしで起動します", zap.Error(err))
			rdb = nil
		}
		done <- true
	}()

	// 2つの初期化が完了するのを待つ
	<-done
	<-done
	defer database.Close(db, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("マイグレーションに失敗しました", zap.Error(err))
	}

	// クーロンスケジューラのセットアップと呼び出し
	go utils.CronCleaner(db, logger)

	router := routes.SetupRouter(db, rdb, config, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("HTTPサーバーの起動に失敗しました", zap.Error(err))
	}
}
