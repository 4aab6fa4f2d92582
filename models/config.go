package models

import "time"

// Config 構造体はデータベース接続とアプリ全体の設定情報を保持します。
// シークレット類は環境変数で上書きされます（database.LoadConfig参照）。
type Config struct {
	DBHost     string `json:"db_host"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBName     string `json:"db_name"`
	DBSSLMode  string `json:"db_sslmode"`

	JWTSecret string `json:"jwt_secret"`

	// トークンの有効日数。プロダクト既定値は100日（設計上の制約ではなくポリシー値）。
	TokenValidityDays int `json:"token_validity_days"`
	// 招待コードの有効日数。既定値は7日。
	InviteCodeValidityDays int `json:"invite_code_validity_days"`

	UploadDir     string   `json:"upload_dir"`
	UploadBaseURL string   `json:"upload_base_url"`
	AllowOrigins  []string `json:"allow_origins"`
}

func (c Config) TokenValidity() time.Duration {
	days := c.TokenValidityDays
	if days <= 0 {
		days = 100
	}
	return time.Duration(days) * 24 * time.Hour
}

func (c Config) InviteCodeValidity() time.Duration {
	days := c.InviteCodeValidityDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}
