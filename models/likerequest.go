package models

// ToggleLikeRequest は「いいね」トグルリクエストの構造体です。
type ToggleLikeRequest struct {
	PostID uint `json:"postId"`
}
