package models

// CreatePostRequest は投稿作成リクエストの構造体です。
// 画像付きの場合はmultipart/form-dataで同名フィールドが送られます。
type CreatePostRequest struct {
	Content string `json:"content"`
}
