package models

// CreateCommentRequest はコメント作成リクエストの構造体です。
type CreateCommentRequest struct {
	PostID  uint   `json:"postId"`
	Content string `json:"content"`
}
