package handlers_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreatePostRequiresContent(t *testing.T) {
	router, _ := setupTestEnv(t)
	token := signupAndLogin(t, router, "alice")

	w := doJSON(t, router, http.MethodPost, "/api/posts/create-post", token, map[string]string{
		"content": "",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty content: status = %d, want 400", w.Code)
	}
	if msg, _ := decodeBody(t, w)["message"].(string); msg != "Content is required" {
		t.Errorf("message = %q, want %q", msg, "Content is required")
	}
}

func TestGetMyPostsWithCounts(t *testing.T) {
	router, _ := setupTestEnv(t)
	aliceToken := signupAndLogin(t, router, "alice")
	bobToken := signupAndLogin(t, router, "bob")

	postID := createPost(t, router, aliceToken, "first post")
	createPost(t, router, aliceToken, "second post")

	// bobがコメントと「いいね」を付ける
	w := doJSON(t, router, http.MethodPost, "/api/comments", bobToken, map[string]interface{}{
		"postId":  postID,
		"content": "nice post",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("comment: status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/api/likes/toggle", bobToken, map[string]interface{}{
		"postId": postID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("like: status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/posts/get-post", aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get-post: status = %d", w.Code)
	}
	posts, ok := decodeBody(t, w)["data"].([]interface{})
	if !ok || len(posts) != 2 {
		t.Fatalf("got %d posts, want 2 (body = %s)", len(posts), w.Body.String())
	}

	// 新しい順なのでfirst postは末尾
	last := posts[1].(map[string]interface{})
	if last["content"] != "first post" {
		t.Errorf("order: last post content = %v, want first post", last["content"])
	}
	if likeCount := last["likeCount"].(float64); likeCount != 1 {
		t.Errorf("likeCount = %v, want 1", likeCount)
	}
	if commentCount := last["commentCount"].(float64); commentCount != 1 {
		t.Errorf("commentCount = %v, want 1", commentCount)
	}
}

// 他人のトークンでは削除できず、所有者なら削除できること。
func TestDeletePostOwnership(t *testing.T) {
	router, _ := setupTestEnv(t)
	aliceToken := signupAndLogin(t, router, "alice")
	bobToken := signupAndLogin(t, router, "bob")

	postID := createPost(t, router, aliceToken, "alice's post")
	path := fmt.Sprintf("/api/posts/delete-post?postId=%d", postID)

	w := doJSON(t, router, http.MethodDelete, path, bobToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete by non-owner: status = %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, path, aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete by owner: status = %d, want 200", w.Code)
	}

	// 二度目は404
	w = doJSON(t, router, http.MethodDelete, path, aliceToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete twice: status = %d, want 404", w.Code)
	}
}

func TestGetPostByID(t *testing.T) {
	router, _ := setupTestEnv(t)
	aliceToken := signupAndLogin(t, router, "alice")
	bobToken := signupAndLogin(t, router, "bob")

	postID := createPost(t, router, aliceToken, "hello")
	doJSON(t, router, http.MethodPost, "/api/likes/toggle", bobToken, map[string]interface{}{"postId": postID})

	w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/posts/post/%d", postID), bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get post: status = %d", w.Code)
	}
	data := dataOf(t, w)
	if data["content"] != "hello" {
		t.Errorf("content = %v", data["content"])
	}
	if isLiked, _ := data["isLiked"].(bool); !isLiked {
		t.Error("isLiked = false for bob, want true")
	}
	user := data["user"].(map[string]interface{})
	if user["nickname"] != "alice" {
		t.Errorf("author nickname = %v, want alice", user["nickname"])
	}

	w = doJSON(t, router, http.MethodGet, "/api/posts/post/9999", bobToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing post: status = %d, want 404", w.Code)
	}
}

// PNGヘッダーだけの最小画像（DetectContentTypeがimage/pngと判定する）
var tinyPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestCreatePostWithImage(t *testing.T) {
	router, _ := setupTestEnv(t)
	token := signupAndLogin(t, router, "alice")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("content", "with image"); err != nil {
		t.Fatal(err)
	}
	part, err := mw.CreateFormFile("image", "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(tinyPNG); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/posts/create-post", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create with image: status = %d, body = %s", w.Code, w.Body.String())
	}
	imageURL, _ := dataOf(t, w)["imageUrl"].(string)
	if !strings.HasPrefix(imageURL, "/uploads/") || !strings.HasSuffix(imageURL, ".png") {
		t.Errorf("imageUrl = %q, want /uploads/<uuid>.png", imageURL)
	}
}

func TestCreatePostRejectsNonImageUpload(t *testing.T) {
	router, _ := setupTestEnv(t)
	token := signupAndLogin(t, router, "alice")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("content", "with bogus file")
	part, err := mw.CreateFormFile("image", "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("just some plain text, definitely not an image"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/posts/create-post", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-image upload: status = %d, want 400", w.Code)
	}
}
