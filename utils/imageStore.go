package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// アップロード画像の上限は5MB
const MaxImageSize = 5 << 20

// 許可する画像形式と保存時の拡張子。
// 判定はファイル名ではなく先頭バイトのスニッフィングで行う
// （圧縮済み画像はファイル名に拡張子が無いことがある）。
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SaveUploadedImage は画像を検証してdir配下にUUID名で保存し、ファイル名を返します。
func SaveUploadedImage(fileHeader *multipart.FileHeader, dir string) (string, error) {
	if fileHeader.Size > MaxImageSize {
		return "", fmt.Errorf("画像サイズが上限を超えています: %d bytes", fileHeader.Size)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// 先頭512バイトでContent-Typeを判定
	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("画像ファイルのみアップロード可能です (jpeg, jpg, png, gif, webp): %s", contentType)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	filename := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := dst.Write(head); err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return filename, nil
}
