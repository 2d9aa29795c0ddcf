// Package storage 媒体存储：S3 兼容对象存储或本地磁盘
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidImage 图片既不是 URL 也不是合法的 data URL
var ErrInvalidImage = errors.New("invalid image payload")

// MediaService 上传返回可公开访问的 URL
type MediaService interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// UploadImage 处理客户端提交的图片字段：
// http(s) URL 原样返回；data:image/...;base64,... 解码后上传到 folder 下
func UploadImage(ctx context.Context, media MediaService, folder, image string) (string, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return "", nil
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image, nil
	}
	if media == nil {
		return "", fmt.Errorf("media storage is not configured")
	}

	contentType, data, err := DecodeDataURL(image)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.New().String(), extensionFor(contentType))
	return media.Upload(ctx, key, contentType, bytes.NewReader(data))
}

// DecodeDataURL 解析 base64 data URL
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrInvalidImage
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidImage
	}
	contentType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 || !strings.HasPrefix(contentType, "image/") {
		return "", nil, ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return "", nil, ErrInvalidImage
	}
	return contentType, data, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
