package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalStorage 本地磁盘存储，文件由 gin 静态路由对外提供
type LocalStorage struct {
	basePath string
	baseURL  string
}

func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &LocalStorage{basePath: basePath, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// BasePath 存储根目录
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// BaseURL 对外访问前缀
func (s *LocalStorage) BaseURL() string {
	return s.baseURL
}

func (s *LocalStorage) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	key = filepath.ToSlash(filepath.Clean("/" + key))[1:]
	if key == "" || key == "." {
		return "", fmt.Errorf("local storage: empty key")
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	zap.L().Debug("media saved", zap.String("path", fullPath))
	return s.baseURL + "/" + key, nil
}

func (s *LocalStorage) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || key == "" {
		return nil
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(filepath.Clean("/" + key)))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
