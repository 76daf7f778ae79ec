// Package storage keeps uploaded workbooks on the local filesystem.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]`)

// LocalFileStorage implements port.FileStorage under a base directory
type LocalFileStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage rooted at baseDir
func NewLocalFileStorage(baseDir string, logger *zap.Logger) *LocalFileStorage {
	return &LocalFileStorage{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Save writes content to path, creating parent directories. Every path
// segment is reduced to safe characters first.
func (s *LocalFileStorage) Save(ctx context.Context, path string, content []byte) error {
	fullPath := s.GetFullPath(path)
	if err := s.validatePath(fullPath); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File saved",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))
	return nil
}

// Read returns the content stored at path
func (s *LocalFileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	fullPath := s.GetFullPath(path)
	if err := s.validatePath(fullPath); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %s: %w", path, port.ErrNotFound)
		}
		s.logger.Error("Failed to read file",
			zap.String("path", fullPath),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

// GetFullPath maps a relative path onto the base directory
func (s *LocalFileStorage) GetFullPath(relativePath string) string {
	segments := strings.FieldsFunc(relativePath, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	clean := make([]string, 0, len(segments)+1)
	clean = append(clean, s.baseDir)
	for _, seg := range segments {
		if seg = SanitizeName(seg); seg != "" {
			clean = append(clean, seg)
		}
	}
	return filepath.Join(clean...)
}

// SanitizeName strips everything but letters, digits, dots, hyphens and
// underscores, and refuses names made only of dots.
func SanitizeName(name string) string {
	name = unsafeChars.ReplaceAllString(name, "")
	if strings.Trim(name, ".") == "" {
		return ""
	}
	return name
}

// validatePath checks that fullPath stays inside baseDir
func (s *LocalFileStorage) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}
	return nil
}

var _ port.FileStorage = (*LocalFileStorage)(nil)
