package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kms/internal/middleware"
	"kms/internal/models"
	"kms/internal/repository"
)

// IconURLPrefix is the public path prefix under which icons are served.
const IconURLPrefix = "/images/"

// IconUpload is an uploaded icon file held in memory until persisted.
type IconUpload struct {
	Filename string
	Content  []byte
}

// TechnologyService owns the technology catalog and its file-backed icons.
// Disk writes and row updates are not transactional with each other, so the
// order is always: write the new file, update the row, then drop the old
// file. A crash in between leaves an orphan file, never a row pointing at a
// missing icon.
type TechnologyService struct {
	repo    repository.TechnologyRepository
	iconDir string
}

// NewTechnologyService creates a new TechnologyService storing icons under iconDir.
func NewTechnologyService(repo repository.TechnologyRepository, iconDir string) *TechnologyService {
	return &TechnologyService{repo: repo, iconDir: iconDir}
}

// IconDir returns the directory icons are persisted in.
func (s *TechnologyService) IconDir() string {
	return s.iconDir
}

func (s *TechnologyService) List(ctx context.Context) ([]*models.Technology, error) {
	return s.repo.List(ctx)
}

// Create persists the icon to disk and inserts the catalog row referencing it.
func (s *TechnologyService) Create(ctx context.Context, name string, icon *IconUpload) (*models.Technology, error) {
	if name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if icon == nil {
		return nil, models.NewValidationError("Icon file is required")
	}

	iconPath, err := s.writeIcon(icon)
	if err != nil {
		return nil, err
	}

	tech := &models.Technology{Name: name, Icon: iconPath}
	if createErr := s.repo.Create(ctx, tech); createErr != nil {
		// The row never existed, so the file is safe to remove.
		s.removeIconFile(iconPath)
		return nil, createErr
	}
	return tech, nil
}

// Update replaces the name and/or icon. With a new icon the old file is
// deleted only after the row points at the new one.
func (s *TechnologyService) Update(ctx context.Context, id uint, name string, icon *IconUpload) (*models.Technology, error) {
	tech, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldIcon := tech.Icon
	if name != "" {
		tech.Name = name
	}
	if icon != nil {
		newPath, writeErr := s.writeIcon(icon)
		if writeErr != nil {
			return nil, writeErr
		}
		tech.Icon = newPath
	}

	if updateErr := s.repo.Update(ctx, tech); updateErr != nil {
		if icon != nil {
			s.removeIconFile(tech.Icon)
		}
		return nil, updateErr
	}

	if icon != nil && oldIcon != "" && oldIcon != tech.Icon {
		s.removeIconFile(oldIcon)
	}
	return tech, nil
}

// Delete removes the catalog row. The backing icon file intentionally stays
// on disk; only an icon replacement removes old files.
func (s *TechnologyService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// writeIcon stores the upload under a timestamp-generated name and returns
// the public path.
func (s *TechnologyService) writeIcon(icon *IconUpload) (string, error) {
	if err := os.MkdirAll(s.iconDir, 0o755); err != nil {
		return "", models.NewInternalError(fmt.Errorf("create icon dir: %w", err))
	}

	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), strings.ToLower(filepath.Ext(icon.Filename)))
	if err := os.WriteFile(filepath.Join(s.iconDir, name), icon.Content, 0o644); err != nil {
		return "", models.NewInternalError(fmt.Errorf("write icon file: %w", err))
	}
	return IconURLPrefix + name, nil
}

// removeIconFile best-effort deletes an icon by its public path.
func (s *TechnologyService) removeIconFile(publicPath string) {
	if !strings.HasPrefix(publicPath, IconURLPrefix) {
		return
	}
	file := filepath.Join(s.iconDir, filepath.Base(strings.TrimPrefix(publicPath, IconURLPrefix)))
	if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
		middleware.Logger.Warn("failed to remove old icon file",
			slog.String("file", file), slog.String("error", err.Error()))
	}
}
