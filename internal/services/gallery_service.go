package services

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"goldpredict/internal/models"
)

// GalleryColumns is the width of the dashboard grid.
const GalleryColumns = 3

var imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// GalleryService lists the plot images shown on the dashboard.
type GalleryService struct {
	dir       string
	urlPrefix string
}

// NewGalleryService creates a new GalleryService serving dir under urlPrefix.
func NewGalleryService(dir, urlPrefix string) *GalleryService {
	return &GalleryService{dir: dir, urlPrefix: urlPrefix}
}

// Dir is the scanned directory.
func (s *GalleryService) Dir() string { return s.dir }

// Images returns the image files of the directory sorted by name. A missing
// directory has no images.
func (s *GalleryService) Images() ([]models.GalleryImage, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plots directory %s: %w", s.dir, err)
	}

	var images []models.GalleryImage
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		images = append(images, models.GalleryImage{
			Name: e.Name(),
			URL:  path.Join(s.urlPrefix, e.Name()),
		})
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })
	return images, nil
}

// Grid lays images out row by row, GalleryColumns per row.
func Grid(images []models.GalleryImage) [][]models.GalleryImage {
	rows := make([][]models.GalleryImage, 0, (len(images)+GalleryColumns-1)/GalleryColumns)
	for start := 0; start < len(images); start += GalleryColumns {
		end := min(start+GalleryColumns, len(images))
		rows = append(rows, images[start:end])
	}
	return rows
}
