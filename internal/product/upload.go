package product

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// DiskStore names product images on local disk. Files land in Dir and are
// served back under BaseURL + "/uploads/".
type DiskStore struct {
	Dir     string
	BaseURL string
}

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Allocate returns the file path to write an upload to and the public URL
// it will be served from. The client file name only contributes its extension.
func (s *DiskStore) Allocate(originalName string) (path, url string, err error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !imageExtensions[ext] {
		return "", "", fmt.Errorf("%w: unsupported file type %q", ErrInvalidImage, ext)
	}

	name := uuid.NewString() + ext
	return filepath.Join(s.Dir, name), s.BaseURL + "/uploads/" + name, nil
}
