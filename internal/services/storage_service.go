package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/picorama/server/internal/models"
)

// StorageService handles the name-keyed flat file layout: originals under the
// media root, derivatives under the thumbs root.
type StorageService struct {
	mediaPath        string
	thumbsPath       string
	maxFileSizeBytes int64
}

// Derivative suffixes appended to the canonical name for downscaled copies
var derivativeSuffixes = []string{"-1280", "-800"}

var safeNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// NewStorageService creates a new StorageService rooted at the given paths
func NewStorageService(mediaPath, thumbsPath string, maxFileSizeMB int64) (*StorageService, error) {
	if strings.TrimSpace(mediaPath) == "" || strings.TrimSpace(thumbsPath) == "" {
		return nil, fmt.Errorf("media and thumbs paths cannot be empty")
	}

	absMedia, err := filepath.Abs(mediaPath)
	if err != nil {
		return nil, err
	}
	absThumbs, err := filepath.Abs(thumbsPath)
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{absMedia, absThumbs} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	return &StorageService{
		mediaPath:        absMedia,
		thumbsPath:       absThumbs,
		maxFileSizeBytes: maxFileSizeMB * 1024 * 1024,
	}, nil
}

// CheckSize validates an upload against the configured size limit
func (s *StorageService) CheckSize(size int64) error {
	if size > s.maxFileSizeBytes {
		return models.ErrFileTooLarge
	}
	return nil
}

// OriginalPath returns the absolute path of an entry's original file
func (s *StorageService) OriginalPath(name string) (string, error) {
	return s.join(s.mediaPath, name+".jpg")
}

// DerivativePath returns the absolute path of a derivative at the given suffix
func (s *StorageService) DerivativePath(name, suffix string) (string, error) {
	return s.join(s.thumbsPath, name+suffix+".jpg")
}

// WriteOriginal stores the rotation-corrected original. The exclusive create
// doubles as the on-disk duplicate barrier: a second upload producing the same
// canonical name fails with models.ErrDuplicateName.
func (s *StorageService) WriteOriginal(name string, r io.Reader) (string, error) {
	path, err := s.OriginalPath(name)
	if err != nil {
		return "", err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return "", models.ErrDuplicateName
		}
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		os.Remove(path) // Clean up on error
		return "", err
	}

	return path, nil
}

// WriteDerivative stores a downscaled copy. Derivatives are overwritten
// freely so a failed earlier ingestion never blocks a retry.
func (s *StorageService) WriteDerivative(name, suffix string, r io.Reader) (string, error) {
	path, err := s.DerivativePath(name, suffix)
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		os.Remove(path)
		return "", err
	}

	return path, nil
}

// Discard removes files written earlier in a failed ingestion
func (s *StorageService) Discard(paths []string) {
	for _, p := range paths {
		if p != "" {
			os.Remove(p) // Ignore errors for non-existent files
		}
	}
}

// RemoveEntry removes an entry's original and all derivatives. Returns true
// when the original existed.
func (s *StorageService) RemoveEntry(name string) bool {
	removed := false
	if path, err := s.OriginalPath(name); err == nil {
		removed = os.Remove(path) == nil
	}
	for _, suffix := range derivativeSuffixes {
		if path, err := s.DerivativePath(name, suffix); err == nil {
			os.Remove(path)
		}
	}
	return removed
}

// ExistsOriginal checks whether an entry's original file is present
func (s *StorageService) ExistsOriginal(name string) bool {
	path, err := s.OriginalPath(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// ReadOriginal loads an original file by its bare filename within the media root
func (s *StorageService) ReadOriginal(filename string) ([]byte, error) {
	path, err := s.join(s.mediaPath, filename)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// ListOriginals returns the filenames in the media root, for bulk import
func (s *StorageService) ListOriginals() ([]string, error) {
	entries, err := os.ReadDir(s.mediaPath)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e.Name())
		}
	}
	return files, nil
}

// MediaPath returns the media root directory
func (s *StorageService) MediaPath() string {
	return s.mediaPath
}

// ThumbsPath returns the thumbs root directory
func (s *StorageService) ThumbsPath() string {
	return s.thumbsPath
}

// join builds a path under root, rejecting names that could escape it
func (s *StorageService) join(root, filename string) (string, error) {
	if !safeNamePattern.MatchString(filename) || strings.Contains(filename, "..") {
		return "", models.ErrPathTraversal
	}

	path := filepath.Join(root, filename)

	// Security check: ensure path stays within the root
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(abs, root+string(os.PathSeparator)) {
		return "", models.ErrPathTraversal
	}

	return abs, nil
}
