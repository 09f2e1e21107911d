// Package media stores recipe images uploaded as base64 data URIs.
//
// Files live under <root>/recipes/<uuid>.<ext>; callers persist the path
// relative to root ("recipes/3f2a....png") and turn it into a public URL
// with Store.URL.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/foodgram/internal/logging"
)

// RecipesDir is the sub-directory recipe images are written to.
const RecipesDir = "recipes"

// MaxImageBytes caps the decoded image size.
const MaxImageBytes = 10 << 20

var (
	ErrInvalidImage  = errors.New("invalid image")
	ErrImageTooLarge = errors.New("image is too large")
)

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

type Store struct {
	root    string
	baseURL string
}

// NewStore returns a store rooted at dir that publishes files under baseURL
// (e.g. "/media/").
func NewStore(dir, baseURL string) *Store {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Store{root: dir, baseURL: baseURL}
}

func (s *Store) Root() string {
	return s.root
}

// BaseURL returns the URL prefix without a trailing slash, suitable for
// gin's Static.
func (s *Store) BaseURL() string {
	return strings.TrimSuffix(s.baseURL, "/")
}

// URL returns the public path of a stored file, or "" for an empty path.
func (s *Store) URL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return s.baseURL + filepath.ToSlash(relPath)
}

// SaveDataURI decodes "data:image/<fmt>;base64,<payload>" (or a bare base64
// payload, treated as png) and writes it to disk. It returns the path
// relative to the media root.
func (s *Store) SaveDataURI(dataURI string) (string, error) {
	declared, payload, err := splitDataURI(dataURI)
	if err != nil {
		return "", err
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return "", ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: bad base64 payload", ErrInvalidImage)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	if len(data) > MaxImageBytes {
		return "", ErrImageTooLarge
	}

	sniffed := http.DetectContentType(data)
	if !strings.HasPrefix(sniffed, "image/") {
		return "", fmt.Errorf("%w: content is %s", ErrInvalidImage, sniffed)
	}
	if declared == "" {
		declared = "image/png"
	}
	ext := extensions[declared]

	rel := path.Join(RecipesDir, uuid.New().String()+"."+ext)
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return rel, nil
}

func splitDataURI(s string) (mime, payload string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", fmt.Errorf("%w: empty", ErrInvalidImage)
	}
	if !strings.HasPrefix(s, "data:") {
		return "", s, nil
	}

	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return "", "", fmt.Errorf("%w: malformed data URI", ErrInvalidImage)
	}
	mime, enc, ok := strings.Cut(header, ";")
	if !ok || enc != "base64" {
		return "", "", fmt.Errorf("%w: data URI must be base64 encoded", ErrInvalidImage)
	}
	mime = strings.ToLower(mime)
	if _, known := extensions[mime]; !known {
		return "", "", fmt.Errorf("%w: unsupported type %q", ErrInvalidImage, mime)
	}
	return mime, payload, nil
}

// Delete removes a stored file. Missing files are not an error; paths that
// escape the media root are rejected.
func (s *Store) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", relPath, err)
	}
	return nil
}

// DeleteQuietly removes a file and logs instead of failing.
func (s *Store) DeleteQuietly(relPath string) {
	if err := s.Delete(relPath); err != nil {
		logging.Warn().Err(err).Str("path", relPath).Msg("failed to remove media file")
	}
}

func (s *Store) resolve(relPath string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(relPath))
	if clean == "/" || strings.Contains(relPath, "..") {
		return "", fmt.Errorf("invalid media path %q", relPath)
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// Orphans lists files under the recipes directory that are not in inUse and
// were last modified more than minAge ago. Paths are relative to the root.
func (s *Store) Orphans(inUse map[string]bool, minAge time.Duration, now time.Time) ([]string, error) {
	dir := filepath.Join(s.root, RecipesDir)
	var orphans []string

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if inUse[rel] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if now.Sub(info.ModTime()) < minAge {
			return nil
		}
		orphans = append(orphans, rel)
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return orphans, nil
}
