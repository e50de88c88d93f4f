// Package assets resolves authored asset paths to loaded resources.
package assets

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/h2non/filetype"
	"github.com/jwebster45206/stage-engine/pkg/presentation"
	"github.com/spf13/afero"
)

// ErrNotFound is returned when no file backs an asset path.
var ErrNotFound = errors.New("asset not found")

// DefaultExtensions are tried in order when an asset path has no extension.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".bmp", ".gif", ".tga", ".tif"}

// unsniffedImages are image formats without magic bytes filetype can match,
// recognised by extension instead.
var unsniffedImages = map[string]string{
	".tga": "image/x-tga",
}

// Resolver loads assets from a filesystem rooted at the asset directory and
// caches them by authored path.
type Resolver struct {
	fs         afero.Fs
	logger     *slog.Logger
	extensions []string

	mu    sync.RWMutex
	cache map[string]presentation.Asset
}

// NewResolver creates a resolver over fs. Paths such as "/Game/T_Face" are
// looked up relative to the root of fs.
func NewResolver(fs afero.Fs, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		fs:         fs,
		logger:     logger,
		extensions: DefaultExtensions,
		cache:      make(map[string]presentation.Asset),
	}
}

// NewDirResolver creates a resolver rooted at dir on the OS filesystem.
func NewDirResolver(dir string, logger *slog.Logger) *Resolver {
	return NewResolver(afero.NewBasePathFs(afero.NewOsFs(), dir), logger)
}

// TryGetOrLoad returns the cached asset for assetPath, loading it on first use.
// Load failures are logged and reported as ok=false.
func (r *Resolver) TryGetOrLoad(assetPath string) (presentation.Asset, bool) {
	asset, err := r.GetOrLoad(assetPath)
	if err != nil {
		r.logger.Warn("Failed to load asset", "path", assetPath, "error", err)
		return nil, false
	}
	return asset, true
}

// GetOrLoad is TryGetOrLoad with the underlying error.
func (r *Resolver) GetOrLoad(assetPath string) (presentation.Asset, error) {
	r.mu.RLock()
	asset, ok := r.cache[assetPath]
	r.mu.RUnlock()
	if ok {
		return asset, nil
	}

	asset, err := r.load(assetPath)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[assetPath] = asset
	r.mu.Unlock()

	r.logger.Debug("Asset loaded", "path", assetPath, "type", fmt.Sprintf("%T", asset))
	return asset, nil
}

// Purge drops every cached asset.
func (r *Resolver) Purge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]presentation.Asset)
}

func (r *Resolver) load(assetPath string) (presentation.Asset, error) {
	if strings.TrimSpace(assetPath) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrNotFound)
	}

	file, err := r.locate(assetPath)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(r.fs, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset %s: %w", file, err)
	}

	kind, _ := filetype.Match(data)
	mime := kind.MIME.Value
	if kind == filetype.Unknown {
		if m, ok := unsniffedImages[strings.ToLower(path.Ext(file))]; ok {
			return &presentation.Texture{Path: assetPath, MIME: m, Size: len(data)}, nil
		}
		mime = "application/octet-stream"
	}

	if filetype.IsImage(data) {
		return &presentation.Texture{Path: assetPath, MIME: mime, Size: len(data)}, nil
	}
	return &presentation.Blob{Path: assetPath, MIME: mime, Size: len(data)}, nil
}

// locate maps an authored path to a file. Object-style paths
// ("/Game/T_Face.T_Face") are reduced to their package path first.
func (r *Resolver) locate(assetPath string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(assetPath))

	candidates := []string{clean}
	if ext := path.Ext(clean); ext != "" {
		if pkg := strings.TrimSuffix(clean, ext); path.Base(pkg) == ext[1:] {
			candidates = append(candidates, pkg)
		}
	}

	for _, c := range candidates {
		if r.isFile(c) {
			return c, nil
		}
		if path.Ext(c) == "" {
			for _, ext := range r.extensions {
				if r.isFile(c + ext) {
					return c + ext, nil
				}
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, assetPath)
}

func (r *Resolver) isFile(name string) bool {
	info, err := r.fs.Stat(name)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.logger.Debug("Asset stat failed", "file", name, "error", err)
		}
		return false
	}
	return !info.IsDir()
}
