package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ironsheep/attention-mcp/internal/attention"
)

// ImageCache keeps decoded images, and the attention buffers derived from
// them, so repeated tool calls on one file avoid disk reads and conversion.
//
// Decoded images are keyed by path. Converted buffers are keyed by path plus
// the Options used to build them, since the same file can be requested with a
// different color space, region or size bound.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Entries stay in memory until Evict or Clear is called. Evicting a path drops
// both the decoded image and every buffer derived from it.
type ImageCache struct {
	mu        sync.RWMutex
	images    map[string]image.Image
	converted map[convertKey]*attention.Image
}

type convertKey struct {
	path string
	opts Options
}

// NewImageCache creates an empty cache ready for concurrent use.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images:    make(map[string]image.Image),
		converted: make(map[convertKey]*attention.Image),
	}
}

// Load returns the decoded image at path, reading it from disk on first use.
//
// Supported formats are PNG, JPEG and GIF. The path string is the cache key,
// so a relative and an absolute path to the same file are cached separately.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadAttentionImage returns the attention buffer for the image at path built
// with opts (see Convert). Results are cached per (path, opts).
//
// The returned buffer is shared between callers and must not be modified;
// features never write to their input.
func (c *ImageCache) LoadAttentionImage(path string, opts Options) (*attention.Image, error) {
	key := convertKey{path: path, opts: opts}

	c.mu.RLock()
	if a, ok := c.converted[key]; ok {
		c.mu.RUnlock()
		return a, nil
	}
	c.mu.RUnlock()

	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	a, err := Convert(img, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.converted[key] = a
	c.mu.Unlock()

	return a, nil
}

// Clear removes every cached entry.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.converted = make(map[convertKey]*attention.Image)
	c.mu.Unlock()
}

// Evict removes the image at path and all buffers converted from it.
// Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	for k := range c.converted {
		if k.path == path {
			delete(c.converted, k)
		}
	}
	c.mu.Unlock()
}

// Len returns the number of decoded images held by the cache.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo describes a loaded image file.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif" or "unknown", taken from the file
	// extension.
	Format string `json:"format"`

	// ColorDepth is "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	HasAlpha      bool  `json:"has_alpha"`
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads the image at path into cache and reports its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}
