// Package upload validates incoming avatar file parts before anything is
// written to storage.
package upload

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// MaxFileSize is the largest accepted upload, in bytes.
const MaxFileSize = 2_000_000

var (
	// ErrImagesOnly is returned when the extension or the declared
	// content type falls outside the allowed image set.
	ErrImagesOnly = errors.New("only jpeg, jpg, png and gif images are allowed")

	// ErrTooLarge is returned when the file part exceeds MaxFileSize.
	ErrTooLarge = fmt.Errorf("image exceeds the maximum size of %d bytes", MaxFileSize)
)

var allowedExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// Gate admits avatar uploads for a single form field. Both the lowercase
// extension and the declared Content-Type must be in the allowed set.
type Gate struct {
	field string
	now   func() time.Time

	mu   sync.Mutex
	last int64 // last issued timestamp, for collision-free names
}

func NewGate(field string) *Gate {
	return &Gate{field: field, now: time.Now}
}

// Admit validates the file part and returns the generated storage name,
// of the form <field>_<epoch-millis>_<ext>.
func (g *Gate) Admit(header *multipart.FileHeader) (string, error) {
	if header.Size > MaxFileSize {
		return "", ErrTooLarge
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExts[ext] {
		return "", ErrImagesOnly
	}
	contentType := strings.ToLower(header.Header.Get("Content-Type"))
	if !allowedContentTypes[contentType] {
		return "", ErrImagesOnly
	}
	return fmt.Sprintf("%s_%d_%s", g.field, g.stamp(), ext), nil
}

// stamp returns a strictly increasing millisecond timestamp so two admits
// in the same millisecond never share a name.
func (g *Gate) stamp() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return ms
}

// Field returns the form field name this gate watches.
func (g *Gate) Field() string { return g.field }
