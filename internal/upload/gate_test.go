package upload

import (
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(filename, contentType string, size int64) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	return &multipart.FileHeader{
		Filename: filename,
		Header:   h,
		Size:     size,
	}
}

func TestGateAdmitsAllowedImages(t *testing.T) {
	g := NewGate("image")

	cases := []struct {
		filename    string
		contentType string
	}{
		{"avatar.jpeg", "image/jpeg"},
		{"avatar.jpg", "image/jpeg"},
		{"avatar.png", "image/png"},
		{"avatar.gif", "image/gif"},
		{"AVATAR.PNG", "image/png"}, // extension check is case-insensitive
	}
	for _, tc := range cases {
		t.Run(tc.filename, func(t *testing.T) {
			name, err := g.Admit(header(tc.filename, tc.contentType, 1024))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(name, "image_"))
			assert.True(t, strings.HasSuffix(name, strings.ToLower(tc.filename[strings.LastIndex(tc.filename, "."):])))
		})
	}
}

func TestGateRejectsDisallowedTypes(t *testing.T) {
	g := NewGate("image")

	cases := []struct {
		name        string
		filename    string
		contentType string
	}{
		{"bad extension", "notes.txt", "text/plain"},
		{"no extension", "avatar", "image/png"},
		{"executable disguised by content type", "payload.exe", "image/png"},
		{"good extension, bad content type", "avatar.png", "application/octet-stream"},
		{"svg", "avatar.svg", "image/svg+xml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.Admit(header(tc.filename, tc.contentType, 1024))
			assert.ErrorIs(t, err, ErrImagesOnly)
		})
	}
}

func TestGateRejectsOversizedFiles(t *testing.T) {
	g := NewGate("image")

	_, err := g.Admit(header("avatar.png", "image/png", MaxFileSize+1))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = g.Admit(header("avatar.png", "image/png", MaxFileSize))
	assert.NoError(t, err)
}

func TestGateGeneratedNameUsesTimestamp(t *testing.T) {
	g := NewGate("image")
	fixed := time.UnixMilli(1700000000000)
	g.now = func() time.Time { return fixed }

	name, err := g.Admit(header("avatar.png", "image/png", 10))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("image_%d_.png", fixed.UnixMilli()), name)
}
