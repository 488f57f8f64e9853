// Package avatars derives display thumbnails from uploaded avatar images.
package avatars

import "github.com/h2non/bimg"

// ThumbnailSize is the square edge length of generated thumbnails.
const ThumbnailSize = 256

// Thumbnail crops and resizes the image to ThumbnailSize squared.
func Thumbnail(data []byte) ([]byte, error) {
	return bimg.NewImage(data).Process(bimg.Options{
		Width:   ThumbnailSize,
		Height:  ThumbnailSize,
		Crop:    true,
		Gravity: bimg.GravityCentre,
	})
}

// ThumbnailName is the storage name for the thumbnail of an avatar.
func ThumbnailName(name string) string {
	return "thumb_" + name
}
