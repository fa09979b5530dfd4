package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	v1 "axiapac.com/selfservice/selfservice/v1"
	_ "golang.org/x/image/webp"
)

// MaxPhotoBytes matches the backend upload limit.
const MaxPhotoBytes = 10 << 20

var (
	ErrEmptyPhoto       = errors.New("photo is empty")
	ErrUnsupportedImage = errors.New("photo must be a jpeg, png or webp image")
	ErrPhotoTooLarge    = errors.New("photo exceeds the upload limit")
)

var (
	contentTypeByFormat  = map[string]string{"jpeg": "image/jpeg", "png": "image/png", "webp": "image/webp"}
	extensionByMediaType = map[string]string{"image/jpeg": ".jpg", "image/png": ".png", "image/webp": ".webp"}
)

type Photo struct {
	Filename    string
	ContentType string
	Width       int
	Height      int
	Data        []byte
}

// NewPhoto validates data and fills in the content type and dimensions.
func NewPhoto(filename string, data []byte) (*Photo, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPhoto
	}
	if len(data) > MaxPhotoBytes {
		return nil, ErrPhotoTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	contentType, ok := contentTypeByFormat[format]
	if !ok {
		return nil, ErrUnsupportedImage
	}
	if filename == "" {
		filename = "photo" + extensionByMediaType[contentType]
	}

	return &Photo{
		Filename:    filename,
		ContentType: contentType,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Data:        data,
	}, nil
}

// File converts the photo to an upload.
func (p *Photo) File() *v1.File {
	if p == nil {
		return nil
	}
	return &v1.File{Filename: p.Filename, ContentType: p.ContentType, Data: p.Data}
}
