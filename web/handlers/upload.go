package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"axiapac.com/selfservice/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	PhotoExtensions      = []string{".jpg", ".jpeg", ".png", ".webp"}
	AttachmentExtensions = []string{".jpg", ".jpeg", ".png", ".pdf"}
)

const MaxUploadBytes = 10 << 20

// Upload is a stored multipart file. Name is generated and unique.
type Upload struct {
	Name        string
	Original    string
	ContentType string
	Size        int64
	Data        []byte
}

// UploadError is a rejected file, reported against its form field.
type UploadError struct {
	Field   string
	Message string
}

func (e *UploadError) Error() string {
	return e.Message
}

// ReceiveFile reads an optional file field. It returns nil, nil when the
// field is absent.
func ReceiveFile(c *gin.Context, field string, allowed []string) (*Upload, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}

	name := strings.ReplaceAll(field, "_", " ")
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if utils.Find(allowed, func(a string) bool { return a == ext }) == nil {
		types := utils.Map(allowed, func(a string) string { return strings.TrimPrefix(a, ".") })
		return nil, &UploadError{
			Field:   field,
			Message: fmt.Sprintf("The %s must be a file of type: %s.", name, strings.Join(types, ", ")),
		}
	}
	if header.Size > MaxUploadBytes {
		return nil, &UploadError{
			Field:   field,
			Message: fmt.Sprintf("The %s may not be greater than %d kilobytes.", name, MaxUploadBytes>>10),
		}
	}

	data, err := readAll(header)
	if err != nil {
		return nil, err
	}
	return &Upload{
		Name:        uuid.NewString() + ext,
		Original:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        data,
	}, nil
}

func readAll(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

