package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"traffic_violation/internal/domain"
)

var (
	ErrImageMissing     = errors.New("no image provided")
	ErrImageTooLarge    = errors.New("image exceeds the upload limit")
	ErrImageUnsupported = errors.New("only jpg, jpeg and png images are accepted")
)

const imageFormField = "image"

// validateImage checks the size cap and sniffs the content type.
func validateImage(data []byte, maxBytes int64) error {
	if len(data) == 0 {
		return ErrImageMissing
	}
	if int64(len(data)) > maxBytes {
		return fmt.Errorf("%w (%d MB)", ErrImageTooLarge, maxBytes>>20)
	}
	switch http.DetectContentType(data) {
	case "image/jpeg", "image/png":
		return nil
	default:
		return ErrImageUnsupported
	}
}

// decodeBase64Image accepts plain base64 or a data URL.
func decodeBase64Image(encoded string, maxBytes int64) ([]byte, error) {
	if i := strings.Index(encoded, ","); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+1:]
	}
	if base64.StdEncoding.DecodedLen(len(encoded)) > int(maxBytes)+3 {
		return nil, fmt.Errorf("%w (%d MB)", ErrImageTooLarge, maxBytes>>20)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image: %w", err)
	}
	return data, validateImage(data, maxBytes)
}

// uploadBodyLimit bounds a request body carrying an image of maxBytes,
// allowing for base64 inflation and the JSON or multipart envelope.
func uploadBodyLimit(maxBytes int64) int64 {
	return maxBytes/3*4 + 64<<10
}

// bodyTooLarge reports whether a http.MaxBytesReader hit its limit. The
// reader keeps returning the same error once the limit is reached.
func bodyTooLarge(body io.Reader) bool {
	var tooLarge *http.MaxBytesError
	_, err := body.Read(make([]byte, 1))
	return errors.As(err, &tooLarge)
}

// readUploadedImage reads a multipart "image" field or a JSON image_base64 body.
// The body is capped before it is parsed.
func readUploadedImage(c *gin.Context, maxBytes int64) ([]byte, error) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, uploadBodyLimit(maxBytes))
	c.Request.Body = body

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile(imageFormField)
		if err != nil {
			if bodyTooLarge(body) {
				return nil, fmt.Errorf("%w (%d MB)", ErrImageTooLarge, maxBytes>>20)
			}
			return nil, ErrImageMissing
		}
		if file.Size > maxBytes {
			return nil, fmt.Errorf("%w (%d MB)", ErrImageTooLarge, maxBytes>>20)
		}
		f, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		return data, validateImage(data, maxBytes)
	}

	var req domain.ImageUploadDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		if bodyTooLarge(body) {
			return nil, fmt.Errorf("%w (%d MB)", ErrImageTooLarge, maxBytes>>20)
		}
		return nil, ErrImageMissing
	}
	return decodeBase64Image(req.ImageBase64, maxBytes)
}
