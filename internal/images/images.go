package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
)

// MaxSize is the largest image accepted, 10MB.
const MaxSize = 10 * 1024 * 1024

var (
	// ErrNotImage is returned for payloads whose content is not image/*.
	ErrNotImage = errors.New("file is not an image")
	// ErrTooLarge is returned for payloads of MaxSize or more.
	ErrTooLarge = errors.New("image too large (max 10MB)")
	// ErrMalformedDataURI is returned when a data URI has no base64 payload.
	ErrMalformedDataURI = errors.New("malformed image data URI")
)

// Image is an in-memory image payload
type Image struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int    `json:"size"`
}

// FromBytes sniffs the content type of data and rejects anything that is not an image.
func FromBytes(data []byte) (*Image, error) {
	if len(data) >= MaxSize {
		return nil, ErrTooLarge
	}

	mimeType := http.DetectContentType(data)
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, mimeType)
	}

	img := &Image{MIMEType: mimeType, Data: data, Size: len(data)}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width, img.Height = cfg.Width, cfg.Height
	}
	return img, nil
}

// DataURI encodes the image as data:<mime>;base64,<payload>
func (i *Image) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// SplitDataURI separates the encoding prefix from the base64 payload. The
// MIME type falls back to image/jpeg when the prefix does not name one.
func SplitDataURI(uri string) (mimeType, payload string, err error) {
	prefix, payload, ok := strings.Cut(uri, ",")
	if !ok || payload == "" {
		return "", "", ErrMalformedDataURI
	}

	mimeType = "image/jpeg"
	header := strings.TrimPrefix(prefix, "data:")
	if mt, _, _ := strings.Cut(header, ";"); strings.HasPrefix(mt, "image/") {
		mimeType = mt
	}
	return mimeType, payload, nil
}

// ParseDataURI decodes a data URI into an Image
func ParseDataURI(uri string) (*Image, error) {
	mimeType, payload, err := SplitDataURI(uri)
	if err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
	}

	img, err := FromBytes(data)
	if err != nil {
		return nil, err
	}
	// the declared type wins over sniffing, e.g. for webp
	img.MIMEType = mimeType
	return img, nil
}
