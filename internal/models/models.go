package models

import (
	"time"

	"github.com/lehigh-university-libraries/imagetranslator/internal/images"
)

// Session is the working state of one image: the uploaded picture and the
// latest settled extraction, translation and improvement.
type Session struct {
	ID    string        `json:"id"`
	Image *images.Image `json:"image,omitempty"`
	// DataURI is the image as sent to the vision model.
	DataURI          string    `json:"-"`
	ExtractedText    string    `json:"extracted_text,omitempty"`
	DetectedLanguage string    `json:"detected_language,omitempty"`
	TargetLanguage   string    `json:"target_language,omitempty"`
	TranslatedText   string    `json:"translated_text,omitempty"`
	Improved         bool      `json:"improved,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SetImage replaces the image wholesale. Text derived from the previous
// image is cleared.
func (s *Session) SetImage(img *images.Image) {
	s.Image = img
	s.DataURI = img.DataURI()
	s.ExtractedText = ""
	s.DetectedLanguage = ""
	s.TranslatedText = ""
	s.Improved = false
}
