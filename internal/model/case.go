package model

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

const (
	// MaxCaseImages bounds the screenshots attached to a case
	MaxCaseImages = 10

	// MaxAppealImages bounds the new evidence attached to one appeal
	MaxAppealImages = 5

	// MaxImageBytes is the per-image size limit (4 MiB)
	MaxImageBytes = 4 << 20
)

// Image is an inlined attachment sent alongside the prompt text
type Image struct {
	MIMEType string `json:"mimeType" yaml:"mime_type" validate:"required"`
	Data     []byte `json:"data" yaml:"data" validate:"required,max=4194304"`
}

// NewImage wraps raw bytes, sniffing the MIME type when mimeType is empty
func NewImage(data []byte, mimeType string) Image {
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return Image{MIMEType: mimeType, Data: data}
}

// DataURL renders the image as a data: URL
func (i Image) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MIMEType, base64.StdEncoding.EncodeToString(i.Data))
}

// Base64 returns the standard base64 encoding of the image bytes
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// CaseData is the dispute submitted for judgement
type CaseData struct {
	Background  string  `json:"background" yaml:"background" validate:"required,notblank"`
	UserSide    string  `json:"userSide,omitempty" yaml:"user_side"`
	PartnerSide string  `json:"partnerSide,omitempty" yaml:"partner_side"`
	Images      []Image `json:"images,omitempty" yaml:"images" validate:"max=10,dive"`
}

// HasUserSide reports whether the user's own account was provided
func (c CaseData) HasUserSide() bool {
	return strings.TrimSpace(c.UserSide) != ""
}

// HasPartnerSide reports whether the partner's account was provided
func (c CaseData) HasPartnerSide() bool {
	return strings.TrimSpace(c.PartnerSide) != ""
}

// AppealData is the reason and extra evidence for escalating a verdict
type AppealData struct {
	Reason string  `json:"reason" yaml:"reason" validate:"required,notblank"`
	Images []Image `json:"images,omitempty" yaml:"images" validate:"max=5,dive"`
}
