package models

import "io"

// File is a candidate upload. Open may be called more than once.
type File interface {
	Name() string
	MIMEType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// Attachment is a validated file selected for the next submission
type Attachment struct {
	Name      string `json:"name"`
	MIMEType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`

	Source File `json:"-"`
}

// EncodedPayload is the transport form of an attachment; Data is standard base64
type EncodedPayload struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}
