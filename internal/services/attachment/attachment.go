package attachment

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"github.com/office671/nawader/internal/domain/assistant/models"
)

const (
	// DefaultMaxSizeMB applies to generic upload slots
	DefaultMaxSizeMB = 5
	// AssistantMaxSizeMB applies to the assistant's own upload slot
	AssistantMaxSizeMB = 10

	bytesPerMB = 1024 * 1024
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEncoding        = errors.New("failed to encode attachment")
	ErrNoFile          = errors.New("no file provided")
)

// FileTooLargeError reports the limit that was exceeded
type FileTooLargeError struct {
	LimitMB   int
	SizeBytes int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file size %d bytes exceeds %d MB", e.SizeBytes, e.LimitMB)
}

func (e *FileTooLargeError) Is(target error) bool {
	return target == ErrFileTooLarge
}

// EncodingError wraps an I/O failure while reading attachment bytes
type EncodingError struct {
	Name string
	Err  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("failed to encode %q: %v", e.Name, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}

// Validator checks candidate files against the size limit and the accept hint
type Validator struct {
	MaxSizeMB     int
	AcceptedTypes []string
	// EnforceAccept turns the accept hint into a hard rejection
	EnforceAccept bool
}

func NewValidator(maxSizeMB int, accepted []string, enforce bool) *Validator {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}
	return &Validator{
		MaxSizeMB:     maxSizeMB,
		AcceptedTypes: accepted,
		EnforceAccept: enforce,
	}
}

// Validate is the package-level form used for one-off checks
func Validate(file models.File, maxSizeMB int) (*models.Attachment, error) {
	return NewValidator(maxSizeMB, nil, false).Validate(file)
}

// Validate accepts file when its size is within the limit and returns the attachment
func (v *Validator) Validate(file models.File) (*models.Attachment, error) {
	if file == nil {
		return nil, ErrNoFile
	}

	limit := int64(v.MaxSizeMB) * bytesPerMB
	if file.Size() > limit {
		return nil, &FileTooLargeError{LimitMB: v.MaxSizeMB, SizeBytes: file.Size()}
	}

	mimeType := file.MIMEType()
	if needsSniffing(mimeType) {
		sniffed, err := sniff(file)
		if err != nil {
			log.Debug().Err(err).Str("file", file.Name()).Msg("MIME sniffing failed")
		} else {
			mimeType = sniffed
		}
	}

	if len(v.AcceptedTypes) > 0 && !Accepts(v.AcceptedTypes, mimeType) {
		if v.EnforceAccept {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
		}
		log.Warn().
			Str("file", file.Name()).
			Str("mime_type", mimeType).
			Msg("Attachment type outside the accept hint")
	}

	return &models.Attachment{
		Name:      file.Name(),
		MIMEType:  mimeType,
		SizeBytes: file.Size(),
		Source:    file,
	}, nil
}

// Encode reads the attachment's full content and base64-encodes it
func Encode(att *models.Attachment) (models.EncodedPayload, error) {
	if att == nil || att.Source == nil {
		return models.EncodedPayload{}, &EncodingError{Err: ErrNoFile}
	}

	rc, err := att.Source.Open()
	if err != nil {
		return models.EncodedPayload{}, &EncodingError{Name: att.Name, Err: err}
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return models.EncodedPayload{}, &EncodingError{Name: att.Name, Err: err}
	}

	return models.EncodedPayload{
		MIMEType: att.MIMEType,
		Data:     base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// Decode is the inverse of Encode
func Decode(p models.EncodedPayload) ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.Data)
}

// Accepts reports whether mimeType matches one of the patterns ("image/*" style wildcards allowed)
func Accepts(patterns []string, mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		switch {
		case p == "*/*" || p == mt:
			return true
		case strings.HasSuffix(p, "/*") && strings.HasPrefix(mt, strings.TrimSuffix(p, "*")):
			return true
		}
	}
	return false
}

func needsSniffing(mimeType string) bool {
	return mimeType == "" || mimeType == "application/octet-stream"
}

func sniff(file models.File) (string, error) {
	rc, err := file.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	mt, err := mimetype.DetectReader(rc)
	if err != nil {
		return "", err
	}
	return mt.String(), nil
}

// memoryFile is a File backed by an in-memory buffer
type memoryFile struct {
	name     string
	mimeType string
	data     []byte
}

// NewMemoryFile wraps uploaded bytes as a File
func NewMemoryFile(name, mimeType string, data []byte) models.File {
	return &memoryFile{name: name, mimeType: mimeType, data: data}
}

func (f *memoryFile) Name() string     { return f.name }
func (f *memoryFile) MIMEType() string { return f.mimeType }
func (f *memoryFile) Size() int64      { return int64(len(f.data)) }

func (f *memoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
