package attachment

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/office671/nawader/internal/domain/assistant/models"
)

// sizedFile reports an arbitrary size without holding the bytes
type sizedFile struct {
	size    int64
	openErr error
	readErr error
}

func (f *sizedFile) Name() string     { return "report.pdf" }
func (f *sizedFile) MIMEType() string { return "application/pdf" }
func (f *sizedFile) Size() int64      { return f.size }

func (f *sizedFile) Open() (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(&failingReader{err: f.readErr}), nil
}

type failingReader struct{ err error }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	return 0, io.EOF
}

func TestValidateSizeBoundary(t *testing.T) {
	tests := []struct {
		name      string
		size      int64
		limitMB   int
		wantError bool
	}{
		{"empty file", 0, 5, false},
		{"exactly at limit", 5 * 1024 * 1024, 5, false},
		{"one byte over", 5*1024*1024 + 1, 5, true},
		{"assistant slot allows 10MB", 10 * 1024 * 1024, AssistantMaxSizeMB, false},
		{"assistant slot rejects above 10MB", 10*1024*1024 + 1, AssistantMaxSizeMB, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			att, err := Validate(&sizedFile{size: tt.size}, tt.limitMB)
			if tt.wantError {
				assert.ErrorIs(t, err, ErrFileTooLarge)
				var tooLarge *FileTooLargeError
				if assert.True(t, errors.As(err, &tooLarge)) {
					assert.Equal(t, tt.limitMB, tooLarge.LimitMB)
				}
				assert.Nil(t, att)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.size, att.SizeBytes)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, size := range []int{0, 1, 2, 3, 57, 1024, 64 * 1024} {
		raw := make([]byte, size)
		rng.Read(raw)

		att, err := Validate(NewMemoryFile("blob.bin", "image/png", raw), DefaultMaxSizeMB)
		require.NoError(t, err)

		payload, err := Encode(att)
		require.NoError(t, err)
		assert.Equal(t, "image/png", payload.MIMEType)

		decoded, err := Decode(payload)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(raw, decoded), "size %d did not round-trip", size)
	}
}

func TestEncodeReadFailure(t *testing.T) {
	ioErr := errors.New("disk went away")

	tests := []struct {
		name string
		file *sizedFile
	}{
		{"open fails", &sizedFile{size: 10, openErr: ioErr}},
		{"read fails", &sizedFile{size: 10, readErr: ioErr}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			att, err := Validate(tt.file, DefaultMaxSizeMB)
			require.NoError(t, err)

			_, err = Encode(att)
			assert.ErrorIs(t, err, ErrEncoding)
			assert.ErrorIs(t, err, ioErr)
		})
	}
}

func TestValidateSniffsMissingMIMEType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	att, err := Validate(NewMemoryFile("upload", "", png), DefaultMaxSizeMB)
	require.NoError(t, err)
	assert.Equal(t, "image/png", att.MIMEType)
}

func TestAcceptHint(t *testing.T) {
	accepted := []string{"image/*", "application/pdf", "text/plain"}

	assert.True(t, Accepts(accepted, "image/jpeg"))
	assert.True(t, Accepts(accepted, "text/plain; charset=utf-8"))
	assert.True(t, Accepts(accepted, "APPLICATION/PDF"))
	assert.False(t, Accepts(accepted, "application/zip"))

	zip := NewMemoryFile("a.zip", "application/zip", []byte("PK"))

	_, err := NewValidator(5, accepted, false).Validate(zip)
	assert.NoError(t, err, "hint only logs when not enforced")

	_, err = NewValidator(5, accepted, true).Validate(zip)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestValidateNilFile(t *testing.T) {
	_, err := Validate(nil, DefaultMaxSizeMB)
	assert.ErrorIs(t, err, ErrNoFile)
}

var _ models.File = (*sizedFile)(nil)
