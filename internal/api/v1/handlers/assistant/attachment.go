package assistant

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/office671/nawader/internal/domain/assistant/models"
	"github.com/office671/nawader/internal/services"
	"github.com/office671/nawader/internal/services/attachment"
	"github.com/office671/nawader/pkg/httpext"
)

const (
	uploadField     = "file"
	multipartMemory = 32 << 20
)

// headerFile exposes an unread multipart part; only used to reject oversized uploads
type headerFile struct {
	*multipart.FileHeader
}

func (f headerFile) Name() string                 { return f.Filename }
func (f headerFile) MIMEType() string             { return f.Header.Get("Content-Type") }
func (f headerFile) Size() int64                  { return f.FileHeader.Size }
func (f headerFile) Open() (io.ReadCloser, error) { return f.FileHeader.Open() }

// HandleSelectAttachment validates an uploaded file and holds it for the next submission
func HandleSelectAttachment(svc *services.Services, w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(svc, w, r)
	if !ok {
		return
	}

	limitMB := svc.GetAssistantConfig().MaxUploadMB
	limit := int64(limitMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, 2*limit+(1<<20))

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			sess.Reject(&attachment.FileTooLargeError{LimitMB: limitMB, SizeBytes: r.ContentLength})
			log.Warn().
				Str("session_id", sess.ID).
				Int64("content_length", r.ContentLength).
				Msg("Upload exceeded the request body limit")
			httpext.JsonErrorWithDetails(w, http.StatusRequestEntityTooLarge, httpext.ErrorResponse{
				Error: "Upload too large",
				Code:  "file_too_large",
			})
			return
		}
		log.Warn().Err(err).Msg("Client sent malformed multipart request")
		httpext.JsonError(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		httpext.JsonError(w, "Missing form field \"file\"", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var candidate models.File = headerFile{header}
	if header.Size <= limit {
		data, err := io.ReadAll(file)
		if err != nil {
			log.Error().Err(err).Str("file", header.Filename).Msg("Failed to read upload")
			httpext.JsonError(w, "Failed to read upload", http.StatusBadRequest)
			return
		}
		candidate = attachment.NewMemoryFile(header.Filename, header.Header.Get("Content-Type"), data)
	}

	att, err := sess.Select(candidate)
	if err != nil {
		messages := svc.GetMessages()
		switch {
		case errors.Is(err, attachment.ErrFileTooLarge):
			httpext.JsonErrorWithDetails(w, http.StatusRequestEntityTooLarge, httpext.ErrorResponse{
				Error: "File too large",
				Code:  "file_too_large",
			})
		case errors.Is(err, attachment.ErrUnsupportedType):
			httpext.JsonErrorWithDetails(w, http.StatusUnsupportedMediaType, httpext.ErrorResponse{
				Error:            "Unsupported file type",
				ErrorDescription: messages.UnsupportedType,
				Code:             "unsupported_type",
			})
		default:
			httpext.JsonError(w, "Invalid file", http.StatusBadRequest)
		}
		return
	}

	log.Info().
		Str("session_id", sess.ID).
		Str("file", att.Name).
		Str("mime_type", att.MIMEType).
		Int64("size_bytes", att.SizeBytes).
		Msg("Attachment selected")

	httpext.JsonResponse(w, http.StatusOK, sess.Snapshot())
}

// HandleClearAttachment drops the current selection
func HandleClearAttachment(svc *services.Services, w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(svc, w, r)
	if !ok {
		return
	}
	sess.ClearSelection()
	httpext.JsonResponse(w, http.StatusOK, sess.Snapshot())
}
