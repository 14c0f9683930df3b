package upload

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/shelf/service/internal/response"
)

const (
	msgSuccess = "upload Successfully"
	msgFailed  = "upload Failed"
)

// Handler holds the HTTP handler for book uploads.
type Handler struct {
	svc         *Service
	memoryLimit int64
}

// NewHandler creates a new upload Handler. memoryLimit bounds the multipart
// bytes held in memory; larger parts spill to temporary files.
func NewHandler(svc *Service, memoryLimit int64) *Handler {
	return &Handler{svc: svc, memoryLimit: memoryLimit}
}

// UploadBook godoc
//
//	@Summary		Upload a book
//	@Description	Stores the book file and optional cover in object storage and records the catalog entry. bookData is a JSON string with id, title, author, publisher, pubDate, language, totalPages, fileType and dateTime.
//	@Tags			upload
//	@Accept			multipart/form-data
//	@Produce		plain
//	@Param			bookFile	formData	file	true	"Book file"
//	@Param			coverFile	formData	file	false	"Cover image"
//	@Param			bookData	formData	string	true	"Book metadata (JSON)"
//	@Success		200			{string}	string	"upload Successfully"
//	@Failure		400			{string}	string	"upload Failed"
//	@Failure		500			{string}	string	"upload Failed"
//	@Router			/upload/book [post]
func (h *Handler) UploadBook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.memoryLimit); err != nil {
		log.Printf("upload: parse multipart form: %v", err)
		response.Text(w, http.StatusBadRequest, msgFailed)
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	bookFile, bookHeader, err := r.FormFile("bookFile")
	if err != nil {
		log.Printf("upload: bookFile: %v", err)
		response.Text(w, http.StatusBadRequest, msgFailed)
		return
	}
	defer bookFile.Close()

	req := Request{
		Book:     fileFromPart(bookFile, bookHeader),
		Metadata: []byte(r.FormValue("bookData")),
	}

	coverFile, coverHeader, err := r.FormFile("coverFile")
	switch {
	case err == nil:
		defer coverFile.Close()
		cover := fileFromPart(coverFile, coverHeader)
		req.Cover = &cover
	case !errors.Is(err, http.ErrMissingFile):
		log.Printf("upload: coverFile: %v", err)
		response.Text(w, http.StatusBadRequest, msgFailed)
		return
	}

	if err := h.svc.Upload(r.Context(), req); err != nil {
		log.Printf("upload: %v", err)
		if errors.Is(err, ErrInvalidPayload) {
			response.Text(w, http.StatusBadRequest, msgFailed)
			return
		}
		response.Text(w, http.StatusInternalServerError, msgFailed)
		return
	}

	response.Text(w, http.StatusOK, msgSuccess)
}

func fileFromPart(f multipart.File, h *multipart.FileHeader) File {
	return File{
		Name:        h.Filename,
		Size:        h.Size,
		ContentType: h.Header.Get("Content-Type"),
		Reader:      f,
	}
}
