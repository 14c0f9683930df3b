package download

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shelf/service/internal/response"
	"github.com/shelf/service/internal/storage"
)

const (
	coverContentType = "image/jpeg"
	bookContentType  = "application/pdf"
)

// Handler holds HTTP handlers for blob downloads.
type Handler struct {
	svc *Service
}

// NewHandler creates a new download Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetCover godoc
//
//	@Summary	Download a cover image
//	@Tags		download
//	@Produce	jpeg
//	@Param		link	path		string	true	"Cover blob name"
//	@Success	200		{file}		binary
//	@Failure	404		{object}	response.Envelope
//	@Failure	500		{object}	response.Envelope
//	@Router		/download/cover/{link} [get]
func (h *Handler) GetCover(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.Cover, coverContentType)
}

// GetBook godoc
//
//	@Summary	Download a book file
//	@Tags		download
//	@Produce	application/pdf
//	@Param		link	path		string	true	"Book blob name"
//	@Success	200		{file}		binary
//	@Failure	404		{object}	response.Envelope
//	@Failure	500		{object}	response.Envelope
//	@Router		/download/book/{link} [get]
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.Book, bookContentType)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, open func(context.Context, string) (*storage.Blob, error), contentType string) {
	link := chi.URLParam(r, "link")
	if decoded, err := url.PathUnescape(link); err == nil {
		link = decoded
	}

	blob, err := open(r.Context(), link)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "file not found")
			return
		}
		log.Printf("download: open %q: %v", link, err)
		response.InternalError(w)
		return
	}
	defer blob.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, link))
	w.Header().Set("Content-Type", contentType)
	if blob.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, blob); err != nil {
		log.Printf("download: stream %q: %v", link, err)
	}
}
