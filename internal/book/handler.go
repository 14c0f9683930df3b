package book

import (
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/shelf/service/internal/response"
)

// Handler holds HTTP handlers for catalog endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new book Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetBook godoc
//
//	@Summary		Get book by title
//	@Description	Exact, case-sensitive title lookup joined with the content record and reading progress (readPages is 0 when no progress exists).
//	@Tags			books
//	@Produce		json
//	@Param			title	path		string	true	"Percent-encoded book title"
//	@Success		200		{object}	Detail
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/book/{title} [get]
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	if decoded, err := url.PathUnescape(title); err == nil {
		title = decoded
	}

	d, err := h.svc.FindByTitle(r.Context(), title)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "book not found")
			return
		}
		log.Printf("book: find %q: %v", title, err)
		response.InternalError(w)
		return
	}

	response.OK(w, d)
}

// ListBooks godoc
//
//	@Summary	List books
//	@Tags		home
//	@Produce	json
//	@Success	200	{array}		Summary
//	@Failure	500	{object}	response.Envelope
//	@Router		/home/books [get]
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.ListBooks(r.Context())
	if err != nil {
		log.Printf("book: list: %v", err)
		response.InternalError(w)
		return
	}
	response.OK(w, books)
}

// SearchList godoc
//
//	@Summary		Search dropdown entries
//	@Description	Every book title, then every distinct author, then every distinct publisher.
//	@Tags			home
//	@Produce		json
//	@Success		200	{array}		SearchItem
//	@Failure		500	{object}	response.Envelope
//	@Router			/home/search [get]
func (h *Handler) SearchList(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.SearchList(r.Context())
	if err != nil {
		log.Printf("book: search list: %v", err)
		response.InternalError(w)
		return
	}
	response.OK(w, items)
}
