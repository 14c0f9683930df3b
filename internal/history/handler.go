package history

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/shelf/service/internal/response"
)

// Handler holds HTTP handlers for reading-history endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new history Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type saveHistoryRequest struct {
	ID        string `json:"id"        example:"Xk2Lr9pQa7TzWm3B"`
	BookID    string `json:"bookId"    example:"b-1"`
	ReadPages int64  `json:"readPages" example:"42"`
	// UpdatedDate is accepted for compatibility; the server clock is authoritative.
	UpdatedDate string `json:"updatedDate,omitempty" example:"2024-05-01T09:00:00Z"`
}

// SaveHistory godoc
//
//	@Summary		Record reading progress
//	@Description	Creates the progress record for a book or updates the existing one. Unknown books are ignored.
//	@Tags			history
//	@Accept			json
//	@Param			request	body	saveHistoryRequest	true	"Progress report"
//	@Success		200
//	@Failure		400	{object}	response.Envelope
//	@Failure		409	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/book/history [post]
func (h *Handler) SaveHistory(w http.ResponseWriter, r *http.Request) {
	var req saveHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	_, err := h.svc.Upsert(r.Context(), Progress{ID: req.ID, BookID: req.BookID, ReadPages: req.ReadPages})
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, ErrInvalidProgress):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrIDConflict):
		response.Conflict(w, err.Error())
	default:
		log.Printf("history: save for book %q: %v", req.BookID, err)
		response.InternalError(w)
	}
}

// ListHistory godoc
//
//	@Summary	List reading history
//	@Tags		home
//	@Produce	json
//	@Success	200	{array}		BookHistory
//	@Failure	500	{object}	response.Envelope
//	@Router		/home/history [get]
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		log.Printf("history: list: %v", err)
		response.InternalError(w)
		return
	}
	response.OK(w, items)
}
