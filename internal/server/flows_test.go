package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelf/service/internal/book"
	"github.com/shelf/service/internal/download"
	"github.com/shelf/service/internal/history"
	"github.com/shelf/service/internal/metrics"
	"github.com/shelf/service/internal/storage"
	"github.com/shelf/service/internal/storage/storagetest"
	"github.com/shelf/service/internal/upload"
)

var testBuckets = storage.Buckets{Books: "books", Covers: "covers"}

type catalogStore interface {
	book.Store
	upload.CatalogWriter
}

func newTestRouter(t *testing.T, catalog catalogStore, progress history.Store) (http.Handler, *storagetest.Memory) {
	t.Helper()
	mem := storagetest.NewMemory()
	require.NoError(t, storage.EnsureAll(context.Background(), mem, testBuckets))

	m := metrics.New()
	uploads := upload.NewService(catalog, mem, testBuckets)
	uploads.SetObserver(m)

	router := NewRouter(Handlers{
		Books:    book.NewHandler(book.NewService(catalog)),
		History:  history.NewHandler(history.NewService(progress)),
		Upload:   upload.NewHandler(uploads, 1<<20),
		Download: download.NewHandler(download.NewService(mem, testBuckets)),
		Metrics:  m,
	}, []string{"*"})
	return router, mem
}

func uploadBook(t *testing.T, router http.Handler, bookData, bookName, bookBody, coverName, coverBody string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	addFile := func(field, name, contentType, body string) {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+name+`"`)
		h.Set("Content-Type", contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = io.WriteString(w, body)
		require.NoError(t, err)
	}
	addFile("bookFile", bookName, "application/pdf", bookBody)
	if coverName != "" {
		addFile("coverFile", coverName, "image/jpeg", coverBody)
	}
	require.NoError(t, mw.WriteField("bookData", bookData))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/book", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func getBook(t *testing.T, router http.Handler, escapedTitle string) (int, book.Detail) {
	t.Helper()
	rec := do(router, http.MethodGet, "/api/book/"+escapedTitle, "")
	var d book.Detail
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	}
	return rec.Code, d
}

const (
	duneData = `{"id":"b-1","title":"Dune","author":"Frank Herbert","publisher":"Chilton",
		"pubDate":"1965-08-01","language":"en","totalPages":412,"fileType":"pdf","dateTime":"2024-05-01"}`
	emmaData = `{"id":"b-2","title":"Emma","author":"Jane Austen","publisher":"Chilton",
		"pubDate":"1815-12-23","language":"en","totalPages":474,"fileType":"pdf","dateTime":"2024-05-01"}`
	messiahData = `{"id":"b-1","title":"Dune Messiah","author":"Frank Herbert","publisher":"Putnam",
		"pubDate":"1969-10-15","language":"en","totalPages":256,"fileType":"epub","dateTime":"2024-05-02"}`
)

// runShelfFlows drives the public API through the ingestion, retrieval and
// history paths and checks the observable guarantees of each.
func runShelfFlows(t *testing.T, router http.Handler) {
	t.Run("upload then lookup returns exact metadata and zero progress", func(t *testing.T) {
		rec := uploadBook(t, router, duneData, "dune.pdf", "dune v1", "dune.jpg", "cover v1")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "upload Successfully", rec.Body.String())

		code, d := getBook(t, router, "Dune")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "b-1", d.ID)
		assert.Equal(t, "Dune", d.Title)
		assert.Equal(t, "Frank Herbert", d.Author)
		assert.Equal(t, "Chilton", d.Publisher)
		require.NotNil(t, d.PubDate)
		assert.True(t, d.PubDate.Equal(time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)))
		assert.Contains(t, do(router, http.MethodGet, "/api/book/Dune", "").Body.String(), `"pubDate":"1965-08-01"`)
		assert.Equal(t, int64(412), d.TotalPages)
		assert.Equal(t, "en", d.Language)
		assert.Equal(t, "pdf", d.FileType)
		assert.Equal(t, int64(0), d.ReadPages)
		assert.Equal(t, "dune.jpg", d.Image)
		assert.Equal(t, "dune.pdf", d.Location)
	})

	t.Run("unknown title is not found", func(t *testing.T) {
		code, _ := getBook(t, router, "Dune%20Chronicles")
		assert.Equal(t, http.StatusNotFound, code)
		code, _ = getBook(t, router, "dune")
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("history creates once then updates in place", func(t *testing.T) {
		require.Equal(t, http.StatusOK, do(router, http.MethodPost, "/api/book/history",
			`{"id":"s-1","bookId":"b-1","readPages":30,"updatedDate":"2024-05-01T09:00:00.000Z"}`).Code)
		require.Equal(t, http.StatusOK, do(router, http.MethodPost, "/api/book/history",
			`{"id":"s-2","bookId":"b-1","readPages":45,"updatedDate":"2024-05-01T09:05:00.000Z"}`).Code)

		rec := do(router, http.MethodGet, "/api/home/history", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var items []history.BookHistory
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		require.Len(t, items, 1)
		assert.Equal(t, history.BookHistory{
			BookID: "b-1", Title: "Dune", Author: "Frank Herbert", Publisher: "Chilton",
			TotalPages: 412, Image: "dune.jpg", ReadPages: 45,
		}, items[0])

		_, d := getBook(t, router, "Dune")
		assert.Equal(t, int64(45), d.ReadPages)
	})

	t.Run("history for unknown book is ignored", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/api/book/history", `{"id":"s-9","bookId":"ghost","readPages":3}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		var items []history.BookHistory
		require.NoError(t, json.Unmarshal(do(router, http.MethodGet, "/api/home/history", "").Body.Bytes(), &items))
		assert.Len(t, items, 1)
	})

	t.Run("downloads", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/api/download/book/dune.pdf", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "dune v1", rec.Body.String())

		assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/download/book/never.pdf", "").Code)
		assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/download/cover/never.jpg", "").Code)
	})

	t.Run("search lists books then distinct authors then distinct publishers", func(t *testing.T) {
		require.Equal(t, http.StatusOK, uploadBook(t, router, emmaData, "emma.pdf", "emma", "", "").Code)

		rec := do(router, http.MethodGet, "/api/home/search", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var items []book.SearchItem
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))

		// 2 books, 2 authors, 1 publisher
		assert.Equal(t, []book.SearchItem{
			{Type: "book", Name: "Dune", ID: "b-1"},
			{Type: "book", Name: "Emma", ID: "b-2"},
			{Type: "author", Name: "Frank Herbert", ID: "b-1"},
			{Type: "author", Name: "Jane Austen", ID: "b-2"},
			{Type: "publisher", Name: "Chilton", ID: "b-1"},
		}, items)

		var books []book.Summary
		require.NoError(t, json.Unmarshal(do(router, http.MethodGet, "/api/home/books", "").Body.Bytes(), &books))
		assert.Len(t, books, 2)
	})

	t.Run("re-upload with the same id and file name replaces everything", func(t *testing.T) {
		rec := uploadBook(t, router, messiahData, "dune.pdf", "dune v2", "dune.jpg", "cover v2")
		require.Equal(t, http.StatusOK, rec.Code)

		code, _ := getBook(t, router, "Dune")
		assert.Equal(t, http.StatusNotFound, code)

		code, d := getBook(t, router, "Dune%20Messiah")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "b-1", d.ID)
		assert.Equal(t, "Putnam", d.Publisher)
		assert.Equal(t, int64(256), d.TotalPages)
		assert.Equal(t, "epub", d.FileType)

		assert.Equal(t, "dune v2", do(router, http.MethodGet, "/api/download/book/dune.pdf", "").Body.String())
		assert.Equal(t, "cover v2", do(router, http.MethodGet, "/api/download/cover/dune.jpg", "").Body.String())
	})
}
