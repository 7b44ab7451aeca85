// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/library-go/internal/model"
	"github.com/olegiv/library-go/internal/store"
	"github.com/olegiv/library-go/internal/util"
)

// Book messages.
const (
	MsgBookNotFound       = "Book does not exist"
	MsgBookFieldsRequired = "All fields are required"
	MsgBookAdded          = "Book added successfully"
	MsgBookUpdated        = "Book updated successfully"
	MsgBookDeleted        = "Book deleted successfully"
)

// BookResponse represents a book in list and create responses.
type BookResponse struct {
	BookID        int64   `json:"book_id"`
	Title         string  `json:"title"`
	ContentType   string  `json:"content_type"`
	Content       string  `json:"content"`
	Author        string  `json:"author"`
	Image         *string `json:"image"`
	DateCreated   string  `json:"date_created"`
	DownloadPrice float64 `json:"download_price"`
	SectionID     int64   `json:"section_id"`
}

// BookSectionResponse is the section summary nested in a book detail.
type BookSectionResponse struct {
	SectionID   int64  `json:"section_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BookDetailResponse represents a single book with its section nested in
// place of the section_id field.
type BookDetailResponse struct {
	BookID        int64               `json:"book_id"`
	Title         string              `json:"title"`
	ContentType   string              `json:"content_type"`
	Content       string              `json:"content"`
	Author        string              `json:"author"`
	Image         *string             `json:"image"`
	DateCreated   string              `json:"date_created"`
	DownloadPrice float64             `json:"download_price"`
	Section       BookSectionResponse `json:"section"`
}

// BookRequest is the body of book create and update requests.
type BookRequest struct {
	Title         string    `json:"title"`
	ContentType   string    `json:"content_type"`
	Content       string    `json:"content"`
	Author        string    `json:"author"`
	Image         string    `json:"image"`
	DownloadPrice flexFloat `json:"download_price"`
	SectionID     flexID    `json:"section_id"`
}

func bookToResponse(b store.Book) BookResponse {
	return BookResponse{
		BookID:        b.ID,
		Title:         b.Title,
		ContentType:   b.ContentType,
		Content:       b.Content,
		Author:        b.Author,
		Image:         util.StringPtrFromNull(b.Image),
		DateCreated:   b.DateCreated.Format(model.DateLayoutISO),
		DownloadPrice: b.DownloadPrice,
		SectionID:     b.SectionID,
	}
}

// ListBooksBySection handles GET /{section_id}/books.
func (h *Handler) ListBooksBySection(w http.ResponseWriter, r *http.Request) {
	section, ok := requireEntityByID(w, r, "section_id", MsgSectionNotFound, func(id int64) (store.Section, error) {
		return h.queries.GetSection(r.Context(), id)
	})
	if !ok {
		return
	}

	books, err := h.queries.ListBooksBySection(r.Context(), section.ID)
	if err != nil {
		h.internalError(w, "failed to list books", err)
		return
	}

	resp := make([]BookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, bookToResponse(b))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetBook handles GET /book/{id}.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.requireBook(w, r)
	if !ok {
		return
	}

	section, err := h.queries.GetSection(r.Context(), book.SectionID)
	if err != nil {
		h.internalError(w, "failed to load book section", err)
		return
	}

	WriteJSON(w, http.StatusOK, BookDetailResponse{
		BookID:        book.ID,
		Title:         book.Title,
		ContentType:   book.ContentType,
		Content:       book.Content,
		Author:        book.Author,
		Image:         util.StringPtrFromNull(book.Image),
		DateCreated:   book.DateCreated.Format(model.DateLayoutISO),
		DownloadPrice: book.DownloadPrice,
		Section: BookSectionResponse{
			SectionID:   section.ID,
			Name:        section.Name,
			Description: section.Description,
		},
	})
}

// CreateBook handles POST /book. A zero price counts as missing.
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	title := h.sanitize(req.Title)
	author := h.sanitize(req.Author)
	if title == "" || req.ContentType == "" || req.Content == "" || author == "" ||
		!req.DownloadPrice.truthy() || !req.SectionID.truthy() {
		WriteMessage(w, http.StatusBadRequest, MsgBookFieldsRequired)
		return
	}

	if ok := h.sectionExists(ctx, w, req.SectionID.Value); !ok {
		return
	}

	book, err := h.queries.CreateBook(ctx, store.CreateBookParams{
		Title:         title,
		ContentType:   req.ContentType,
		Content:       req.Content,
		Author:        author,
		Image:         util.NullStringOrDefault(req.Image, model.DefaultBookImage),
		DateCreated:   h.now().UTC(),
		DownloadPrice: req.DownloadPrice.Value,
		SectionID:     req.SectionID.Value,
	})
	if err != nil {
		slog.Warn("failed to create book", "title", title, "error", err)
		WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("book created", "book_id", book.ID, "section_id", book.SectionID, "title", book.Title)
	WriteJSON(w, http.StatusCreated, map[string]any{
		"message": MsgBookAdded,
		"book":    bookToResponse(book),
	})
}

// UpdateBook handles PUT /book/{id}. Only truthy fields are applied.
func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.requireBook(w, r)
	if !ok {
		return
	}

	var req BookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	title := h.sanitize(req.Title)
	author := h.sanitize(req.Author)
	if title == "" && req.ContentType == "" && req.Content == "" && author == "" &&
		!req.DownloadPrice.truthy() && !req.SectionID.truthy() {
		WriteMessage(w, http.StatusBadRequest, MsgEmptyEdit)
		return
	}

	params := store.UpdateBookParams{
		Title:         book.Title,
		ContentType:   book.ContentType,
		Content:       book.Content,
		Author:        book.Author,
		Image:         book.Image,
		DownloadPrice: book.DownloadPrice,
		SectionID:     book.SectionID,
		ID:            book.ID,
	}
	if title != "" {
		params.Title = title
	}
	if req.ContentType != "" {
		params.ContentType = req.ContentType
	}
	if req.Content != "" {
		params.Content = req.Content
	}
	if author != "" {
		params.Author = author
	}
	if req.Image != "" {
		params.Image = util.NullStringFromValue(req.Image)
	}
	if req.DownloadPrice.truthy() {
		params.DownloadPrice = req.DownloadPrice.Value
	}
	if req.SectionID.truthy() {
		if ok := h.sectionExists(ctx, w, req.SectionID.Value); !ok {
			return
		}
		params.SectionID = req.SectionID.Value
	}

	if _, err := h.queries.UpdateBook(ctx, params); err != nil {
		slog.Warn("failed to update book", "book_id", book.ID, "error", err)
		WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("book updated", "book_id", book.ID)
	WriteMessage(w, http.StatusOK, MsgBookUpdated)
}

// DeleteBook handles DELETE /book/{id}.
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.requireBook(w, r)
	if !ok {
		return
	}

	if err := h.queries.DeleteBook(r.Context(), book.ID); err != nil {
		slog.Warn("failed to delete book", "book_id", book.ID, "error", err)
		WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("book deleted", "book_id", book.ID, "title", book.Title)
	WriteMessage(w, http.StatusOK, MsgBookDeleted)
}

func (h *Handler) requireBook(w http.ResponseWriter, r *http.Request) (store.Book, bool) {
	return requireEntityByID(w, r, "id", MsgBookNotFound, func(id int64) (store.Book, error) {
		return h.queries.GetBook(r.Context(), id)
	})
}

// sectionExists answers 404 (or 500) and returns false when the section is
// missing.
func (h *Handler) sectionExists(ctx context.Context, w http.ResponseWriter, id int64) bool {
	if _, err := h.queries.GetSection(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteMessage(w, http.StatusNotFound, MsgSectionNotFound)
			return false
		}
		h.internalError(w, "failed to load section", err)
		return false
	}
	return true
}
