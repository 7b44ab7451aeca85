// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/library-go/internal/middleware"
	"github.com/olegiv/library-go/internal/model"
	"github.com/olegiv/library-go/internal/store"
	"github.com/olegiv/library-go/internal/util"
)

// Rating messages.
const (
	MsgInvalidRating = "Rating must be greater than 0 and at most 5"
	MsgRatingAdded   = "Rating added successfully"
)

// RatingRequest is the body of POST /book/{id}/rating.
type RatingRequest struct {
	Rating   flexFloat `json:"rating"`
	Feedback string    `json:"feedback"`
}

// RatingResponse represents a single rating.
type RatingResponse struct {
	ID       int64   `json:"id"`
	BookID   int64   `json:"book_id"`
	Username string  `json:"username"`
	Rating   float64 `json:"rating"`
	Feedback *string `json:"feedback"`
}

// BookRatingsResponse lists a book's ratings with their average.
type BookRatingsResponse struct {
	BookID  int64            `json:"book_id"`
	Average *float64         `json:"average"`
	Count   int              `json:"count"`
	Ratings []RatingResponse `json:"ratings"`
}

func ratingToResponse(r store.Rating) RatingResponse {
	return RatingResponse{
		ID:       r.ID,
		BookID:   r.BookID,
		Username: r.Username,
		Rating:   r.Rating,
		Feedback: util.StringPtrFromNull(r.Feedback),
	}
}

// RateBook handles POST /book/{id}/rating.
func (h *Handler) RateBook(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r)
	if id == nil {
		WriteMessage(w, http.StatusUnauthorized, middleware.MsgMissingAuth)
		return
	}

	book, ok := h.requireBook(w, r)
	if !ok {
		return
	}

	var req RatingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Rating.Set || !model.IsValidRating(req.Rating.Value) {
		WriteMessage(w, http.StatusBadRequest, MsgInvalidRating)
		return
	}

	rating, err := h.queries.CreateRating(r.Context(), store.CreateRatingParams{
		BookID:   book.ID,
		Username: id.Username,
		Rating:   req.Rating.Value,
		Feedback: util.NullStringFromValue(h.sanitize(req.Feedback)),
	})
	if err != nil {
		slog.Warn("failed to save book rating", "book_id", book.ID, "username", id.Username, "error", err)
		WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("book rated", "book_id", book.ID, "username", id.Username, "rating", rating.Rating)
	WriteJSON(w, http.StatusCreated, map[string]any{
		"message": MsgRatingAdded,
		"rating":  ratingToResponse(rating),
	})
}

// ListRatings handles GET /book/{id}/ratings.
func (h *Handler) ListRatings(w http.ResponseWriter, r *http.Request) {
	book, ok := h.requireBook(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	ratings, err := h.queries.ListRatingsForBook(ctx, book.ID)
	if err != nil {
		h.internalError(w, "failed to list ratings", err)
		return
	}
	avg, err := h.queries.AverageRatingForBook(ctx, book.ID)
	if err != nil {
		h.internalError(w, "failed to average ratings", err)
		return
	}

	resp := BookRatingsResponse{
		BookID:  book.ID,
		Average: util.Float64PtrFromNull(avg),
		Count:   len(ratings),
		Ratings: make([]RatingResponse, 0, len(ratings)),
	}
	for _, rt := range ratings {
		resp.Ratings = append(resp.Ratings, ratingToResponse(rt))
	}
	WriteJSON(w, http.StatusOK, resp)
}
