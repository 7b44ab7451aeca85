// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/olegiv/library-go/internal/middleware"
	"github.com/olegiv/library-go/internal/model"
	"github.com/olegiv/library-go/internal/store"
)

// Lending messages.
const (
	MsgRequestNotFound  = "Request does not exist"
	MsgAlreadyRequested = "Book already requested"
	MsgRequestClosed    = "Request is already closed"
	MsgBookRequested    = "Book requested successfully"
	MsgBookReturned     = "Book returned successfully"
)

// UserRequestResponse represents a lending request.
type UserRequestResponse struct {
	RequestID   int64  `json:"request_id"`
	Username    string `json:"username"`
	BookID      int64  `json:"book_id"`
	RequestDate string `json:"request_date"`
	ReturnDate  string `json:"return_date"`
	IsActive    bool   `json:"is_active"`
}

func userRequestToResponse(req store.UserRequest) UserRequestResponse {
	return UserRequestResponse{
		RequestID:   req.ID,
		Username:    req.Username,
		BookID:      req.BookID,
		RequestDate: req.RequestDate.Format(model.DateLayoutISO),
		ReturnDate:  req.ReturnDate.Format(model.DateLayoutISO),
		IsActive:    req.IsActive,
	}
}

// RequestBook handles POST /book/{id}/request. The request row and the
// user_books grant are written together.
func (h *Handler) RequestBook(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r)
	if id == nil {
		WriteMessage(w, http.StatusUnauthorized, middleware.MsgMissingAuth)
		return
	}

	book, ok := h.requireBook(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	active, err := h.queries.CountActiveRequests(ctx, store.CountActiveRequestsParams{
		Username: id.Username,
		BookID:   book.ID,
	})
	if err != nil {
		h.internalError(w, "failed to check active requests", err)
		return
	}
	if active > 0 {
		WriteMessage(w, http.StatusBadRequest, MsgAlreadyRequested)
		return
	}

	requested := h.now().UTC()
	var created store.UserRequest
	err = store.ExecTx(ctx, h.db, func(q *store.Queries) error {
		var err error
		created, err = q.CreateUserRequest(ctx, store.CreateUserRequestParams{
			Username:    id.Username,
			BookID:      book.ID,
			RequestDate: requested,
			ReturnDate:  model.ReturnDate(requested, h.lendingDays),
		})
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		if err := q.GrantUserBook(ctx, store.GrantUserBookParams{Username: id.Username, BookID: book.ID}); err != nil {
			return fmt.Errorf("granting book: %w", err)
		}
		return nil
	})
	if err != nil {
		slog.Warn("failed to create lending request", "book_id", book.ID, "username", id.Username, "error", err)
		WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("lending request created", "request_id", created.ID, "book_id", book.ID, "username", id.Username)
	WriteJSON(w, http.StatusCreated, map[string]any{
		"message": MsgBookRequested,
		"request": userRequestToResponse(created),
	})
}

// MyRequests handles GET /requests.
func (h *Handler) MyRequests(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r)
	if id == nil {
		WriteMessage(w, http.StatusUnauthorized, middleware.MsgMissingAuth)
		return
	}

	reqs, err := h.queries.ListUserRequestsByUsername(r.Context(), id.Username)
	if err != nil {
		h.internalError(w, "failed to list requests", err)
		return
	}

	resp := make([]UserRequestResponse, 0, len(reqs))
	for _, req := range reqs {
		resp = append(resp, userRequestToResponse(req))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// ReturnBook handles PUT /request/{id}/return. Only the borrower or an
// admin may close a request.
func (h *Handler) ReturnBook(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r)
	if id == nil {
		WriteMessage(w, http.StatusUnauthorized, middleware.MsgMissingAuth)
		return
	}

	req, ok := requireEntityByID(w, r, "id", MsgRequestNotFound, func(reqID int64) (store.UserRequest, error) {
		return h.queries.GetUserRequest(r.Context(), reqID)
	})
	if !ok {
		return
	}

	if req.Username != id.Username && !id.IsAdmin() {
		slog.Warn("access denied to lending request", "request_id", req.ID, "username", id.Username)
		WriteMessage(w, http.StatusForbidden, middleware.MsgForbidden)
		return
	}
	if !req.IsActive {
		WriteMessage(w, http.StatusBadRequest, MsgRequestClosed)
		return
	}

	ctx := r.Context()
	err := store.ExecTx(ctx, h.db, func(q *store.Queries) error {
		if err := q.DeactivateUserRequest(ctx, req.ID); err != nil {
			return fmt.Errorf("deactivating request: %w", err)
		}
		if err := q.RevokeUserBook(ctx, store.RevokeUserBookParams{Username: req.Username, BookID: req.BookID}); err != nil {
			return fmt.Errorf("revoking book: %w", err)
		}
		return nil
	})
	if err != nil {
		slog.Warn("failed to return book", "request_id", req.ID, "error", err)
		WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("lending request returned", "request_id", req.ID, "book_id", req.BookID, "username", req.Username)
	WriteMessage(w, http.StatusOK, MsgBookReturned)
}
