// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/library-go/internal/middleware"
)

// Route patterns, relative to the /api/v1 mount point.
const (
	RouteLogin        = "/login"
	RouteRegister     = "/register"
	RouteLogout       = "/logout"
	RouteMe           = "/me"
	RouteStatus       = "/status"
	RouteAllSections  = "/get_all_sections"
	RouteSection      = "/section"
	RouteSectionID    = "/section/{id}"
	RouteSectionBooks = "/{section_id}/books"
	RouteBook         = "/book"
	RouteBookID       = "/book/{id}"
	RouteBookRatings  = "/book/{id}/ratings"
	RouteBookRating   = "/book/{id}/rating"
	RouteBookRequest  = "/book/{id}/request"
	RouteRequests     = "/requests"
	RouteReturn       = "/request/{id}/return"
)

// Routes returns the API router. Mount it under /api/v1.
func (h *Handler) Routes(tv *middleware.TokenValidator) http.Handler {
	r := chi.NewRouter()

	// Public reads
	r.Get(RouteStatus, h.Status)
	r.Get(RouteAllSections, h.ListSections)
	r.Get(RouteSectionID, h.GetSection)
	r.Get(RouteSectionBooks, h.ListBooksBySection)
	r.Get(RouteBookID, h.GetBook)
	r.Get(RouteBookRatings, h.ListRatings)

	// Login and registration, IP rate limited
	r.Group(func(r chi.Router) {
		if h.protection != nil {
			r.Use(h.protection.Middleware())
		}
		if h.sessions != nil {
			r.Use(h.sessions.LoadAndSave)
		}
		r.Post(RouteLogin, h.Login)
		r.Post(RouteRegister, h.Register)
	})

	// Any authenticated user
	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(tv))
		r.Use(middleware.RequireAuth)
		r.Use(middleware.UserRateLimit(10, 30))

		r.Get(RouteMe, h.Me)
		r.Post(RouteBookRating, h.RateBook)
		r.Post(RouteBookRequest, h.RequestBook)
		r.Get(RouteRequests, h.MyRequests)
		r.Put(RouteReturn, h.ReturnBook)

		r.Group(func(r chi.Router) {
			if h.sessions != nil {
				r.Use(h.sessions.LoadAndSave)
			}
			r.Post(RouteLogout, h.Logout)
		})
	})

	// Admin only
	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(tv))
		r.Use(middleware.RequireAdmin())

		r.Post(RouteSection, h.CreateSection)
		r.Put(RouteSectionID, h.UpdateSection)
		r.Delete(RouteSectionID, h.DeleteSection)

		r.Post(RouteBook, h.CreateBook)
		r.Put(RouteBookID, h.UpdateBook)
		r.Delete(RouteBookID, h.DeleteBook)
	})

	return r
}
