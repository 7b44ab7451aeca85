// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/olegiv/library-go/internal/model"
	"github.com/olegiv/library-go/internal/store"
	"github.com/olegiv/library-go/internal/util"
)

// Section messages.
const (
	MsgSectionNotFound       = "Section does not exist"
	MsgSectionFieldsRequired = "Name and Description are required"
	MsgSectionExists         = "Section already exists"
	MsgSectionAdded          = "Section added successfully"
	MsgSectionUpdated        = "Section updated successfully"
	MsgSectionDeleted        = "Section deleted successfully"
	MsgEmptyEdit             = "Edit request is empty with any data"
)

// SectionResponse represents a section in list and detail responses.
type SectionResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	DateCreated string  `json:"date_created"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

// CreatedSectionResponse represents a newly created section.
type CreatedSectionResponse struct {
	SectionID   int64   `json:"section_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
	DateCreated string  `json:"date_created"`
}

// SectionRequest is the body of section create and update requests.
type SectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func sectionToResponse(s store.Section) SectionResponse {
	return SectionResponse{
		ID:          s.ID,
		Name:        s.Name,
		DateCreated: s.DateCreated.Format(model.DateLayoutDayFirst),
		Description: s.Description,
		Image:       util.StringPtrFromNull(s.Image),
	}
}

// ListSections handles GET /get_all_sections.
func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.allSections(r.Context())
	if err != nil {
		h.internalError(w, "failed to list sections", err)
		return
	}

	resp := make([]SectionResponse, 0, len(sections))
	for _, s := range sections {
		resp = append(resp, sectionToResponse(s))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetSection handles GET /section/{id}.
func (h *Handler) GetSection(w http.ResponseWriter, r *http.Request) {
	section, ok := h.requireSection(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, sectionToResponse(section))
}

// CreateSection handles POST /section.
func (h *Handler) CreateSection(w http.ResponseWriter, r *http.Request) {
	var req SectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	name := h.sanitize(req.Name)
	description := h.sanitize(req.Description)
	if name == "" || description == "" {
		WriteMessage(w, http.StatusBadRequest, MsgSectionFieldsRequired)
		return
	}

	section, err := h.queries.CreateSection(ctx, store.CreateSectionParams{
		Name:        name,
		Description: description,
		Image:       util.NullStringOrDefault(req.Image, model.DefaultSectionImage),
		DateCreated: h.now().UTC(),
	})
	if err != nil {
		slog.Warn("failed to create section", "name", name, "error", err)
		WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	h.invalidateSections(ctx)

	slog.Info("section created", "section_id", section.ID, "name", section.Name)
	WriteJSON(w, http.StatusCreated, map[string]any{
		"message": MsgSectionAdded,
		"section": CreatedSectionResponse{
			SectionID:   section.ID,
			Name:        section.Name,
			Description: section.Description,
			Image:       util.StringPtrFromNull(section.Image),
			DateCreated: section.DateCreated.Format(model.DateLayoutISO),
		},
	})
}

// UpdateSection handles PUT /section/{id}. Only non-empty fields are applied.
func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	section, ok := h.requireSection(w, r)
	if !ok {
		return
	}

	var req SectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	name := h.sanitize(req.Name)
	description := h.sanitize(req.Description)
	if name == "" && description == "" && req.Image == "" {
		WriteMessage(w, http.StatusBadRequest, MsgEmptyEdit)
		return
	}

	if name != "" {
		n, err := h.queries.SectionNameExists(ctx, name)
		if err != nil {
			h.internalError(w, "failed to check section name", err)
			return
		}
		if n > 0 {
			WriteMessage(w, http.StatusBadRequest, MsgSectionExists)
			return
		}
	}

	params := store.UpdateSectionParams{
		Name:        section.Name,
		Description: section.Description,
		Image:       section.Image,
		ID:          section.ID,
	}
	if name != "" {
		params.Name = name
	}
	if description != "" {
		params.Description = description
	}
	if req.Image != "" {
		params.Image = util.NullStringFromValue(req.Image)
	}

	if _, err := h.queries.UpdateSection(ctx, params); err != nil {
		slog.Warn("failed to update section", "section_id", section.ID, "error", err)
		WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	h.invalidateSections(ctx)

	slog.Info("section updated", "section_id", section.ID)
	WriteMessage(w, http.StatusOK, MsgSectionUpdated)
}

// DeleteSection handles DELETE /section/{id}.
func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	section, ok := h.requireSection(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if err := h.queries.DeleteSection(ctx, section.ID); err != nil {
		slog.Warn("failed to delete section", "section_id", section.ID, "error", err)
		WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	h.invalidateSections(ctx)

	slog.Info("section deleted", "section_id", section.ID, "name", section.Name)
	WriteMessage(w, http.StatusOK, MsgSectionDeleted)
}

func (h *Handler) requireSection(w http.ResponseWriter, r *http.Request) (store.Section, bool) {
	return requireEntityByID(w, r, "id", MsgSectionNotFound, func(id int64) (store.Section, error) {
		return h.queries.GetSection(r.Context(), id)
	})
}

// allSections reads through the section cache when one is configured.
func (h *Handler) allSections(ctx context.Context) ([]store.Section, error) {
	if h.sections != nil {
		return h.sections.All(ctx)
	}
	return h.queries.ListSections(ctx)
}

func (h *Handler) invalidateSections(ctx context.Context) {
	if h.sections != nil {
		h.sections.Invalidate(ctx)
	}
}
