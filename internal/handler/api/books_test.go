// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/olegiv/library-go/internal/model"
	"github.com/olegiv/library-go/internal/testutil"
)

func bookBody(sectionID any, price any) string {
	return fmt.Sprintf(`{"title":"Dune","content_type":"pdf","content":"Spice","author":"Frank Herbert","download_price":%s,"section_id":%s}`,
		jsonValue(price), jsonValue(sectionID))
}

func jsonValue(v any) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case nil:
		return "null"
	default:
		return fmt.Sprint(v)
	}
}

func TestCreateBook(t *testing.T) {
	f := newAPIFixture(t)
	token := f.tokenFor(t, f.admin)
	section := testutil.CreateSection(t, f.db, "Fiction", "Novels")

	w := f.do(t, http.MethodPost, RouteBook, bookBody(section.ID, 12.5), token)
	assertStatusCode(t, w, http.StatusCreated)

	resp := decodeBody[struct {
		Message string       `json:"message"`
		Book    BookResponse `json:"book"`
	}](t, w)
	if resp.Message != MsgBookAdded {
		t.Errorf("message = %q, want %q", resp.Message, MsgBookAdded)
	}
	if resp.Book.BookID == 0 || resp.Book.SectionID != section.ID {
		t.Errorf("unexpected book %+v", resp.Book)
	}
	if resp.Book.DownloadPrice != 12.5 {
		t.Errorf("download_price = %v, want 12.5", resp.Book.DownloadPrice)
	}
	if resp.Book.Image == nil || *resp.Book.Image != model.DefaultBookImage {
		t.Errorf("image = %v, want default cover", resp.Book.Image)
	}
}

func TestCreateBook_NumericStrings(t *testing.T) {
	f := newAPIFixture(t)
	token := f.tokenFor(t, f.admin)
	section := testutil.CreateSection(t, f.db, "Fiction", "Novels")

	w := f.do(t, http.MethodPost, RouteBook, bookBody(itoa(section.ID), "7.25"), token)
	assertStatusCode(t, w, http.StatusCreated)

	books, err := f.queries.ListBooksBySection(context.Background(), section.ID)
	if err != nil {
		t.Fatalf("ListBooksBySection: %v", err)
	}
	if len(books) != 1 || books[0].DownloadPrice != 7.25 {
		t.Errorf("unexpected books %+v", books)
	}
}

func TestCreateBook_Validation(t *testing.T) {
	f := newAPIFixture(t)
	token := f.tokenFor(t, f.admin)
	section := testutil.CreateSection(t, f.db, "Fiction", "Novels")

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"missing title", `{"content_type":"pdf","content":"x","author":"a","download_price":1,"section_id":1}`, http.StatusBadRequest, MsgBookFieldsRequired},
		{"zero price", bookBody(section.ID, 0), http.StatusBadRequest, MsgBookFieldsRequired},
		{"null section", bookBody(nil, 3), http.StatusBadRequest, MsgBookFieldsRequired},
		{"empty price string", bookBody(section.ID, ""), http.StatusBadRequest, MsgBookFieldsRequired},
		{"non-numeric price", bookBody(section.ID, "cheap"), http.StatusBadRequest, MsgNotNumeric},
		{"non-numeric section", bookBody("fiction", 3), http.StatusBadRequest, MsgNotNumeric},
		{"unknown section", bookBody(999, 3), http.StatusNotFound, MsgSectionNotFound},
		{"malformed json", `{"title":`, http.StatusBadRequest, MsgInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, RouteBook, tt.body, token)
			assertStatusCode(t, w, tt.status)
			assertMessage(t, w, tt.message)
		})
	}

	n, err := f.queries.CountBooksBySection(context.Background(), section.ID)
	if err != nil {
		t.Fatalf("CountBooksBySection: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no books stored, got %d", n)
	}
}

func TestCreateBook_RequiresAdmin(t *testing.T) {
	f := newAPIFixture(t)
	section := testutil.CreateSection(t, f.db, "Fiction", "Novels")

	w := f.do(t, http.MethodPost, RouteBook, bookBody(section.ID, 5), "")
	assertStatusCode(t, w, http.StatusUnauthorized)

	w = f.do(t, http.MethodPost, RouteBook, bookBody(section.ID, 5), f.tokenFor(t, f.reader))
	assertStatusCode(t, w, http.StatusForbidden)
}

func TestListBooksBySection(t *testing.T) {
	f := newAPIFixture(t)
	fiction := testutil.CreateSection(t, f.db, "Fiction", "Novels")
	history := testutil.CreateSection(t, f.db, "History", "Past events")
	testutil.CreateBook(t, f.db, fiction.ID, "Dune")
	testutil.CreateBook(t, f.db, fiction.ID, "Hyperion")
	testutil.CreateBook(t, f.db, history.ID, "SPQR")

	w := f.do(t, http.MethodGet, "/"+itoa(fiction.ID)+"/books", "", "")
	assertStatusCode(t, w, http.StatusOK)
	books := decodeBody[[]BookResponse](t, w)
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
	for _, b := range books {
		if b.SectionID != fiction.ID {
			t.Errorf("book %q has section %d, want %d", b.Title, b.SectionID, fiction.ID)
		}
	}

	empty := testutil.CreateSection(t, f.db, "Poetry", "Verse")
	w = f.do(t, http.MethodGet, "/"+itoa(empty.ID)+"/books", "", "")
	assertStatusCode(t, w, http.StatusOK)
	if got := decodeBody[[]BookResponse](t, w); len(got) != 0 {
		t.Errorf("expected empty list, got %d", len(got))
	}

	w = f.do(t, http.MethodGet, "/999/books", "", "")
	assertStatusCode(t, w, http.StatusNotFound)
	assertMessage(t, w, MsgSectionNotFound)
}

func TestGetBook(t *testing.T) {
	f := newAPIFixture(t)
	section := testutil.CreateSection(t, f.db, "Fiction", "Novels")
	book := testutil.CreateBook(t, f.db, section.ID, "Dune")

	w := f.do(t, http.MethodGet, "/book/"+itoa(book.ID), "", "")
	assertStatusCode(t, w, http.StatusOK)

	raw := decodeBody[map[string]any](t, w)
	if _, ok := raw["section_id"]; ok {
		t.Error("book detail should not carry a top-level section_id")
	}
	got := decodeBody[BookDetailResponse](t, w)
	if got.BookID != book.ID || got.Title != "Dune" {
		t.Errorf("unexpected book %+v", got)
	}
	if got.Section.SectionID != section.ID || got.Section.Name != "Fiction" {
		t.Errorf("unexpected nested section %+v", got.Section)
	}
	if got.DateCreated != book.DateCreated.Format(model.DateLayoutISO) {
		t.Errorf("date_created = %q, want ISO date", got.DateCreated)
	}

	w = f.do(t, http.MethodGet, "/book/999", "", "")
	assertStatusCode(t, w, http.StatusNotFound)
	assertMessage(t, w, MsgBookNotFound)
}

func TestUpdateBook(t *testing.T) {
	f := newAPIFixture(t)
	token := f.tokenFor(t, f.admin)
	fiction := testutil.CreateSection(t, f.db, "Fiction", "Novels")
	history := testutil.CreateSection(t, f.db, "History", "Past events")
	book := testutil.CreateBook(t, f.db, fiction.ID, "Dune")
	path := "/book/" + itoa(book.ID)

	w := f.do(t, http.MethodPut, path, fmt.Sprintf(`{"download_price":"3.5","section_id":%d}`, history.ID), token)
	assertStatusCode(t, w, http.StatusOK)
	assertMessage(t, w, MsgBookUpdated)

	got, err := f.queries.GetBook(context.Background(), book.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.DownloadPrice != 3.5 || got.SectionID != history.ID {
		t.Errorf("price/section = %v/%d, want 3.5/%d", got.DownloadPrice, got.SectionID, history.ID)
	}
	if got.Title != "Dune" || got.Author != book.Author {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestUpdateBook_RoundTripsPlainText(t *testing.T) {
	f := newAPIFixture(t)
	token := f.tokenFor(t, f.admin)
	section := testutil.CreateSection(t, f.db, "Classics", "Old books")

	body := fmt.Sprintf(`{"title":"Pride & Prejudice","content_type":"pdf","content":"Text","author":"Tom's Press","download_price":2,"section_id":%d}`, section.ID)
	w := f.do(t, http.MethodPost, RouteBook, body, token)
	assertStatusCode(t, w, http.StatusCreated)
	created := decodeBody[struct {
		Book BookResponse `json:"book"`
	}](t, w)
	path := "/book/" + itoa(created.Book.BookID)

	for range 2 {
		w = f.do(t, http.MethodGet, path, "", "")
		assertStatusCode(t, w, http.StatusOK)
		detail := decodeBody[BookDetailResponse](t, w)

		update := fmt.Sprintf(`{"title":%q,"author":%q}`, detail.Title, detail.Author)
		w = f.do(t, http.MethodPut, path, update, token)
		assertStatusCode(t, w, http.StatusOK)
	}

	got, err := f.queries.GetBook(context.Background(), created.Book.BookID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Pride & Prejudice" || got.Author != "Tom's Press" {
		t.Errorf("stored %q / %q, want text unchanged", got.Title, got.Author)
	}
}

func TestUpdateBook_Errors(t *testing.T) {
	f := newAPIFixture(t)
	token := f.tokenFor(t, f.admin)
	section := testutil.CreateSection(t, f.db, "Fiction", "Novels")
	book := testutil.CreateBook(t, f.db, section.ID, "Dune")
	path := "/book/" + itoa(book.ID)

	w := f.do(t, http.MethodPut, "/book/999", `{"title":"X"}`, token)
	assertStatusCode(t, w, http.StatusNotFound)
	assertMessage(t, w, MsgBookNotFound)

	w = f.do(t, http.MethodPut, path, `{"download_price":0}`, token)
	assertStatusCode(t, w, http.StatusBadRequest)
	assertMessage(t, w, MsgEmptyEdit)

	w = f.do(t, http.MethodPut, path, `{"section_id":999}`, token)
	assertStatusCode(t, w, http.StatusNotFound)
	assertMessage(t, w, MsgSectionNotFound)

	got, err := f.queries.GetBook(context.Background(), book.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.SectionID != section.ID {
		t.Errorf("section_id = %d, want unchanged %d", got.SectionID, section.ID)
	}
}

func TestDeleteBook(t *testing.T) {
	f := newAPIFixture(t)
	token := f.tokenFor(t, f.admin)
	section := testutil.CreateSection(t, f.db, "Fiction", "Novels")
	book := testutil.CreateBook(t, f.db, section.ID, "Dune")

	w := f.do(t, http.MethodDelete, "/book/999", "", token)
	assertStatusCode(t, w, http.StatusNotFound)

	w = f.do(t, http.MethodDelete, "/book/"+itoa(book.ID), "", f.tokenFor(t, f.reader))
	assertStatusCode(t, w, http.StatusForbidden)

	w = f.do(t, http.MethodDelete, "/book/"+itoa(book.ID), "", token)
	assertStatusCode(t, w, http.StatusOK)
	assertMessage(t, w, MsgBookDeleted)

	w = f.do(t, http.MethodGet, "/book/"+itoa(book.ID), "", "")
	assertStatusCode(t, w, http.StatusNotFound)
}
