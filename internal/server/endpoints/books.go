package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/fable/internal/api"
	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/svcctx"
)

// CreateBookRequest is the body for creating a book.
type CreateBookRequest struct {
	Title string     `json:"title"`
	Brief book.Brief `json:"brief"`
}

// CreateBookEndpoint handles POST /api/books.
type CreateBookEndpoint struct{}

func (e *CreateBookEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/books", e.handler
}

func (e *CreateBookEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Create a book
//	@Description	Create a new book from a creative brief
//	@Tags			books
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateBookRequest	true	"Book brief"
//	@Success		201		{object}	book.Book
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/books [post]
func (e *CreateBookEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Brief.PageCount <= 0 {
		writeError(w, http.StatusBadRequest, "brief.page_count must be positive")
		return
	}

	b := &book.Book{Title: req.Title, Brief: req.Brief}
	if err := svcctx.BooksFrom(r.Context()).Create(r.Context(), b); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create book: %v", err))
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (e *CreateBookEndpoint) Command(getServerURL func() string) *cobra.Command {
	var title, audience, ageRange, theme, premise, readingLevel string
	var pageCount int
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a book from a creative brief",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := CreateBookRequest{
				Title: title,
				Brief: book.Brief{
					Audience:     audience,
					AgeRange:     ageRange,
					Theme:        theme,
					Premise:      premise,
					ReadingLevel: readingLevel,
					PageCount:    pageCount,
				},
			}
			var resp book.Book
			if err := client.Post(cmd.Context(), "/api/books", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Working title")
	cmd.Flags().StringVar(&audience, "audience", "", "Target audience")
	cmd.Flags().StringVar(&ageRange, "age-range", "", "Age range (e.g. 3-5)")
	cmd.Flags().StringVar(&theme, "theme", "", "Story theme")
	cmd.Flags().StringVar(&premise, "premise", "", "Story premise")
	cmd.Flags().StringVar(&readingLevel, "reading-level", "", "Reading level")
	cmd.Flags().IntVar(&pageCount, "pages", 12, "Page count")
	return cmd
}

// ListBooksEndpoint handles GET /api/books.
type ListBooksEndpoint struct{}

func (e *ListBooksEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/books", e.handler
}

func (e *ListBooksEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	List books
//	@Tags		books
//	@Produce	json
//	@Success	200	{array}		book.Book
//	@Failure	500	{object}	ErrorResponse
//	@Router		/api/books [get]
func (e *ListBooksEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	books, err := svcctx.BooksFrom(r.Context()).List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list books: %v", err))
		return
	}
	if books == nil {
		books = []*book.Book{}
	}
	writeJSON(w, http.StatusOK, books)
}

func (e *ListBooksEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List books",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp []book.Book
			if err := client.Get(cmd.Context(), "/api/books", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetBookEndpoint handles GET /api/books/{id}.
type GetBookEndpoint struct{}

func (e *GetBookEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/books/{id}", e.handler
}

func (e *GetBookEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Get a book
//	@Tags		books
//	@Produce	json
//	@Param		id	path		string	true	"Book ID"
//	@Success	200	{object}	book.Book
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/books/{id} [get]
func (e *GetBookEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	b, err := svcctx.BooksFrom(r.Context()).Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get book: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (e *GetBookEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <book-id>",
		Short: "Get a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp book.Book
			if err := client.Get(cmd.Context(), "/api/books/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// UpdateBookEndpoint handles PUT /api/books/{id}. The body is a full
// book document; id, created_at and updated_at are server-controlled.
type UpdateBookEndpoint struct{}

func (e *UpdateBookEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/books/{id}", e.handler
}

func (e *UpdateBookEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Replace a book document
//	@Tags		books
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"Book ID"
//	@Param		request	body		book.Book	true	"Book document"
//	@Success	200		{object}	book.Book
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/api/books/{id} [put]
func (e *UpdateBookEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var incoming book.Book
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := svcctx.BooksFrom(r.Context()).Update(r.Context(), r.PathValue("id"), func(b *book.Book) {
		incoming.ID = b.ID
		incoming.CreatedAt = b.CreatedAt
		*b = incoming
	})
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to update book: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (e *UpdateBookEndpoint) Command(getServerURL func() string) *cobra.Command {
	return nil // updates flow through the builder, not a raw CLI command
}

// DeleteBookEndpoint handles DELETE /api/books/{id}.
type DeleteBookEndpoint struct{}

func (e *DeleteBookEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/books/{id}", e.handler
}

func (e *DeleteBookEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Delete a book
//	@Tags		books
//	@Param		id	path	string	true	"Book ID"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/books/{id} [delete]
func (e *DeleteBookEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if err := svcctx.BooksFrom(r.Context()).Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, book.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete book: %v", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteBookEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <book-id>",
		Short: "Delete a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/books/"+args[0]); err != nil {
				return err
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}
}
