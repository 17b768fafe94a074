package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/fable/internal/api"
	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/export"
	"github.com/jackzampolin/fable/internal/svcctx"
)

// ExportRequest is the body for exporting a book.
type ExportRequest struct {
	PreferredModel string `json:"preferred_model,omitempty"`
	SkipPDF        bool   `json:"skip_pdf,omitempty"`
}

// ExportBookEndpoint handles POST /api/books/{id}/export.
type ExportBookEndpoint struct{}

func (e *ExportBookEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/books/{id}/export", e.handler
}

func (e *ExportBookEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Export a book
//	@Description	Write the book JSON and assemble the page images into a PDF
//	@Tags			export
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Book ID"
//	@Param			request	body		ExportRequest	false	"Export options"
//	@Success		200		{object}	export.Result
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/books/{id}/export [post]
func (e *ExportBookEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // empty body means defaults
	}

	ctx := r.Context()
	b, err := svcctx.BooksFrom(ctx).Get(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load book: %v", err))
		return
	}

	exporter := export.NewExporter(svcctx.HomeFrom(ctx), svcctx.LoggerFrom(ctx))
	result, err := exporter.Export(ctx, b, export.Options{
		PreferredModel: req.PreferredModel,
		SkipPDF:        req.SkipPDF,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("export failed: %v", err))
		return
	}

	_, _ = svcctx.BooksFrom(ctx).Update(ctx, b.ID, func(bk *book.Book) {
		bk.Stage = book.StageExport
	})

	writeJSON(w, http.StatusOK, result)
}

func (e *ExportBookEndpoint) Command(getServerURL func() string) *cobra.Command {
	var preferredModel string
	var skipPDF bool
	var outFile string
	cmd := &cobra.Command{
		Use:   "export <book-id>",
		Short: "Export a book to JSON and PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := ExportRequest{PreferredModel: preferredModel, SkipPDF: skipPDF}
			var resp export.Result
			if err := client.Post(cmd.Context(), "/api/books/"+args[0]+"/export", req, &resp); err != nil {
				return err
			}
			if err := api.Output(resp); err != nil {
				return err
			}
			if outFile != "" && resp.PDFPath != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := client.Download(cmd.Context(), "/api/books/"+args[0]+"/export/pdf", f); err != nil {
					return err
				}
				fmt.Println("wrote", outFile)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&preferredModel, "model", "", "Preferred image model for PDF pages")
	cmd.Flags().BoolVar(&skipPDF, "skip-pdf", false, "Export JSON only")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Also download the PDF to this path")
	return cmd
}

// DownloadExportEndpoint handles GET /api/books/{id}/export/pdf.
type DownloadExportEndpoint struct{}

func (e *DownloadExportEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/books/{id}/export/pdf", e.handler
}

func (e *DownloadExportEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Download an exported PDF
//	@Tags		export
//	@Produce	application/pdf
//	@Param		id	path	string	true	"Book ID"
//	@Success	200
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/books/{id}/export/pdf [get]
func (e *DownloadExportEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	exporter := export.NewExporter(svcctx.HomeFrom(r.Context()), svcctx.LoggerFrom(r.Context()))
	path, err := exporter.PDFPath(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

func (e *DownloadExportEndpoint) Command(getServerURL func() string) *cobra.Command {
	return nil // folded into the export command's --out flag
}
