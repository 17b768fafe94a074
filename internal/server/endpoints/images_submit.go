package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/fable/internal/imagejob"
	"github.com/jackzampolin/fable/internal/svcctx"
)

// SubmitImagesRequest is the body for submitting an image generation job.
type SubmitImagesRequest struct {
	Pages  []imagejob.PageSpec `json:"pages"`
	Models []string            `json:"models"`
	Book   json.RawMessage     `json:"book,omitempty"`
}

// SubmitImagesEndpoint handles POST /api/images/submit.
type SubmitImagesEndpoint struct{}

func (e *SubmitImagesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/images/submit", e.handler
}

func (e *SubmitImagesEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Submit an image generation job
//	@Description	Register a job and dispatch it to the image engine. Returns the job id immediately; progress arrives via the callback and is read via the status endpoint.
//	@Tags			images
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SubmitImagesRequest	true	"Pages and models"
//	@Success		202		{object}	imagejob.SubmitResult
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/images/submit [post]
func (e *SubmitImagesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req SubmitImagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Pages) == 0 {
		writeError(w, http.StatusBadRequest, "pages are required")
		return
	}

	models := req.Models
	if len(models) == 0 {
		if cm := svcctx.ConfigFrom(r.Context()); cm != nil {
			models = cm.Get().Defaults.ImageModels
		}
	}

	result, err := svcctx.SubmitterFrom(r.Context()).Submit(r.Context(), imagejob.SubmitRequest{
		Pages:        req.Pages,
		Models:       models,
		Book:         req.Book,
		CallbackBase: callbackBase(r),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to submit job: %v", err))
		return
	}
	writeJSON(w, http.StatusAccepted, result)
}

// callbackBase derives the externally reachable base URL of this server
// from the incoming request. Behind a proxy X-Forwarded-Proto carries
// the original scheme.
func callbackBase(r *http.Request) string {
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

func (e *SubmitImagesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return nil // submissions flow through the builder images stage
}
