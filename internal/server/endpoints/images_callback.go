package endpoints

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/fable/internal/imagejob"
	"github.com/jackzampolin/fable/internal/svcctx"
)

// maxCallbackBody bounds engine delivery payloads.
const maxCallbackBody = 10 << 20

// ImagesCallbackEndpoint handles POST /api/images/callback/{job_id}.
// The engine posts result deliveries here in any of three body shapes:
// a bulk replace keyed by page index, a single page append, or an array
// of page results.
type ImagesCallbackEndpoint struct{}

func (e *ImagesCallbackEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/images/callback/{job_id}", e.handler
}

func (e *ImagesCallbackEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Receive image results from the engine
//	@Description	Accepts a result delivery for a job. Deliveries merge into the job record; completion is derived from the merged result count.
//	@Tags			images
//	@Accept			json
//	@Produce		json
//	@Param			job_id	path		string	true	"Job ID"
//	@Success		200		{object}	imagejob.Job
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/images/callback/{job_id} [post]
func (e *ImagesCallbackEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	logger := svcctx.LoggerFrom(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read body")
		return
	}

	store := svcctx.JobsFrom(r.Context())
	if store.Get(r.Context(), jobID) == nil {
		logger.Warn("callback for unknown job", "job_id", jobID)
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}

	var mergeErr error
	updated := store.Update(r.Context(), jobID, func(j *imagejob.Job) {
		mergeErr = imagejob.ApplyDelivery(j, body)
	})
	if mergeErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("malformed delivery: %v", mergeErr))
		return
	}
	if updated == nil {
		writeError(w, http.StatusInternalServerError, "failed to persist delivery")
		return
	}

	logger.Info("delivery merged",
		"job_id", jobID,
		"completed", updated.CompletedPages,
		"total", updated.TotalPages,
		"status", updated.Status)
	writeJSON(w, http.StatusOK, updated)
}

func (e *ImagesCallbackEndpoint) Command(getServerURL func() string) *cobra.Command {
	return nil // only the engine calls this
}
