package endpoints

import (
	"math/rand"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/fable/internal/api"
	"github.com/jackzampolin/fable/internal/imagejob"
	"github.com/jackzampolin/fable/internal/svcctx"
)

// defaultSweepProbability is the chance a status read triggers a sweep
// of expired job records when the config does not set one.
const defaultSweepProbability = 0.02

// ImagesStatusEndpoint handles GET /api/images/status/{job_id}. Status
// reads are the system's heartbeat, so expired-record cleanup piggybacks
// on them: each read has a small chance of sweeping the store.
type ImagesStatusEndpoint struct{}

func (e *ImagesStatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/images/status/{job_id}", e.handler
}

func (e *ImagesStatusEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Get image job status
//	@Tags		images
//	@Produce	json
//	@Param		job_id	path		string	true	"Job ID"
//	@Success	200		{object}	imagejob.Job
//	@Failure	404		{object}	ErrorResponse
//	@Router		/api/images/status/{job_id} [get]
func (e *ImagesStatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.JobsFrom(r.Context())

	prob := defaultSweepProbability
	if cm := svcctx.ConfigFrom(r.Context()); cm != nil {
		if p := cm.Get().Jobs.SweepProbability; p > 0 {
			prob = p
		}
	}
	if rand.Float64() < prob {
		store.Sweep(r.Context())
	}

	job := store.Get(r.Context(), r.PathValue("job_id"))
	if job == nil {
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (e *ImagesStatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Get image job status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp imagejob.Job
			if err := client.Get(cmd.Context(), "/api/images/status/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
