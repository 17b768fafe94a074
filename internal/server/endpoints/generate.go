package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/fable/internal/api"
	"github.com/jackzampolin/fable/internal/providers"
	"github.com/jackzampolin/fable/internal/svcctx"
)

// GenerateRequest is the body for a proxied LLM call.
type GenerateRequest struct {
	Provider       string                    `json:"provider,omitempty"` // defaults from config
	Model          string                    `json:"model,omitempty"`
	System         string                    `json:"system,omitempty"`
	Messages       []providers.Message       `json:"messages"`
	Temperature    float64                   `json:"temperature,omitempty"`
	MaxTokens      int                       `json:"max_tokens,omitempty"`
	ResponseFormat *providers.ResponseFormat `json:"response_format,omitempty"`
}

// GenerateResponse is the proxied LLM result.
type GenerateResponse struct {
	Content     string          `json:"content"`
	ParsedJSON  json.RawMessage `json:"parsed_json,omitempty"`
	Provider    string          `json:"provider"`
	Model       string          `json:"model"`
	TotalTokens int             `json:"total_tokens"`
	Attempts    int             `json:"attempts"`
}

// GenerateEndpoint handles POST /api/generate. It proxies a chat request
// to the configured LLM provider. Upstream HTTP errors are mirrored to
// the caller with the upstream status code so clients can distinguish
// rate limits from hard failures.
type GenerateEndpoint struct{}

func (e *GenerateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/generate", e.handler
}

func (e *GenerateEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Proxy an LLM chat request
//	@Description	Send a chat request to the configured LLM provider
//	@Tags			generate
//	@Accept			json
//	@Produce		json
//	@Param			request	body		GenerateRequest	true	"Chat request"
//	@Success		200		{object}	GenerateResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/api/generate [post]
func (e *GenerateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages are required")
		return
	}

	providerName := req.Provider
	if providerName == "" {
		if cm := svcctx.ConfigFrom(r.Context()); cm != nil {
			providerName = cm.Get().Defaults.LLMProvider
		}
	}

	client, err := svcctx.RegistryFrom(r.Context()).GetLLM(providerName)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown provider: %s", providerName))
		return
	}

	result, err := client.Chat(r.Context(), &providers.ChatRequest{
		System:         req.System,
		Messages:       req.Messages,
		Model:          req.Model,
		Temperature:    req.Temperature,
		MaxTokens:      req.MaxTokens,
		ResponseFormat: req.ResponseFormat,
	})
	if err != nil {
		status := http.StatusBadGateway
		if upstream := providers.UpstreamStatus(err); upstream != 0 {
			status = upstream
		}
		if errors.Is(err, providers.ErrMissingAPIKey) {
			status = http.StatusInternalServerError
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Content:     result.Content,
		ParsedJSON:  result.ParsedJSON,
		Provider:    result.Provider,
		Model:       result.ModelUsed,
		TotalTokens: result.TotalTokens,
		Attempts:    result.Attempts,
	})
}

func (e *GenerateEndpoint) Command(getServerURL func() string) *cobra.Command {
	var provider, model, system string
	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Send a one-off prompt to the configured LLM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := GenerateRequest{
				Provider: provider,
				Model:    model,
				System:   system,
				Messages: []providers.Message{{Role: "user", Content: args[0]}},
			}
			var resp GenerateResponse
			if err := client.Post(cmd.Context(), "/api/generate", req, &resp); err != nil {
				return err
			}
			fmt.Println(resp.Content)
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider name")
	cmd.Flags().StringVar(&model, "model", "", "Model override")
	cmd.Flags().StringVar(&system, "system", "", "System prompt")
	return cmd
}
