package endpoints

import (
	"net/http"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/fable/internal/api"
	"github.com/jackzampolin/fable/internal/prompts"
	"github.com/jackzampolin/fable/internal/svcctx"
)

// PromptInfo summarizes one registered prompt for listing.
type PromptInfo struct {
	Key         string   `json:"key"`
	Description string   `json:"description,omitempty"`
	Variables   []string `json:"variables,omitempty"`
	Hash        string   `json:"hash"`
	IsOverride  bool     `json:"is_override"`
}

// ListPromptsEndpoint handles GET /api/prompts.
type ListPromptsEndpoint struct{}

func (e *ListPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts", e.handler
}

func (e *ListPromptsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	List prompt templates
//	@Tags		prompts
//	@Produce	json
//	@Success	200	{array}	PromptInfo
//	@Router		/api/prompts [get]
func (e *ListPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resolver := svcctx.ResolverFrom(r.Context())

	var infos []PromptInfo
	for _, p := range resolver.AllEmbedded() {
		info := PromptInfo{
			Key:         p.Key,
			Description: p.Description,
			Variables:   p.Variables,
			Hash:        p.Hash,
		}
		if resolved, err := resolver.Resolve(p.Key); err == nil {
			info.IsOverride = resolved.IsOverride
			info.Hash = resolved.Hash
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	writeJSON(w, http.StatusOK, infos)
}

func (e *ListPromptsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List prompt templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp []PromptInfo
			if err := client.Get(cmd.Context(), "/api/prompts", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetPromptEndpoint handles GET /api/prompts/{key}.
type GetPromptEndpoint struct{}

func (e *GetPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts/{key}", e.handler
}

func (e *GetPromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Get a prompt's resolved text
//	@Tags		prompts
//	@Produce	json
//	@Param		key	path		string	true	"Prompt key"
//	@Success	200	{object}	prompts.ResolvedPrompt
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/prompts/{key} [get]
func (e *GetPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resolved, err := svcctx.ResolverFrom(r.Context()).Resolve(r.PathValue("key"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}

func (e *GetPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a prompt's resolved text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp prompts.ResolvedPrompt
			if err := client.Get(cmd.Context(), "/api/prompts/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
