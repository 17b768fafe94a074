package endpoints

import (
	"github.com/jackzampolin/fable/internal/api"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	SwaggerSpecPath string
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},

		// Book endpoints
		&CreateBookEndpoint{},
		&ListBooksEndpoint{},
		&GetBookEndpoint{},
		&UpdateBookEndpoint{},
		&DeleteBookEndpoint{},

		// LLM proxy
		&GenerateEndpoint{},

		// Image job endpoints
		&SubmitImagesEndpoint{},
		&ImagesCallbackEndpoint{},
		&ImagesStatusEndpoint{},

		// Export endpoints
		&ExportBookEndpoint{},
		&DownloadExportEndpoint{},

		// Prompt endpoints
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},

		// Swagger/OpenAPI endpoints
		&SwaggerEndpoint{SpecPath: cfg.SwaggerSpecPath},
		&SwaggerUIEndpoint{},
	}
}
