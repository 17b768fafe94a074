package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/fable/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Fable server via HTTP.

These commands require a running server (fable serve).
Use --server to specify a custom server URL.

Examples:
  fable api health              # Check server health
  fable api books list          # List all books
  fable api images status <id>  # Check an image generation job`,
}

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Book document commands",
}

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Image generation job commands",
}

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Prompt template commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	// The raw LLM proxy
	apiCmd.AddCommand((&endpoints.GenerateEndpoint{}).Command(getServerURL))

	// OpenAPI spec
	apiCmd.AddCommand((&endpoints.SwaggerEndpoint{}).Command(getServerURL))

	// Books as subcommand group
	booksCmd.AddCommand((&endpoints.CreateBookEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.ListBooksEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.GetBookEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.DeleteBookEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.ExportBookEndpoint{}).Command(getServerURL))

	// Image jobs as subcommand group
	imagesCmd.AddCommand((&endpoints.ImagesStatusEndpoint{}).Command(getServerURL))

	// Prompts as subcommand group
	promptsCmd.AddCommand((&endpoints.ListPromptsEndpoint{}).Command(getServerURL))
	promptsCmd.AddCommand((&endpoints.GetPromptEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(booksCmd)
	apiCmd.AddCommand(imagesCmd)
	apiCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(apiCmd)
}
