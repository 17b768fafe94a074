// Package docs provides generated OpenAPI documentation.
//
// Fable API
//
//	@title			Fable API
//	@version		1.0
//	@description	Picture-book builder API for managing books, LLM generation, and image jobs.
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/fable
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/fable/serve.go -o ./swagger --parseDependency --parseInternal
