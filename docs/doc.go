// Package docs provides generated OpenAPI documentation.
//
// medlens API
//
//	@title			medlens API
//	@version		1.0
//	@description	Medical document pipeline: extract lab results from reports, reanalyze corrected records and look up drug labels.
//
//	@contact.name	medlens maintainers
//	@contact.url	https://github.com/jackzampolin/medlens
//
//	@tag.name			analysis
//	@tag.description	Extract and rescore records from lab report uploads
//	@tag.name			drugs
//	@tag.description	FDA drug label lookup
//	@tag.name			prompts
//	@tag.description	Embedded prompt catalog with content hashes
//	@tag.name			health
//	@tag.description	Liveness, readiness and provider status
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/medlens/serve.go -o . --outputTypes go --parseDependency --parseInternal
