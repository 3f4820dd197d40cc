package endpoints

import (
	"github.com/jackzampolin/medlens/internal/api"
)

// NewRegistry returns every medlens endpoint. The server mounts its routes and
// the CLI builds "medlens api" from it.
func NewRegistry() *api.Registry {
	r := api.NewRegistry()
	r.Register(
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},
		&AnalyzeEndpoint{},
		&ReanalyzeEndpoint{},
		&SwaggerEndpoint{},
		&SwaggerUIEndpoint{},
	)
	r.RegisterGroup(api.Group{
		Name:      "drugs",
		Short:     "FDA drug label commands",
		Endpoints: []api.Endpoint{&DrugSearchEndpoint{}},
	})
	r.RegisterGroup(api.Group{
		Name:      "prompts",
		Short:     "Embedded prompt commands",
		Endpoints: []api.Endpoint{&ListPromptsEndpoint{}, &GetPromptEndpoint{}},
	})
	return r
}
