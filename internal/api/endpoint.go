package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Endpoint is one medlens operation, served as an HTTP route and exposed as
// the matching "medlens api" command.
type Endpoint interface {
	Route() (method, path string, handler http.HandlerFunc)

	// RequiresProvider is true when the handler needs a registered LLM
	// provider; such routes answer 503 while none is configured.
	RequiresProvider() bool

	// Command calls the route over HTTP. getServerURL is evaluated at run time.
	Command(getServerURL func() string) *cobra.Command
}
