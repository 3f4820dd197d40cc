package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Group nests the commands of related endpoints under one subcommand, as in
// "medlens api drugs search". Routes are unaffected.
type Group struct {
	Name      string
	Short     string
	Endpoints []Endpoint
}

// Registry is the set of endpoints served over HTTP and mirrored as
// "medlens api" commands.
type Registry struct {
	endpoints []Endpoint
	groups    []Group
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds top-level endpoints.
func (r *Registry) Register(eps ...Endpoint) {
	r.endpoints = append(r.endpoints, eps...)
}

// RegisterGroup adds endpoints whose commands sit under g.Name.
func (r *Registry) RegisterGroup(g Group) {
	r.groups = append(r.groups, g)
}

// RegisterRoutes mounts every endpoint, grouped or not, on mux. Endpoints that
// call the reasoning service are wrapped with providerMiddleware.
func (r *Registry) RegisterRoutes(mux *http.ServeMux, providerMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	for _, ep := range r.Endpoints() {
		method, path, handler := ep.Route()
		if ep.RequiresProvider() {
			handler = providerMiddleware(handler)
		}
		mux.HandleFunc(method+" "+path, handler)
	}
}

// BuildCommands returns the "api" command tree. getServerURL is resolved when
// a command runs, after flags are parsed.
func (r *Registry) BuildCommands(getServerURL func() string) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Call a running medlens server",
		Long: `Call a running medlens server over HTTP (see "medlens serve").
Use --server to point at a server other than the default.

Examples:
  medlens api health                    # liveness
  medlens api status                    # providers and rasterizer
  medlens api analyze report.pdf        # extract a record from a document
  medlens api reanalyze record.json     # rescore a corrected record
  medlens api drugs search ibuprofen    # FDA label lookup
  medlens api prompts get analysis.extraction`,
	}

	for _, ep := range r.endpoints {
		apiCmd.AddCommand(ep.Command(getServerURL))
	}
	for _, g := range r.groups {
		groupCmd := &cobra.Command{Use: g.Name, Short: g.Short}
		for _, ep := range g.Endpoints {
			groupCmd.AddCommand(ep.Command(getServerURL))
		}
		apiCmd.AddCommand(groupCmd)
	}
	return apiCmd
}

// Endpoints returns top-level endpoints followed by grouped ones.
func (r *Registry) Endpoints() []Endpoint {
	out := append([]Endpoint(nil), r.endpoints...)
	for _, g := range r.groups {
		out = append(out, g.Endpoints...)
	}
	return out
}
