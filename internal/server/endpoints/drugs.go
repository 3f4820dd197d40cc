package endpoints

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/medlens/internal/api"
	"github.com/jackzampolin/medlens/internal/formulary"
)

// MsgNoDrugName is returned when the search has no name.
const MsgNoDrugName = "Please enter a drug name."

// DrugSearchEndpoint handles GET /api/drugs/search.
type DrugSearchEndpoint struct{}

var _ api.Endpoint = (*DrugSearchEndpoint)(nil)

func (e *DrugSearchEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/drugs/search", e.handler
}

func (e *DrugSearchEndpoint) RequiresProvider() bool { return false }

// handler godoc
//
//	@Summary		Search the FDA drug label database
//	@Description	Colloquial names are mapped to generic and brand names before the FDA lookup when an LLM provider is configured.
//	@Tags			drugs
//	@Produce		json
//	@Param			name	query		string	true	"Drug name, e.g. Paracetamol"
//	@Success		200		{object}	formulary.DrugInfo
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/api/drugs/search [get]
func (e *DrugSearchEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, MsgNoDrugName)
		return
	}

	info, err := NewDrugService(r.Context()).Search(r.Context(), name)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, info)
	case errors.Is(err, formulary.ErrNotFound):
		writeError(w, http.StatusNotFound, formulary.MsgNotFound)
	case errors.Is(err, formulary.ErrUnavailable):
		writeError(w, http.StatusBadGateway, formulary.MsgUnavailable)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (e *DrugSearchEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Look up a drug label",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var info formulary.DrugInfo
			q := url.Values{"name": {strings.Join(args, " ")}}
			if err := client.Get(cmd.Context(), "/api/drugs/search?"+q.Encode(), &info); err != nil {
				return err
			}
			return api.Output(info)
		},
	}
}
