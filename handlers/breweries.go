package handlers

import (
	"net/http"

	"github.com/ochoko/admin"
	"github.com/ochoko/admin/pkg/sakeapi"
	"github.com/ochoko/admin/views"
)

const pageBreweries = "breweries"

// BreweriesHandler lists breweries.
type BreweriesHandler struct {
	last *LastGood
}

func NewBreweriesHandler(last *LastGood) *BreweriesHandler {
	return &BreweriesHandler{last: last}
}

func (h *BreweriesHandler) Routes(r admin.Router) {
	r.Group(func(r admin.Router) {
		requireAdmin(r)
		r.GET("/breweries", h.list)
	})
}

func (h *BreweriesHandler) list(c admin.Context) error {
	api, err := apiClient(c)
	if err != nil {
		return err
	}
	res, err := load(c, h.last, pageBreweries, false, func() ([]sakeapi.Brewery, error) {
		return api.ListBreweries(c)
	})
	if err != nil {
		return err
	}
	d := views.BreweriesData{Breweries: res.Items}
	d.Error, d.Stale, d.Flash = res.Error, res.Stale, takeNotice(c)
	return c.Render(http.StatusOK, views.BreweriesPage(d))
}
