package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ochoko/admin"
	"github.com/ochoko/admin/pkg/catalog"
	"github.com/ochoko/admin/pkg/sakeapi"
	"github.com/ochoko/admin/pkg/validator"
	"github.com/ochoko/admin/views"
)

// DefaultPageSize is how many sakes the list fetches.
const DefaultPageSize = 100

const pageSakes = "sakes"

// SakesHandler serves the sake list, the bulk delete flow and the sake
// forms.
type SakesHandler struct {
	last     *LastGood
	pageSize int
}

func NewSakesHandler(last *LastGood, pageSize int) *SakesHandler {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &SakesHandler{last: last, pageSize: pageSize}
}

func (h *SakesHandler) Routes(r admin.Router) {
	r.Group(func(r admin.Router) {
		requireAdmin(r)
		r.GET("/", func(c admin.Context) error {
			return c.Redirect(http.StatusSeeOther, HomePath)
		})
		r.Route("/sakes", func(r admin.Router) {
			r.GET("/", h.list)
			r.POST("/select/{id}", h.toggle)
			r.POST("/select-all", h.toggleAll)
			r.POST("/bulk-delete", h.confirmDelete)
			r.POST("/bulk-delete/confirm", h.bulkDelete)
			r.GET("/new", h.newForm)
			r.POST("/new", h.create)
			r.GET("/{id}", h.detail)
			r.GET("/{id}/edit", h.editForm)
			r.POST("/{id}/edit", h.update)
			r.PUT("/{id}", h.update)
		})
	})
}

// listData loads the list and the session's selection, pruned to the
// visible rows.
func (h *SakesHandler) listData(c admin.Context, cached bool) (views.SakesData, error) {
	api, err := apiClient(c)
	if err != nil {
		return views.SakesData{}, err
	}
	res, err := load(c, h.last, pageSakes, cached, func() ([]sakeapi.Sake, error) {
		return api.ListSakes(c, sakeapi.ListOptions{Limit: h.pageSize})
	})
	if err != nil {
		return views.SakesData{}, err
	}

	q := strings.TrimSpace(c.Form("q"))
	visible := catalog.FilterSakes(res.Items, q)
	stored := sessionValue(c, keySelection)
	sel := catalog.DecodeSelection(stored).Prune(catalog.SakeIDs(visible))
	if enc := sel.Encode(); enc != stored {
		saveSessionValue(c, keySelection, enc)
	}

	d := views.SakesData{
		Sakes:     visible,
		Selection: sel,
		Query:     q,
		Total:     len(res.Items),
	}
	d.Error, d.Stale = res.Error, res.Stale
	return d, nil
}

func (h *SakesHandler) render(c admin.Context, code int, d views.SakesData) error {
	d.Flash = takeNotice(c)
	return c.RenderPartial(code, views.SakesPage(d), views.SakesPanel(d))
}

func (h *SakesHandler) list(c admin.Context) error {
	d, err := h.listData(c, false)
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, d)
}

func (h *SakesHandler) toggle(c admin.Context) error {
	id, ok := admin.ParamOK[int64](c, "id")
	if !ok || id <= 0 {
		return admin.ErrBadRequest("invalid sake id")
	}
	sel := catalog.DecodeSelection(sessionValue(c, keySelection)).Toggle(id)
	saveSessionValue(c, keySelection, sel.Encode())

	d, err := h.listData(c, true)
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, d)
}

func (h *SakesHandler) toggleAll(c admin.Context) error {
	d, err := h.listData(c, true)
	if err != nil {
		return err
	}
	d.Selection = d.Selection.ToggleAll(catalog.SakeIDs(d.Sakes))
	saveSessionValue(c, keySelection, d.Selection.Encode())
	return h.render(c, http.StatusOK, d)
}

// confirmDelete shows the confirmation step for the current selection.
func (h *SakesHandler) confirmDelete(c admin.Context) error {
	d, err := h.listData(c, true)
	if err != nil {
		return err
	}
	if d.Selection.Empty() {
		d.Error = messageFor(c, catalog.ErrEmptySelection)
		return h.render(c, inlineStatus(c, http.StatusUnprocessableEntity), d)
	}
	d.Confirm = true
	return h.render(c, http.StatusOK, d)
}

func (h *SakesHandler) bulkDelete(c admin.Context) error {
	api, err := apiClient(c)
	if err != nil {
		return err
	}
	sel := catalog.DecodeSelection(sessionValue(c, keySelection))
	if sel.Empty() {
		d, err := h.listData(c, true)
		if err != nil {
			return err
		}
		d.Error = messageFor(c, catalog.ErrEmptySelection)
		return h.render(c, inlineStatus(c, http.StatusUnprocessableEntity), d)
	}

	resp, err := api.BulkDeleteSakes(c, sel.IDs())
	if err != nil {
		if sakeapi.IsUnauthorized(err) {
			return err
		}
		c.LogWarn("bulk delete failed", "count", sel.Len(), "error", err)
		d, lerr := h.listData(c, true)
		if lerr != nil {
			return lerr
		}
		d.Error = messageFor(c, err)
		return h.render(c, inlineStatus(c, http.StatusBadGateway), d)
	}

	c.LogInfo("sakes deleted", "count", resp.DeletedCount)
	saveSessionValue(c, keySelection, "")
	h.last.forget(c, pageSakes)
	setNotice(c, "success", c.Tn("sakes.deleted", resp.DeletedCount))
	return c.Redirect(http.StatusSeeOther, listURL(c.Form("q")))
}

func listURL(q string) string {
	if q == "" {
		return HomePath
	}
	return HomePath + "?q=" + url.QueryEscape(q)
}

func sakeID(c admin.Context) (int64, error) {
	id, ok := admin.ParamOK[int64](c, "id")
	if !ok || id <= 0 {
		return 0, admin.ErrNotFound("sake not found")
	}
	return id, nil
}

func (h *SakesHandler) detail(c admin.Context) error {
	id, err := sakeID(c)
	if err != nil {
		return err
	}
	api, err := apiClient(c)
	if err != nil {
		return err
	}
	sake, err := api.GetSake(c, id)
	if err != nil {
		return err
	}
	d := views.SakeDetailData{Sake: sake}
	d.Flash = takeNotice(c)
	return c.Render(http.StatusOK, views.SakeDetailPage(d))
}

// breweries feeds the brewery datalist. Failures only cost the
// suggestions, except a rejected token, which ends the session.
func breweries(c admin.Context, api *sakeapi.Client) ([]sakeapi.Brewery, error) {
	list, err := api.ListBreweries(c)
	if err != nil {
		if sakeapi.IsUnauthorized(err) {
			return nil, err
		}
		c.LogWarn("failed to load brewery suggestions", "error", err)
		return nil, nil
	}
	return list, nil
}

func (h *SakesHandler) renderForm(c admin.Context, code int, d views.SakeFormData) error {
	return c.RenderPartial(code, views.SakeFormPage(d), views.SakeForm(d))
}

func (h *SakesHandler) newForm(c admin.Context) error {
	api, err := apiClient(c)
	if err != nil {
		return err
	}
	list, err := breweries(c, api)
	if err != nil {
		return err
	}
	return h.renderForm(c, http.StatusOK, views.SakeFormData{Breweries: list})
}

func (h *SakesHandler) editForm(c admin.Context) error {
	id, err := sakeID(c)
	if err != nil {
		return err
	}
	api, err := apiClient(c)
	if err != nil {
		return err
	}
	sake, err := api.GetSake(c, id)
	if err != nil {
		return err
	}
	list, err := breweries(c, api)
	if err != nil {
		return err
	}
	return h.renderForm(c, http.StatusOK, views.SakeFormData{
		ID:        id,
		Draft:     catalog.DraftFromDetail(sake),
		Breweries: list,
	})
}

func (h *SakesHandler) create(c admin.Context) error {
	return h.save(c, 0)
}

func (h *SakesHandler) update(c admin.Context) error {
	id, err := sakeID(c)
	if err != nil {
		return err
	}
	return h.save(c, id)
}

// save validates the submitted draft before any backend call, then creates
// or updates the sake. Failures re-render the form with what was typed.
func (h *SakesHandler) save(c admin.Context, id int64) error {
	api, err := apiClient(c)
	if err != nil {
		return err
	}
	d := views.SakeFormData{ID: id, Draft: catalog.DraftFromValues(c.Form)}

	in, err := d.Draft.ToCreate()
	if err != nil {
		ve := validator.ExtractValidationErrors(err)
		if ve == nil {
			return err
		}
		translateFields(c, ve)
		d.Errors = ve.Map()
		if d.Breweries, err = breweries(c, api); err != nil {
			return err
		}
		return h.renderForm(c, inlineStatus(c, http.StatusUnprocessableEntity), d)
	}

	var saved sakeapi.SakeDetail
	if id > 0 {
		saved, err = api.UpdateSake(c, id, sakeapi.UpdateFromCreate(in))
	} else {
		saved, err = api.CreateSake(c, in)
	}
	if err != nil {
		if sakeapi.IsUnauthorized(err) {
			return err
		}
		c.LogWarn("saving sake failed", "id", id, "error", err)
		d.Error = messageFor(c, err)
		if d.Breweries, err = breweries(c, api); err != nil {
			return err
		}
		return h.renderForm(c, inlineStatus(c, http.StatusBadGateway), d)
	}

	h.last.forget(c, pageSakes)
	if id > 0 {
		setNotice(c, "success", c.T("sakes.updated"))
		return c.Redirect(http.StatusSeeOther, "/sakes/"+strconv.FormatInt(id, 10))
	}
	c.LogInfo("sake created", "id", saved.ID)
	setNotice(c, "success", c.T("sakes.created"))
	return c.Redirect(http.StatusSeeOther, HomePath)
}
