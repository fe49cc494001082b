package handlers

import (
	"net/http"
	"strings"

	"github.com/ochoko/admin"
	"github.com/ochoko/admin/pkg/catalog"
	"github.com/ochoko/admin/pkg/sakeapi"
	"github.com/ochoko/admin/views"
)

const pageDuplicates = "duplicates"

// DuplicatesHandler serves the duplicate name viewer. Filtering and
// sorting are recomputed from the loaded groups on every request; only the
// expanded groups are kept in the session.
type DuplicatesHandler struct {
	last *LastGood
}

func NewDuplicatesHandler(last *LastGood) *DuplicatesHandler {
	return &DuplicatesHandler{last: last}
}

func (h *DuplicatesHandler) Routes(r admin.Router) {
	r.Group(func(r admin.Router) {
		requireAdmin(r)
		r.Route("/duplicates", func(r admin.Router) {
			r.GET("/", h.show)
			r.POST("/toggle", h.toggle)
			r.POST("/expand-all", h.expandAll)
			r.POST("/collapse-all", h.collapseAll)
		})
	})
}

func (h *DuplicatesHandler) groups(c admin.Context, cached bool) (fetched[[]sakeapi.DuplicateGroup], error) {
	api, err := apiClient(c)
	if err != nil {
		return fetched[[]sakeapi.DuplicateGroup]{}, err
	}
	return load(c, h.last, pageDuplicates, cached, func() ([]sakeapi.DuplicateGroup, error) {
		return api.Duplicates(c)
	})
}

func (h *DuplicatesHandler) render(c admin.Context, res fetched[[]sakeapi.DuplicateGroup], exp catalog.Expansion) error {
	q := strings.TrimSpace(c.Form("q"))
	sort := catalog.ParseSortKey(c.Form("sort"))
	d := views.DuplicatesData{
		Groups:    catalog.DuplicateView(res.Items, q, sort),
		Expansion: exp,
		Query:     q,
		Sort:      sort,
		Loaded:    len(res.Items),
	}
	d.Error, d.Stale, d.Flash = res.Error, res.Stale, takeNotice(c)
	return c.RenderPartial(http.StatusOK, views.DuplicatesPage(d), views.DuplicatesPanel(d))
}

func (h *DuplicatesHandler) expansion(c admin.Context) catalog.Expansion {
	return catalog.DecodeExpansion(sessionValue(c, keyExpansion))
}

func (h *DuplicatesHandler) store(c admin.Context, exp catalog.Expansion) {
	saveSessionValue(c, keyExpansion, exp.Encode())
}

func (h *DuplicatesHandler) show(c admin.Context) error {
	res, err := h.groups(c, false)
	if err != nil {
		return err
	}
	return h.render(c, res, h.expansion(c))
}

func (h *DuplicatesHandler) toggle(c admin.Context) error {
	name := c.Form("name")
	if name == "" {
		return admin.ErrBadRequest("missing group name")
	}
	res, err := h.groups(c, true)
	if err != nil {
		return err
	}
	exp := h.expansion(c).Toggle(name)
	h.store(c, exp)
	return h.render(c, res, exp)
}

// expandAll opens every loaded group, including those hidden by the
// current filter.
func (h *DuplicatesHandler) expandAll(c admin.Context) error {
	res, err := h.groups(c, true)
	if err != nil {
		return err
	}
	exp := catalog.ExpandAll(catalog.GroupNames(res.Items))
	h.store(c, exp)
	return h.render(c, res, exp)
}

func (h *DuplicatesHandler) collapseAll(c admin.Context) error {
	res, err := h.groups(c, true)
	if err != nil {
		return err
	}
	exp := catalog.CollapseAll()
	h.store(c, exp)
	return h.render(c, res, exp)
}
