package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ochoko/admin"
	"github.com/ochoko/admin/pkg/catalog"
	"github.com/ochoko/admin/pkg/sakeapi"
	"github.com/ochoko/admin/pkg/staging"
	"github.com/ochoko/admin/views"
)

// DefaultMaxUpload caps the size of an imported CSV file.
const DefaultMaxUpload = 10 << 20

const pageImportPreview = "import.preview"

// ImportHandler runs the CSV import wizard. The uploaded file is staged
// between preview and commit so the commit sends the previewed bytes.
type ImportHandler struct {
	stager    staging.Stager
	last      *LastGood
	maxUpload int64
}

func NewImportHandler(stager staging.Stager, last *LastGood, maxUpload int64) *ImportHandler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	return &ImportHandler{stager: stager, last: last, maxUpload: maxUpload}
}

func (h *ImportHandler) Routes(r admin.Router) {
	r.Group(func(r admin.Router) {
		requireAdmin(r)
		r.Route("/import", func(r admin.Router) {
			r.GET("/", h.show)
			r.POST("/preview", h.preview)
			r.POST("/commit", h.commit)
		})
	})
}

func (h *ImportHandler) wizard(c admin.Context) catalog.ImportWizard {
	return catalog.DecodeImportWizard(sessionValue(c, keyImport))
}

func (h *ImportHandler) store(c admin.Context, w catalog.ImportWizard) {
	saveSessionValue(c, keyImport, w.Encode())
}

// withPreview restores the preview of the staged upload, if one is
// remembered.
func (h *ImportHandler) withPreview(c admin.Context, d views.ImportData) views.ImportData {
	if d.Wizard.Phase != catalog.PhasePreviewed && d.Wizard.Phase != catalog.PhaseFailed {
		return d
	}
	if p, ok := recall[sakeapi.ImportPreview](c, h.last, pageImportPreview); ok {
		d.Preview = &p
		d.Shown, d.More = catalog.SummarizeErrors(p.Errors, catalog.MaxShownErrors)
	}
	return d
}

func (h *ImportHandler) render(c admin.Context, code int, d views.ImportData) error {
	d.Flash = takeNotice(c)
	return c.RenderPartial(code, views.ImportPage(d), views.ImportPanel(d))
}

func (h *ImportHandler) show(c admin.Context) error {
	w := h.wizard(c)
	if w.Phase == catalog.PhaseCommitted {
		w = w.Reset()
		h.store(c, w)
	}
	return h.render(c, http.StatusOK, h.withPreview(c, views.ImportData{Wizard: w}))
}

// readUpload returns the submitted file, or catalog.ErrNoFile.
func (h *ImportHandler) readUpload(c admin.Context) (string, []byte, error) {
	file, header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, catalog.ErrNoFile
		}
		return "", nil, admin.ErrBadRequest("invalid upload", admin.WithError(err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > h.maxUpload {
		return "", nil, admin.ErrBadRequest(c.T("import.too_large"))
	}
	if len(data) == 0 {
		return "", nil, catalog.ErrNoFile
	}
	return header.Filename, data, nil
}

// preview stages a new upload and asks the backend for a dry run. A new
// upload replaces the previous one and starts a new generation, which
// invalidates confirmations rendered for the old file.
func (h *ImportHandler) preview(c admin.Context) error {
	api, err := apiClient(c)
	if err != nil {
		return err
	}
	w := h.wizard(c)
	enc := sakeapi.Encoding(c.Form("encoding"))
	if !enc.Valid() {
		enc = enc.OrDefault()
	}

	name, data, err := h.readUpload(c)
	if err != nil {
		if !admin.IsHTTPError(err) && !errors.Is(err, catalog.ErrNoFile) {
			return err
		}
		d := h.withPreview(c, views.ImportData{Wizard: w})
		d.Error = messageFor(c, err)
		return h.render(c, inlineStatus(c, http.StatusUnprocessableEntity), d)
	}

	if w.StagingKey != "" {
		if err := h.stager.Discard(c, w.StagingKey); err != nil {
			c.LogWarn("failed to discard staged upload", slog.Any("error", err))
		}
	}
	h.last.forget(c, pageImportPreview)

	key, err := h.stager.Stage(c, data)
	if err != nil {
		return fmt.Errorf("stage upload: %w", err)
	}
	w = w.Previewed(key, name, enc)
	h.store(c, w)

	p, err := api.PreviewImport(c, sakeapi.Upload{Filename: name, Encoding: enc, Content: data})
	if err != nil {
		if sakeapi.IsUnauthorized(err) {
			return err
		}
		c.LogWarn("import preview failed", slog.String("file", name), slog.Any("error", err))
		w = w.Failed()
		h.store(c, w)
		return h.render(c, inlineStatus(c, http.StatusBadGateway), views.ImportData{
			Wizard: w,
			Base:   views.Base{Error: messageFor(c, err)},
		})
	}

	if !p.Success {
		w = w.Failed()
		h.store(c, w)
	}
	h.last.remember(c, pageImportPreview, p)
	d := views.ImportData{Wizard: w, Preview: &p}
	d.Shown, d.More = catalog.SummarizeErrors(p.Errors, catalog.MaxShownErrors)
	return h.render(c, http.StatusOK, d)
}

// commit imports the staged upload the admin confirmed. The confirmation
// names its generation; a newer preview makes it stale.
func (h *ImportHandler) commit(c admin.Context) error {
	api, err := apiClient(c)
	if err != nil {
		return err
	}
	w := h.wizard(c)
	gen, _ := admin.FormValue[int64](c, "gen")

	fail := func(code int, w catalog.ImportWizard, err error) error {
		d := h.withPreview(c, views.ImportData{Wizard: w})
		d.Error = messageFor(c, err)
		return h.render(c, inlineStatus(c, code), d)
	}

	if err := w.CanCommit(gen, c.Form("confirm") == "yes"); err != nil {
		return fail(http.StatusConflict, w, err)
	}

	data, err := h.stager.Load(c, w.StagingKey)
	if err != nil {
		if errors.Is(err, staging.ErrGone) {
			w = w.Reset()
			h.store(c, w)
			h.last.forget(c, pageImportPreview)
			return fail(http.StatusGone, w, err)
		}
		return fmt.Errorf("load staged upload: %w", err)
	}

	res, err := api.CommitImport(c, sakeapi.Upload{Filename: w.Filename, Encoding: w.Encoding, Content: data})
	if err != nil {
		if sakeapi.IsUnauthorized(err) {
			return err
		}
		c.LogWarn("import commit failed", slog.String("file", w.Filename), slog.Any("error", err))
		w = w.Failed()
		h.store(c, w)
		return fail(http.StatusBadGateway, w, err)
	}

	if err := h.stager.Discard(c, w.StagingKey); err != nil {
		c.LogWarn("failed to discard staged upload", slog.Any("error", err))
	}
	filename := w.Filename
	h.last.forget(c, pageImportPreview)
	h.last.forget(c, pageSakes)
	h.last.forget(c, pageBreweries)
	w = w.Committed()
	h.store(c, w)

	c.LogInfo("import committed",
		slog.String("file", filename),
		slog.Int("sakes_created", res.Stats.SakesCreated),
		slog.Int("breweries_created", res.Stats.BreweriesCreated),
	)
	d := views.ImportData{Wizard: w, Result: &res}
	d.Shown, d.More = catalog.SummarizeErrors(res.Stats.Errors, catalog.MaxShownErrors)
	return h.render(c, http.StatusOK, d)
}
