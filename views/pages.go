package views

import (
	"html/template"
	"strconv"

	"github.com/a-h/templ"

	"github.com/ochoko/admin/pkg/catalog"
	"github.com/ochoko/admin/pkg/sakeapi"
	"github.com/ochoko/admin/pkg/sanitizer"
)

// Base is embedded by every page's data.
type Base struct {
	Flash Notice
	// Error is a page-level failure shown above the content.
	Error string
	// Stale marks data kept from an earlier successful fetch.
	Stale bool
}

func (b Base) flash() Notice { return b.Flash }

// Navbar renders the top navigation for a signed-in admin and nothing
// otherwise.
func Navbar() templ.Component {
	return component("navbar", nil)
}

// LoginData is the login form.
type LoginData struct {
	Base
	Email string
	Next  string
}

func LoginPage(d LoginData) templ.Component { return page("login.title", "login", d) }
func LoginForm(d LoginData) templ.Component { return component("login_form", d) }

// SakesData is the sake list.
type SakesData struct {
	Base
	Sakes     []sakeapi.Sake
	Selection catalog.Selection
	Query     string
	Total     int
	// Confirm shows the bulk delete confirmation step.
	Confirm bool
}

// AllSelected reports whether every listed sake is checked.
func (d SakesData) AllSelected() bool {
	return d.Selection.AllSelected(catalog.SakeIDs(d.Sakes))
}

func SakesPage(d SakesData) templ.Component  { return page("sakes.title", "sakes", d) }
func SakesPanel(d SakesData) templ.Component { return component("sakes_panel", d) }

// SakeDetailData is one sake.
type SakeDetailData struct {
	Base
	Sake sakeapi.SakeDetail
}

// Description renders the Markdown description as sanitized HTML.
func (d SakeDetailData) Description() template.HTML {
	if d.Sake.Description == nil {
		return ""
	}
	return sanitizer.Markdown(*d.Sake.Description)
}

func SakeDetailPage(d SakeDetailData) templ.Component { return page("sakes.title", "sake_detail", d) }

// SakeFormData is the create and edit form.
type SakeFormData struct {
	Base
	Draft     catalog.SakeDraft
	Errors    map[string]string
	Breweries []sakeapi.Brewery
	// ID is set when editing.
	ID int64
}

// Editing reports whether the form updates an existing sake.
func (d SakeFormData) Editing() bool { return d.ID > 0 }

// Action is the form's target.
func (d SakeFormData) Action() string {
	if d.Editing() {
		return "/sakes/" + strconv.FormatInt(d.ID, 10) + "/edit"
	}
	return "/sakes/new"
}

// Title is the form heading key.
func (d SakeFormData) Title() string {
	if d.Editing() {
		return "form.title_edit"
	}
	return "form.title_new"
}

func SakeFormPage(d SakeFormData) templ.Component { return page(d.Title(), "sake_form", d) }
func SakeForm(d SakeFormData) templ.Component     { return component("sake_form_body", d) }

// BreweriesData is the brewery list.
type BreweriesData struct {
	Base
	Breweries []sakeapi.Brewery
}

func BreweriesPage(d BreweriesData) templ.Component { return page("breweries.title", "breweries", d) }

// DuplicatesData is the duplicate viewer.
type DuplicatesData struct {
	Base
	Groups    []sakeapi.DuplicateGroup
	Expansion catalog.Expansion
	Query     string
	Sort      catalog.SortKey
	// Loaded is the number of groups before filtering.
	Loaded int
}

// SortKeys lists the sort menu.
func (DuplicatesData) SortKeys() []catalog.SortKey { return catalog.SortKeys }

func DuplicatesPage(d DuplicatesData) templ.Component  { return page("duplicates.title", "duplicates", d) }
func DuplicatesPanel(d DuplicatesData) templ.Component { return component("duplicates_panel", d) }

// ImportData is the CSV import wizard.
type ImportData struct {
	Base
	Wizard  catalog.ImportWizard
	Preview *sakeapi.ImportPreview
	Result  *sakeapi.ImportResult
	// Shown and More summarize the error list of the preview or result.
	Shown []string
	More  int
}

// CanCommit reports whether the commit button is offered.
func (d ImportData) CanCommit() bool {
	return d.Wizard.Phase == catalog.PhasePreviewed && d.Preview != nil && d.Preview.Success
}

func ImportPage(d ImportData) templ.Component  { return page("import.title", "import", d) }
func ImportPanel(d ImportData) templ.Component { return component("import_panel", d) }

// ErrorData is an error page.
type ErrorData struct {
	Base
	Message string
	Code    int
}

func ErrorPage(d ErrorData) templ.Component    { return page("errors.title", "error", d) }
func ErrorContent(d ErrorData) templ.Component { return component("error_content", d) }
