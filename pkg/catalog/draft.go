package catalog

import (
	"strconv"
	"strings"

	"github.com/ochoko/admin/pkg/sakeapi"
	"github.com/ochoko/admin/pkg/validator"
)

// SakeDraft is the sake form as typed: every field is the raw input text.
type SakeDraft struct {
	Name           string `form:"name" validate:"required,max=200"`
	BreweryName    string `form:"brewery_name" validate:"required,max=200"`
	TokuteiMeisho  string `form:"tokutei_meisho" validate:"required"`
	RiceVariety    string `form:"rice_variety" validate:"max=100"`
	Yeast          string `form:"yeast" validate:"max=100"`
	Seimaibuai     string `form:"seimaibuai"`
	AlcoholContent string `form:"alcohol_content"`
	Nihonshudo     string `form:"nihonshudo"`
	Acidity        string `form:"acidity"`
	AminoAcid      string `form:"amino_acid"`
	Volume         string `form:"volume"`
	HiireType      string `form:"hiire_type"`
	FiltrationType string `form:"filtration_type"`
	Description    string `form:"description"`
	Image          string `form:"image" validate:"omitempty,url"`
}

// DraftFields lists the form field names in SakeDraft order.
var DraftFields = []string{
	"name", "brewery_name", "tokutei_meisho", "rice_variety", "yeast",
	"seimaibuai", "alcohol_content", "nihonshudo", "acidity", "amino_acid",
	"volume", "hiire_type", "filtration_type", "description", "image",
}

// DraftFromValues builds a draft from submitted form values.
func DraftFromValues(get func(string) string) SakeDraft {
	return SakeDraft{
		Name:           get("name"),
		BreweryName:    get("brewery_name"),
		TokuteiMeisho:  get("tokutei_meisho"),
		RiceVariety:    get("rice_variety"),
		Yeast:          get("yeast"),
		Seimaibuai:     get("seimaibuai"),
		AlcoholContent: get("alcohol_content"),
		Nihonshudo:     get("nihonshudo"),
		Acidity:        get("acidity"),
		AminoAcid:      get("amino_acid"),
		Volume:         get("volume"),
		HiireType:      get("hiire_type"),
		FiltrationType: get("filtration_type"),
		Description:    get("description"),
		Image:          get("image"),
	}
}

// DraftFromDetail prefills the edit form from a stored sake.
func DraftFromDetail(d sakeapi.SakeDetail) SakeDraft {
	return SakeDraft{
		Name:           d.Name,
		BreweryName:    d.Brewery.Name,
		TokuteiMeisho:  string(d.TokuteiMeisho),
		RiceVariety:    deref(d.RiceVariety),
		Yeast:          deref(d.Yeast),
		Seimaibuai:     formatInt(d.Seimaibuai),
		AlcoholContent: formatFloat(d.AlcoholContent),
		Nihonshudo:     formatFloat(d.Nihonshudo),
		Acidity:        formatFloat(d.Acidity),
		AminoAcid:      formatFloat(d.AminoAcid),
		Volume:         formatInt(d.Volume),
		HiireType:      derefEnum(d.HiireType),
		FiltrationType: derefEnum(d.FiltrationType),
		Description:    deref(d.Description),
		Image:          deref(d.Image),
	}
}

// Validate checks required fields and enum membership.
func (d SakeDraft) Validate() error {
	t := d.trimmed()
	return validator.Apply(
		validator.Struct(t),
		validator.OneOf("tokutei_meisho", sakeapi.TokuteiMeisho(t.TokuteiMeisho), sakeapi.TokuteiMeishoValues),
		validator.OneOf("hiire_type", sakeapi.HiireType(t.HiireType), sakeapi.HiireTypeValues),
		validator.OneOf("filtration_type", sakeapi.FiltrationType(t.FiltrationType), sakeapi.FiltrationTypeValues),
	)
}

func (d SakeDraft) trimmed() SakeDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.BreweryName = strings.TrimSpace(d.BreweryName)
	d.TokuteiMeisho = strings.TrimSpace(d.TokuteiMeisho)
	d.HiireType = strings.TrimSpace(d.HiireType)
	d.FiltrationType = strings.TrimSpace(d.FiltrationType)
	d.Image = strings.TrimSpace(d.Image)
	return d
}

// ToCreate validates the draft and converts it into a create payload.
// Blank optional fields are left nil so they are omitted from the request.
func (d SakeDraft) ToCreate() (sakeapi.SakeCreate, error) {
	var numErrs validator.ValidationErrors
	seimaibuai := parseInt("seimaibuai", d.Seimaibuai, &numErrs)
	volume := parseInt("volume", d.Volume, &numErrs)
	alcohol := parseFloat("alcohol_content", d.AlcoholContent, &numErrs)
	nihonshudo := parseFloat("nihonshudo", d.Nihonshudo, &numErrs)
	acidity := parseFloat("acidity", d.Acidity, &numErrs)
	amino := parseFloat("amino_acid", d.AminoAcid, &numErrs)

	err := validator.Apply(
		func() validator.ValidationErrors {
			return validator.ExtractValidationErrors(d.Validate())
		},
		func() validator.ValidationErrors { return numErrs },
	)
	if err != nil {
		return sakeapi.SakeCreate{}, err
	}

	out := sakeapi.SakeCreate{
		Name:           strings.TrimSpace(d.Name),
		BreweryName:    strings.TrimSpace(d.BreweryName),
		TokuteiMeisho:  sakeapi.TokuteiMeisho(strings.TrimSpace(d.TokuteiMeisho)),
		RiceVariety:    optional(d.RiceVariety),
		Yeast:          optional(d.Yeast),
		Seimaibuai:     seimaibuai,
		AlcoholContent: alcohol,
		Nihonshudo:     nihonshudo,
		Acidity:        acidity,
		AminoAcid:      amino,
		Volume:         volume,
		Description:    optional(d.Description),
		Image:          optional(d.Image),
	}
	if v := strings.TrimSpace(d.HiireType); v != "" {
		h := sakeapi.HiireType(v)
		out.HiireType = &h
	}
	if v := strings.TrimSpace(d.FiltrationType); v != "" {
		f := sakeapi.FiltrationType(v)
		out.FiltrationType = &f
	}
	return out, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseInt(field, raw string, errs *validator.ValidationErrors) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, validator.Fail(field, "validation.integer", "must be a whole number", nil)...)
		return nil
	}
	return &v
}

func parseFloat(field, raw string, errs *validator.ValidationErrors) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, validator.Fail(field, "validation.number", "must be a number", nil)...)
		return nil
	}
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefEnum[T ~string](v *T) string {
	if v == nil {
		return ""
	}
	return string(*v)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
