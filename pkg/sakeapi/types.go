package sakeapi

import (
	"bytes"
	"encoding/json"
	"time"
)

// UnknownPrefecture is the prefecture value the backend uses when a
// brewery's location could not be resolved.
const UnknownPrefecture = "不明"

// Sake is a catalog entry as returned by the list endpoint.
type Sake struct {
	CreatedAt         Timestamp       `json:"created_at"`
	RiceVariety       *string         `json:"rice_variety,omitempty"`
	Yeast             *string         `json:"yeast,omitempty"`
	Seimaibuai        *int            `json:"seimaibuai,omitempty"`
	AlcoholContent    *float64        `json:"alcohol_content,omitempty"`
	Nihonshudo        *float64        `json:"nihonshudo,omitempty"`
	Acidity           *float64        `json:"acidity,omitempty"`
	AminoAcid         *float64        `json:"amino_acid,omitempty"`
	Volume            *int            `json:"volume,omitempty"`
	HiireType         *HiireType      `json:"hiire_type,omitempty"`
	FiltrationType    *FiltrationType `json:"filtration_type,omitempty"`
	Image             *string         `json:"image,omitempty"`
	Description       *string         `json:"description,omitempty"`
	AverageRating     *float64        `json:"average_rating,omitempty"`
	CreatedByID       *int64          `json:"created_by_id,omitempty"`
	CreatedByName     *string         `json:"created_by_name,omitempty"`
	Name              string          `json:"name"`
	BreweryName       string          `json:"brewery_name"`
	BreweryPrefecture string          `json:"brewery_prefecture"`
	TokuteiMeisho     TokuteiMeisho   `json:"tokutei_meisho"`
	ID                int64           `json:"id"`
	Brewery           int64           `json:"brewery"`
	ReviewCount       int             `json:"review_count"`
	IsActive          bool            `json:"is_active"`
}

// SakeDetail is a single catalog entry with its brewery expanded.
type SakeDetail struct {
	CreatedAt      Timestamp       `json:"created_at"`
	UpdatedAt      Timestamp       `json:"updated_at"`
	Brewery        Brewery         `json:"brewery"`
	RiceVariety    *string         `json:"rice_variety,omitempty"`
	Yeast          *string         `json:"yeast,omitempty"`
	Seimaibuai     *int            `json:"seimaibuai,omitempty"`
	AlcoholContent *float64        `json:"alcohol_content,omitempty"`
	Nihonshudo     *float64        `json:"nihonshudo,omitempty"`
	Acidity        *float64        `json:"acidity,omitempty"`
	AminoAcid      *float64        `json:"amino_acid,omitempty"`
	Volume         *int            `json:"volume,omitempty"`
	HiireType      *HiireType      `json:"hiire_type,omitempty"`
	FiltrationType *FiltrationType `json:"filtration_type,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Image          *string         `json:"image,omitempty"`
	AverageRating  *float64        `json:"average_rating,omitempty"`
	Name           string          `json:"name"`
	TokuteiMeisho  TokuteiMeisho   `json:"tokutei_meisho"`
	ID             int64           `json:"id"`
	ReviewCount    int             `json:"review_count"`
	IsActive       bool            `json:"is_active"`
}

// SakeCreate is the payload for creating a sake.
// Name, BreweryName and TokuteiMeisho are mandatory; nil optionals are
// omitted from the JSON body rather than sent as zero values.
type SakeCreate struct {
	RiceVariety    *string         `json:"rice_variety,omitempty"`
	Yeast          *string         `json:"yeast,omitempty"`
	Seimaibuai     *int            `json:"seimaibuai,omitempty"`
	AlcoholContent *float64        `json:"alcohol_content,omitempty"`
	Nihonshudo     *float64        `json:"nihonshudo,omitempty"`
	Acidity        *float64        `json:"acidity,omitempty"`
	AminoAcid      *float64        `json:"amino_acid,omitempty"`
	Volume         *int            `json:"volume,omitempty"`
	HiireType      *HiireType      `json:"hiire_type,omitempty"`
	FiltrationType *FiltrationType `json:"filtration_type,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Image          *string         `json:"image,omitempty"`
	Name           string          `json:"name"`
	BreweryName    string          `json:"brewery_name"`
	TokuteiMeisho  TokuteiMeisho   `json:"tokutei_meisho"`
}

// SakeUpdate is a partial update. Only non-nil fields are sent, plus an
// explicit null for every field named in Clear.
type SakeUpdate struct {
	Name           *string         `json:"name,omitempty"`
	BreweryName    *string         `json:"brewery_name,omitempty"`
	TokuteiMeisho  *TokuteiMeisho  `json:"tokutei_meisho,omitempty"`
	RiceVariety    *string         `json:"rice_variety,omitempty"`
	Yeast          *string         `json:"yeast,omitempty"`
	Seimaibuai     *int            `json:"seimaibuai,omitempty"`
	AlcoholContent *float64        `json:"alcohol_content,omitempty"`
	Nihonshudo     *float64        `json:"nihonshudo,omitempty"`
	Acidity        *float64        `json:"acidity,omitempty"`
	AminoAcid      *float64        `json:"amino_acid,omitempty"`
	Volume         *int            `json:"volume,omitempty"`
	HiireType      *HiireType      `json:"hiire_type,omitempty"`
	FiltrationType *FiltrationType `json:"filtration_type,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Image          *string         `json:"image,omitempty"`

	// Clear names JSON fields to reset on the server. A field that is also
	// set keeps its value.
	Clear []string `json:"-"`
}

// MarshalJSON adds the null fields requested by Clear.
func (u SakeUpdate) MarshalJSON() ([]byte, error) {
	type plain SakeUpdate
	data, err := json.Marshal(plain(u))
	if err != nil || len(u.Clear) == 0 {
		return data, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for _, name := range u.Clear {
		if _, set := fields[name]; !set {
			fields[name] = json.RawMessage("null")
		}
	}
	return json.Marshal(fields)
}

// UpdateFromCreate converts a full create payload into an update that
// replaces every optional attribute: those absent from c are cleared.
func UpdateFromCreate(c SakeCreate) SakeUpdate {
	u := SakeUpdate{
		Name:           &c.Name,
		BreweryName:    &c.BreweryName,
		TokuteiMeisho:  &c.TokuteiMeisho,
		RiceVariety:    c.RiceVariety,
		Yeast:          c.Yeast,
		Seimaibuai:     c.Seimaibuai,
		AlcoholContent: c.AlcoholContent,
		Nihonshudo:     c.Nihonshudo,
		Acidity:        c.Acidity,
		AminoAcid:      c.AminoAcid,
		Volume:         c.Volume,
		HiireType:      c.HiireType,
		FiltrationType: c.FiltrationType,
		Description:    c.Description,
		Image:          c.Image,
	}
	absent := []struct {
		name  string
		unset bool
	}{
		{"rice_variety", c.RiceVariety == nil},
		{"yeast", c.Yeast == nil},
		{"seimaibuai", c.Seimaibuai == nil},
		{"alcohol_content", c.AlcoholContent == nil},
		{"nihonshudo", c.Nihonshudo == nil},
		{"acidity", c.Acidity == nil},
		{"amino_acid", c.AminoAcid == nil},
		{"volume", c.Volume == nil},
		{"hiire_type", c.HiireType == nil},
		{"filtration_type", c.FiltrationType == nil},
		{"description", c.Description == nil},
		{"image", c.Image == nil},
	}
	for _, f := range absent {
		if f.unset {
			u.Clear = append(u.Clear, f.name)
		}
	}
	return u
}

// Brewery is a sake producer.
type Brewery struct {
	CreatedAt   Timestamp `json:"created_at"`
	Website     *string   `json:"website,omitempty"`
	FoundedYear *int      `json:"founded_year,omitempty"`
	Description *string   `json:"description,omitempty"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Prefecture  string    `json:"prefecture"`
	ID          int64     `json:"id"`
}

// HasKnownPrefecture reports whether the prefecture is set and not the
// backend's unknown sentinel.
func (b Brewery) HasKnownPrefecture() bool {
	return b.Prefecture != "" && b.Prefecture != UnknownPrefecture
}

// User is the account behind a session.
type User struct {
	DateJoined  Timestamp `json:"date_joined"`
	DisplayName *string   `json:"display_name,omitempty"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	ID          int64     `json:"id"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
}

// IsAdmin reports whether the user may use the admin console.
func (u User) IsAdmin() bool {
	return u.IsStaff || u.IsSuperuser
}

// Label returns the display name, falling back to the username.
func (u User) Label() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Username
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// DuplicateSake is a member of a duplicate-name group.
type DuplicateSake struct {
	CreatedAt         Timestamp     `json:"created_at"`
	Description       *string       `json:"description,omitempty"`
	Name              string        `json:"name"`
	BreweryName       string        `json:"brewery_name"`
	BreweryPrefecture string        `json:"brewery_prefecture"`
	TokuteiMeisho     TokuteiMeisho `json:"tokutei_meisho"`
	ID                int64         `json:"id"`
	BreweryID         int64         `json:"brewery_id"`
}

// DuplicateGroup is a name shared by two or more sakes.
// Groups are computed by the backend on every request.
type DuplicateGroup struct {
	Name  string          `json:"name"`
	Sakes []DuplicateSake `json:"sakes"`
	Count int             `json:"count"`
}

// BulkDeleteRequest is the body of POST /admin/sakes/bulk-delete.
type BulkDeleteRequest struct {
	SakeIDs []int64 `json:"sake_ids"`
}

// BulkDeleteResponse reports how many sakes were removed.
type BulkDeleteResponse struct {
	Detail       string `json:"detail,omitempty"`
	DeletedCount int    `json:"deleted_count"`
}

// PreviewRow is one parsed CSV row in an import preview.
type PreviewRow struct {
	BreweryName       string `json:"brewery_name"`
	BreweryLocation   string `json:"brewery_location"`
	BreweryPrefecture string `json:"brewery_prefecture"`
	SakeName          string `json:"sake_name"`
	SakeKana          string `json:"sake_kana"`
}

// PreviewStats summarizes what an import would do.
type PreviewStats struct {
	RowsToProcess     int `json:"rows_to_process"`
	RowsToSkip        int `json:"rows_to_skip"`
	BreweriesToCreate int `json:"breweries_to_create"`
	SakesToCreate     int `json:"sakes_to_create"`
	SakesExisting     int `json:"sakes_existing"`
}

// ImportPreview is the dry-run result of an uploaded CSV.
type ImportPreview struct {
	EncodingUsed string       `json:"encoding_used"`
	Preview      []PreviewRow `json:"preview"`
	Errors       []string     `json:"errors"`
	Stats        PreviewStats `json:"stats"`
	TotalRows    int          `json:"total_rows"`
	Success      bool         `json:"success"`
}

// ImportStats summarizes a committed import.
type ImportStats struct {
	Errors            []string `json:"errors"`
	RowsProcessed     int      `json:"rows_processed"`
	RowsSkipped       int      `json:"rows_skipped"`
	BreweriesCreated  int      `json:"breweries_created"`
	BreweriesUpdated  int      `json:"breweries_updated"`
	BreweriesExisting int      `json:"breweries_existing"`
	SakesCreated      int      `json:"sakes_created"`
	SakesExisting     int      `json:"sakes_existing"`
}

// ImportResult is the outcome of a committed import.
type ImportResult struct {
	EncodingUsed string      `json:"encoding_used"`
	Stats        ImportStats `json:"stats"`
	Success      bool        `json:"success"`
	DryRun       bool        `json:"dry_run"`
}

// Timestamp decodes the backend's ISO-8601 timestamps, which may or may
// not carry a zone offset.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
