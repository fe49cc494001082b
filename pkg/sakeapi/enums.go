package sakeapi

// TokuteiMeisho is the sake classification by polishing ratio and method.
type TokuteiMeisho string

const (
	JunmaiDaiginjo   TokuteiMeisho = "junmai_daiginjo"
	Daiginjo         TokuteiMeisho = "daiginjo"
	JunmaiGinjo      TokuteiMeisho = "junmai_ginjo"
	Ginjo            TokuteiMeisho = "ginjo"
	TokubetsuJunmai  TokuteiMeisho = "tokubetsu_junmai"
	Junmai           TokuteiMeisho = "junmai"
	TokubetsuHonjozo TokuteiMeisho = "tokubetsu_honjozo"
	Honjozo          TokuteiMeisho = "honjozo"
	Futsushu         TokuteiMeisho = "futsushu"
)

// TokuteiMeishoValues lists the classifications in display order.
var TokuteiMeishoValues = []TokuteiMeisho{
	JunmaiDaiginjo, Daiginjo, JunmaiGinjo, Ginjo,
	TokubetsuJunmai, Junmai, TokubetsuHonjozo, Honjozo, Futsushu,
}

var tokuteiMeishoLabels = map[TokuteiMeisho]string{
	JunmaiDaiginjo:   "純米大吟醸",
	Daiginjo:         "大吟醸",
	JunmaiGinjo:      "純米吟醸",
	Ginjo:            "吟醸",
	TokubetsuJunmai:  "特別純米",
	Junmai:           "純米",
	TokubetsuHonjozo: "特別本醸造",
	Honjozo:          "本醸造",
	Futsushu:         "普通酒",
}

// Valid reports whether t is a known classification.
func (t TokuteiMeisho) Valid() bool {
	_, ok := tokuteiMeishoLabels[t]
	return ok
}

// Label returns the Japanese name, or the raw value for unknown codes.
func (t TokuteiMeisho) Label() string {
	if l, ok := tokuteiMeishoLabels[t]; ok {
		return l
	}
	return string(t)
}

// HiireType is the pasteurization treatment.
type HiireType string

const (
	Hiire     HiireType = "hiire"
	Nama      HiireType = "nama"
	Namazume  HiireType = "namazume"
	Namachozo HiireType = "namachozo"
)

// HiireTypeValues lists the pasteurization types in display order.
var HiireTypeValues = []HiireType{Hiire, Nama, Namazume, Namachozo}

var hiireLabels = map[HiireType]string{
	Hiire:     "火入れ",
	Nama:      "生酒",
	Namazume:  "生詰",
	Namachozo: "生貯蔵",
}

func (h HiireType) Valid() bool {
	_, ok := hiireLabels[h]
	return ok
}

func (h HiireType) Label() string {
	if l, ok := hiireLabels[h]; ok {
		return l
	}
	return string(h)
}

// FiltrationType is the filtration or pressing style.
type FiltrationType string

const (
	Filtered FiltrationType = "filtered"
	Muroka   FiltrationType = "muroka"
	Nigori   FiltrationType = "nigori"
	Genshu   FiltrationType = "genshu"
)

// FiltrationTypeValues lists the filtration types in display order.
var FiltrationTypeValues = []FiltrationType{Filtered, Muroka, Nigori, Genshu}

var filtrationLabels = map[FiltrationType]string{
	Filtered: "濾過",
	Muroka:   "無濾過",
	Nigori:   "にごり",
	Genshu:   "原酒",
}

func (f FiltrationType) Valid() bool {
	_, ok := filtrationLabels[f]
	return ok
}

func (f FiltrationType) Label() string {
	if l, ok := filtrationLabels[f]; ok {
		return l
	}
	return string(f)
}

// Encoding is a CSV text encoding accepted by the import endpoints.
type Encoding string

const (
	// EncodingUTF8SIG is UTF-8 with an optional byte order mark. Default.
	EncodingUTF8SIG Encoding = "utf-8-sig"
	// EncodingCP932 is Shift-JIS as written by Japanese Excel.
	EncodingCP932 Encoding = "cp932"
)

// Encodings lists the accepted encodings, default first.
var Encodings = []Encoding{EncodingUTF8SIG, EncodingCP932}

func (e Encoding) Valid() bool {
	return e == EncodingUTF8SIG || e == EncodingCP932
}

// OrDefault returns e when valid, EncodingUTF8SIG otherwise.
func (e Encoding) OrDefault() Encoding {
	if e.Valid() {
		return e
	}
	return EncodingUTF8SIG
}

func (e Encoding) Label() string {
	switch e {
	case EncodingUTF8SIG:
		return "UTF-8 (推奨)"
	case EncodingCP932:
		return "Shift-JIS (CP932)"
	default:
		return string(e)
	}
}

// CSV columns understood by the import endpoints.
// The backend validates them; the console only documents the contract.
const (
	ColumnPrefecture = "prefecture"
	ColumnBrewery    = "brewery"
	ColumnLocation   = "location"
	ColumnBrand      = "brand"
	ColumnBrandKana  = "brand_kana"
)

// CSVColumn describes one column of the import format.
type CSVColumn struct {
	Name     string
	Label    string
	Required bool
}

// CSVColumns is the import format in column order.
var CSVColumns = []CSVColumn{
	{Name: ColumnPrefecture, Label: "都道府県 (任意、locationから自動抽出を試みます)"},
	{Name: ColumnBrewery, Label: "醸造所名", Required: true},
	{Name: ColumnLocation, Label: "所在地"},
	{Name: ColumnBrand, Label: "日本酒銘柄名", Required: true},
	{Name: ColumnBrandKana, Label: "読み仮名"},
}
