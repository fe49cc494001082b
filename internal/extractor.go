package internal

// ExtractorSource reads one candidate value from the request.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries its sources in order and returns the first non-empty
// value.
//
//	lang := admin.NewExtractor(admin.FromQuery("lang"), admin.FromCookie("lang"))
type Extractor struct {
	sources []ExtractorSource
}

func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func nonEmpty(v string) (string, bool) {
	return v, v != ""
}

func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		return nonEmpty(c.Query(name))
	}
}

func FromCookie(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v, err := c.Cookie(name)
		if err != nil {
			return "", false
		}
		return nonEmpty(v)
	}
}
