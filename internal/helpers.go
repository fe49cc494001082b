package internal

import "strconv"

// Scalar lists the types the typed parameter helpers convert to.
type Scalar interface {
	string | int | int64 | float64 | bool
}

// ContextValue returns the value stored under key as T, or T's zero value.
//
//	snap := admin.ContextValue[auth.Snapshot](c, snapshotKey{})
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// Param converts a URL parameter. Unparsable input gives the zero value.
//
//	id := admin.Param[int64](c, "id")
func Param[T Scalar](c Context, name string) T {
	v, _ := convertParam[T](c.Param(name))
	return v
}

// ParamOK is Param that also reports whether the value parsed.
func ParamOK[T Scalar](c Context, name string) (T, bool) {
	return convertParam[T](c.Param(name))
}

// Query converts a query parameter. Unparsable input gives the zero value.
func Query[T Scalar](c Context, name string) T {
	v, _ := convertParam[T](c.Query(name))
	return v
}

// QueryDefault converts a query parameter, falling back to defaultValue
// when it is absent or unparsable.
//
//	limit := admin.QueryDefault(c, "limit", 100)
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

// FormValue converts a form field. Unparsable input gives the zero value
// and false.
//
//	gen, ok := admin.FormValue[int64](c, "gen")
func FormValue[T Scalar](c Context, name string) (T, bool) {
	return convertParam[T](c.Form(name))
}

func convertParam[T Scalar](raw string) (T, bool) {
	var zero T
	var out any
	var err error
	switch any(zero).(type) {
	case string:
		return any(raw).(T), true
	case int:
		out, err = strconv.Atoi(raw)
	case int64:
		out, err = strconv.ParseInt(raw, 10, 64)
	case float64:
		out, err = strconv.ParseFloat(raw, 64)
	case bool:
		out, err = strconv.ParseBool(raw)
	default:
		return zero, false
	}
	if err != nil {
		return zero, false
	}
	v, ok := out.(T)
	return v, ok
}
