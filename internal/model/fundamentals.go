package model

// Fundamentals is a quote snapshot keyed by the provider's field names.
type Fundamentals map[string]any

// Float returns a numeric field.
func (f Fundamentals) Float(key string) (float64, bool) {
	switch v := f[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Text returns a string field.
func (f Fundamentals) Text(key string) (string, bool) {
	v, ok := f[key].(string)
	return v, ok
}

// Clone returns a shallow copy; a nil snapshot clones to an empty one.
func (f Fundamentals) Clone() Fundamentals {
	out := make(Fundamentals, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
