package memocache

// orDefault returns v unless it is the zero value of T, in which case def
// builds the replacement. def only runs when needed, so it may allocate.
func orDefault[T comparable](v T, def func() T) T {
	var zero T
	if v == zero {
		return def()
	}
	return v
}
