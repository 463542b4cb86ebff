package utils

// Value dereferences v, returning the zero value for nil. Decoded JSON responses use
// pointers to tell a missing field from an empty one.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}
