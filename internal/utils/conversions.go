package utils

// StringSlice converts a decoded JSON array to its string elements. Non-string
// elements are dropped; anything other than an array yields an empty slice.
func StringSlice(v any) []string {
	slice, _ := v.([]any)
	stringSlice := make([]string, 0, len(slice))
	for _, item := range slice {
		if s, ok := item.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}

// FirstNonEmpty returns the first value that is not ""
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
