package transform

import "fmt"

// stringField pulls a field out of a loose document as a string, tolerating
// engine payloads that deliver numbers or other scalars where text is
// expected. Missing fields come back empty.
func stringField(doc map[string]any, key string) string {
	value, present := doc[key]
	if !present || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

// stringFieldOr is stringField with a fallback for absent or empty values.
func stringFieldOr(doc map[string]any, key, fallback string) string {
	if s := stringField(doc, key); s != "" {
		return s
	}
	return fallback
}
