package security

// ValidateContentType reports whether a request body content type is
// one the API accepts. Charset parameters are stripped by the caller.
func ValidateContentType(contentType string) bool {
	switch contentType {
	case "application/json",
		"application/x-www-form-urlencoded",
		"multipart/form-data":
		return true
	}
	return false
}
