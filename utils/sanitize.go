package utils

import "strings"

// SanitizeHeaderFilename strips characters that would break a quoted
// Content-Disposition filename.
func SanitizeHeaderFilename(name string) string {
	replacer := strings.NewReplacer("\"", "", "\\", "", "\r", "", "\n", "")
	name = replacer.Replace(name)
	name = strings.TrimSpace(name)
	if name == "" {
		return "download"
	}
	return name
}
