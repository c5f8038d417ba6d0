package docmodel

import (
	"fmt"
	"strings"
)

// knownExtensions are the extensions rename() strips back into visibleName;
// anything else is left attached to the filename (P7).
var knownExtensions = []string{".pdf", ".djvu", ".ps", ".epub"}

// extensionFor returns the display-name suffix for a node: collections get
// the bare name, documents get "."+fileType, defaulting to "pdf" for an
// empty fileType since notebooks are presented as rendered PDFs.
func extensionFor(kind NodeKind, fileType string) string {
	if kind != NodeDocument {
		return ""
	}
	if fileType == "" {
		return "pdf"
	}
	return fileType
}

// displayName builds a node's base display name (before disambiguation)
// from its visible name and kind-derived extension.
func displayName(visibleName string, kind NodeKind, fileType string) string {
	name := strings.ReplaceAll(visibleName, "/", "-")
	ext := extensionFor(kind, fileType)
	if ext == "" {
		return name
	}
	return name + "." + ext
}

// disambiguate returns a name guaranteed unique among taken, appending
// " (2)", " (3)", ... deterministically (P3) until no collision remains.
func disambiguate(taken map[string]string, name string) string {
	if _, ok := taken[name]; !ok {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// stripKnownExtension implements the rename-time policy: the trailing
// extension is removed only if it is one of the known container types
// (case-insensitively), and the stripped value becomes the new
// visibleName; anything else is retained verbatim (P7).
func stripKnownExtension(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range knownExtensions {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}
