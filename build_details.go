package xmltools

import "fmt"

// version is stamped at release time via -ldflags; source builds report "dev".
var version = "dev"

// Version returns the xmltools release version, or "dev" when built from source.
func Version() string {
	return version
}

// UserAgent returns the version-qualified identification string for
// outward-facing surfaces.
func UserAgent() string {
	return fmt.Sprintf("xmltools/%s", version)
}
