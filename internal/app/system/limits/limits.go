// internal/app/system/limits/limits.go
package limits

// Request body size limits. These prevent memory exhaustion from oversized
// submissions; they are independent of the tier entitlement limits in
// policy/tierpolicy.
const (
	// MaxDocumentSize is the maximum size for a portfolio document save.
	MaxDocumentSize = 1 << 20 // 1 MB

	// MaxFormSize is the maximum size for ordinary form submissions.
	MaxFormSize = 1 << 20 // 1 MB

	// MaxUploadSize is the maximum size for a section image upload.
	// Uploads use ParseMultipartForm with this limit.
	MaxUploadSize = 8 << 20 // 8 MB
)
