package mockserve

import (
	"io"
	"net/http"
	"strings"

	"mockapi/internal/models"
)

// DefaultContentType is used when a handler configures no Content-Type.
const DefaultContentType = "text/plain"

// Render writes the handler's configured response: status, headers and body
// verbatim. Content-Type is taken from the configured headers by
// case-insensitive match, falling back to text/plain; all other header names
// keep their configured casing. Returns the status written.
func Render(w http.ResponseWriter, h *models.Handler) int {
	contentType := DefaultContentType
	for name, value := range h.Headers() {
		if strings.EqualFold(name, "Content-Type") {
			contentType = value
			continue
		}
		w.Header()[name] = []string{value}
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(h.ResponseStatusCode)
	_, _ = io.WriteString(w, h.ResponseBody)
	return h.ResponseStatusCode
}
