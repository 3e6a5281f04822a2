package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxBodySize caps request bodies at 10MB. Document content is the largest
// payload this API carries and stays well under this.
const maxBodySize = 10 << 20

// ParseJSON decodes JSON from the request body into dest. The body is
// size-limited through MaxBytesReader so oversized payloads get a proper 413.
// Unknown fields are tolerated; validation happens in the service layer.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
