package v1

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"kaluste-backend/internal/domain"
	"kaluste-backend/pkg/utils"
)

// decode parses a JSON request body into dst.
func decode(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// handleError maps an error to an HTTP status. Not-found errors become 404,
// everything else from a write path is assumed to be bad input.
func handleError(w http.ResponseWriter, err error, fallbackStatus int) {
	if errors.Is(err, domain.ErrNotFound) {
		utils.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.WriteError(w, fallbackStatus, err.Error())
}

// pathID32 parses the {id} path segment as an int32.
func pathID32(r *http.Request) (int32, bool) {
	id := utils.ParseInt(r.PathValue("id"), -1)
	if id < 0 {
		return 0, false
	}
	return int32(id), true
}
