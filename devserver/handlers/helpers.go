package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/middleware"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.NewAPIError(errors.ErrInvalidInput.Code, "Invalid request data", http.StatusBadRequest, err.Error())
	}
	return nil
}

func currentUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return models.User{}, false
	}
	return user, true
}

func badRequest(detail string) *errors.APIError {
	return errors.NewAPIError(errors.ErrInvalidInput.Code, detail, http.StatusBadRequest)
}

func notFound(detail string) *errors.APIError {
	return errors.NewAPIError(errors.ErrNotFound.Code, detail, http.StatusNotFound)
}

// orNotFound replaces a generic not-found error with a specific message.
func orNotFound(err error, detail string) error {
	if err == errors.ErrNotFound {
		return notFound(detail)
	}
	return err
}

func message(msg string) models.StatusMessage {
	return models.StatusMessage{Message: msg}
}
