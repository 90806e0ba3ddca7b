package services

import (
	"net/http"

	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

var (
	ErrSignInRequired = errors.NewAPIError("SIGN_IN_REQUIRED", "Sign in required", http.StatusUnauthorized)
	ErrNotResolved    = errors.NewAPIError("NOT_RESOLVED", "Identity has not been resolved yet", 0)
	ErrToggleInFlight = errors.NewAPIError("TOGGLE_IN_FLIGHT", "A group change is already in progress", http.StatusConflict)
)
