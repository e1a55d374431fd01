package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the gateway or the external generation
	// service behind it is unreachable. The UI offers wait-and-retry.
	ErrUnavailable = errors.New("meal plan service unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("meal plan request timed out")

	// ErrRateLimited indicates the gateway rejected the call with 429.
	// No automatic retry is scheduled; the user retries.
	ErrRateLimited = errors.New("too many requests")

	// ErrConflict indicates generation was attempted while overlapping
	// plans exist. Expected branch, resolved by explicit overwrite.
	ErrConflict = errors.New("existing meal plan conflicts with generation")

	// ErrSubscriptionRequired indicates the action needs a paid tier.
	ErrSubscriptionRequired = errors.New("subscription required")

	// ErrSubscriptionLimit indicates the requested duration exceeds the
	// tier's meal-plan length cap.
	ErrSubscriptionLimit = errors.New("subscription limit exceeded")

	// ErrNoSavedRecipes indicates generation found nothing to plan with.
	ErrNoSavedRecipes = errors.New("no saved recipes found")

	// ErrUnauthorized indicates the bearer token was rejected.
	ErrUnauthorized = errors.New("authentication failed")
)

// apiError carries the structured error body the gateway returns alongside
// the classifying sentinel.
type apiError struct {
	sentinel error
	Status   int
	Type     string
	Message  string
	Details  string
}

func (e *apiError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (status %d): %s", e.Message, e.Status, e.Details)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *apiError) Unwrap() error {
	return e.sentinel
}

// errorBody is the JSON error envelope used by the gateway.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Details string `json:"details"`
}

// classifyStatus maps a non-2xx response onto the error taxonomy.
func classifyStatus(status int, body errorBody) error {
	msg := body.Error
	if msg == "" {
		msg = body.Message
	}

	sentinel := func() error {
		switch {
		case body.Error == "No saved recipes found":
			return ErrNoSavedRecipes
		case body.Type == "SUBSCRIPTION_LIMIT_EXCEEDED":
			return ErrSubscriptionLimit
		case body.Type == "SUBSCRIPTION_REQUIRED":
			return ErrSubscriptionRequired
		case body.Type == "EXTERNAL_API_UNAVAILABLE", body.Type == "EXTERNAL_API_CONNECTION_ERROR":
			return ErrUnavailable
		case status == 409:
			return ErrConflict
		case status == 429:
			return ErrRateLimited
		case status == 503:
			return ErrUnavailable
		case status == 401, status == 403:
			return ErrUnauthorized
		default:
			return nil
		}
	}()

	if sentinel == nil {
		if msg == "" {
			msg = "request failed"
		}
		return &apiError{sentinel: nil, Status: status, Type: body.Type, Message: msg, Details: body.Details}
	}
	if msg == "" {
		msg = sentinel.Error()
	}
	return &apiError{sentinel: sentinel, Status: status, Type: body.Type, Message: msg, Details: body.Details}
}

// errorCode maps an error onto a short code for call-event logging.
func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrSubscriptionLimit):
		return "SUBSCRIPTION_LIMIT"
	case errors.Is(err, ErrSubscriptionRequired):
		return "SUBSCRIPTION_REQUIRED"
	case errors.Is(err, ErrNoSavedRecipes):
		return "NO_SAVED_RECIPES"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	default:
		return "UNKNOWN"
	}
}
