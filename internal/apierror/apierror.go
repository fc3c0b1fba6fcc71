// Package apierror holds the typed errors that reach API clients.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an APIError.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindGeocoding
	KindPersistence
	KindUpload
	KindConflict
	KindInvalidCredentials
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindGeocoding:
		return "geocoding"
	case KindPersistence:
		return "persistence"
	case KindUpload:
		return "upload"
	case KindConflict:
		return "conflict"
	case KindInvalidCredentials:
		return "invalid_credentials"
	default:
		return "unknown"
	}
}

// DefaultMessage is sent when an error without a client message reaches the responder.
const DefaultMessage = "An unknown error occurred!"

// APIError is an error with a client-facing message and HTTP status.
// Err is kept for logs and never sent to clients.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// As extracts an APIError from err's chain.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Is reports whether err carries an APIError of the given kind.
func Is(err error, kind Kind) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Kind == kind
}

// StatusAndMessage returns what a client should see for err.
func StatusAndMessage(err error) (int, string) {
	apiErr, ok := As(err)
	if !ok {
		return http.StatusInternalServerError, DefaultMessage
	}
	status := apiErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	msg := apiErr.Message
	if msg == "" {
		msg = DefaultMessage
	}
	return status, msg
}

func NewErrValidation() *APIError {
	return &APIError{Kind: KindValidation, Status: http.StatusUnprocessableEntity, Message: "Invalid inputs passed, please check your data."}
}

func NewErrAuthentication(cause error) *APIError {
	return &APIError{Kind: KindAuthentication, Status: http.StatusUnauthorized, Message: "Authentication failed!", Err: cause}
}

func NewErrAuthorization(msg string) *APIError {
	return &APIError{Kind: KindAuthorization, Status: http.StatusUnauthorized, Message: msg}
}

func NewErrNotFound(msg string) *APIError {
	return &APIError{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

// NewErrAddressNotFound is returned when the geocoding provider has no result for an address.
func NewErrAddressNotFound() *APIError {
	return &APIError{Kind: KindGeocoding, Status: http.StatusUnprocessableEntity, Message: "Could not find location for the specified address."}
}

// NewErrGeocodingProvider is returned when the geocoding provider itself fails.
func NewErrGeocodingProvider(cause error) *APIError {
	return &APIError{Kind: KindGeocoding, Status: http.StatusBadGateway, Message: "Could not resolve the address, please try again later.", Err: cause}
}

func NewErrPersistence(msg string, cause error) *APIError {
	return &APIError{Kind: KindPersistence, Status: http.StatusInternalServerError, Message: msg, Err: cause}
}

func NewErrInvalidMimeType(mimeType string) *APIError {
	return &APIError{Kind: KindUpload, Status: http.StatusUnprocessableEntity, Message: "Invalid mime (extension) type.", Err: fmt.Errorf("mime type %q", mimeType)}
}

func NewErrUploadTooLarge(limit int64) *APIError {
	return &APIError{Kind: KindUpload, Status: http.StatusRequestEntityTooLarge, Message: fmt.Sprintf("Image exceeds the maximum size of %d bytes.", limit)}
}

func NewErrUploadFailed(cause error) *APIError {
	return &APIError{Kind: KindUpload, Status: http.StatusInternalServerError, Message: "Could not store the uploaded image, please try again.", Err: cause}
}

func NewErrEmailIsTaken(email string) *APIError {
	return &APIError{Kind: KindConflict, Status: http.StatusUnprocessableEntity, Message: "User exists already, please login instead.", Err: fmt.Errorf("email %q", email)}
}

func NewErrInvalidCredentials() *APIError {
	return &APIError{Kind: KindInvalidCredentials, Status: http.StatusForbidden, Message: "Invalid credentials, could not log you in."}
}
