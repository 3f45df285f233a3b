package gemini

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/imroc/req/v3"
)

var (
	ErrNoUploadURL = errors.New("gemini: upload url missing from response")
	ErrNotFound    = errors.New("gemini: not found")
)

// APIError is the error body returned by Google APIs.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %d %s - %s", e.Code, e.Status, e.Message)
}

// Temporary reports whether the request may succeed if repeated.
func (e *APIError) Temporary() bool {
	return e.Code == http.StatusRequestTimeout ||
		e.Code == http.StatusTooManyRequests ||
		e.Code >= http.StatusInternalServerError
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// handleAPIError is a helper function that handles the common error pattern
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s %w", operation, requestErr)
	}

	// got a response, but api returned an error
	if resp.IsErrorState() {
		if env, ok := resp.ErrorResult().(*errorEnvelope); ok && env.Error != nil {
			if env.Error.Code == 0 {
				env.Error.Code = resp.StatusCode
			}
			return fmt.Errorf("%s: %w", operation, env.Error)
		}

		return fmt.Errorf("%s: %w", operation, &APIError{
			Code:    resp.StatusCode,
			Status:  http.StatusText(resp.StatusCode),
			Message: resp.String(),
		})
	}

	return nil
}
