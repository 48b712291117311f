package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"dentixpro/internal/apperr"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
	// Kind overrides the sentinel derived from StatusCode.
	Kind error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
}

// RemoteMessage is the server's explanation, shown to the user verbatim.
func (e *APIError) RemoteMessage() string { return e.Message }

func (e *APIError) Is(target error) bool {
	if e.Kind != nil {
		return errors.Is(e.Kind, target)
	}
	return statusSentinel(e.StatusCode) == target
}

func statusSentinel(code int) error {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperr.ErrValidation
	case http.StatusUnauthorized:
		return apperr.ErrUnauthorized
	case http.StatusForbidden:
		return apperr.ErrForbidden
	case http.StatusNotFound:
		return apperr.ErrNotFound
	case http.StatusConflict:
		return apperr.ErrConflict
	}
	return nil
}

func readAPIError(resp *http.Response) *APIError {
	defer resp.Body.Close()
	e := &APIError{StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Msg   string `json:"msg"`
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Msg
		if e.Message == "" {
			e.Message = payload.Error
		}
	}
	return e
}

// refine re-labels an API error with the given status as kind.
func refine(err error, status int, kind error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == status {
		apiErr.Kind = kind
	}
	return err
}
