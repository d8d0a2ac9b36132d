package controlapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/target/control-panel-ui/internal/errors"
	"golang.org/x/oauth2"
)

// classifyTokenError maps a password-grant failure onto the sign-in error taxonomy.
func classifyTokenError(err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		status := 0
		if rErr.Response != nil {
			status = rErr.Response.StatusCode
		}
		switch {
		case status == http.StatusBadRequest, status == http.StatusUnauthorized, status == http.StatusForbidden:
			return apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "credentials were rejected")
		case status == http.StatusTooManyRequests, status >= 500:
			return apperrors.Wrapf(err, apperrors.ErrCodeServiceUnavailable, "token endpoint returned %d", status)
		default:
			return apperrors.Wrapf(err, apperrors.ErrCodeUnexpectedResponse, "token endpoint returned %d", status)
		}
	}
	if isTransportError(err) {
		return apperrors.Wrap(err, apperrors.ErrCodeServiceUnavailable, "token endpoint unreachable")
	}
	// Missing access_token, undecodable body.
	return apperrors.Wrap(err, apperrors.ErrCodeUnexpectedResponse, "token response could not be used")
}

func classifyTransportError(err error) error {
	if isTransportError(err) {
		return apperrors.Wrap(err, apperrors.ErrCodeServiceUnavailable, "control api unreachable")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeUnexpectedResponse, "control api response could not be read")
}

func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func profileStatusError(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return apperrors.Wrap(errors.New(detail(body, status)), apperrors.ErrCodeUnauthorized, "profile request was refused")
	case status == http.StatusTooManyRequests, status >= 500:
		return apperrors.Wrapf(errors.New(detail(body, status)), apperrors.ErrCodeServiceUnavailable, "profile endpoint returned %d", status)
	default:
		return apperrors.UnexpectedResponsef("profile endpoint returned %d", status)
	}
}

// overrideStatusError maps an override reply: refusals keep the API's own code, the rest are failures.
func overrideStatusError(status int, body []byte) error {
	msg := detail(body, status)
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(msg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(msg)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return &apperrors.AppError{Code: apperrors.ErrCodeInvalidInput, Message: msg}
	case status == http.StatusConflict:
		return &apperrors.AppError{Code: apperrors.ErrCodeConflict, Message: msg}
	case status == http.StatusTooManyRequests, status >= 500:
		return apperrors.ServiceUnavailable(msg)
	default:
		return apperrors.UnexpectedResponse(msg)
	}
}

// detail extracts the API's error text ({"detail": "..."}) or falls back to the status text.
func detail(body []byte, status int) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil && strings.TrimSpace(s) != "" {
			return s
		}
		// Validation errors arrive as a list of objects.
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(payload.Detail, &items) == nil && len(items) > 0 && items[0].Msg != "" {
			return items[0].Msg
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected status"
}
