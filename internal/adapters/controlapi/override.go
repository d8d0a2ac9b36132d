package controlapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/target/control-panel-ui/internal/domain/model"
	"github.com/target/control-panel-ui/internal/domain/override"
	apperrors "github.com/target/control-panel-ui/internal/errors"
)

// overridePayload is the API's SystemOverrideRequest body.
type overridePayload struct {
	Action           override.Action `json:"action"`
	Reason           string          `json:"reason"`
	ConfirmationCode string          `json:"confirmation_code,omitempty"`
}

// SubmitOverride posts a halt or resume request with the caller's bearer token.
// It is sent exactly once.
func (c *Client) SubmitOverride(ctx context.Context, accessToken string, req override.Request) (override.Reply, error) {
	if accessToken == "" {
		return override.Reply{}, apperrors.Unauthorized("no access token in session")
	}
	path := c.paths.Halt
	if req.Action == override.ActionResume {
		path = c.paths.Resume
	}

	resp, body, err := c.do(ctx, http.MethodPost, path, bearer(accessToken), overridePayload{
		Action:           req.Action,
		Reason:           req.Reason,
		ConfirmationCode: req.ConfirmationCode,
	})
	if err != nil {
		return override.Reply{}, err
	}
	if err = overrideStatusError(resp.StatusCode, body); err != nil {
		c.logger.InfoContext(ctx, "override refused", "action", req.Action, "status", resp.StatusCode)
		return override.Reply{}, err
	}

	var reply override.Reply
	if len(body) > 0 {
		if err = json.Unmarshal(body, &reply); err != nil {
			return override.Reply{}, apperrors.Wrap(err, apperrors.ErrCodeUnexpectedResponse, "override response is not JSON")
		}
	}
	return reply, nil
}

// SystemStatus reads the platform status.
func (c *Client) SystemStatus(ctx context.Context, accessToken string) (model.SystemStatus, error) {
	resp, body, err := c.do(ctx, http.MethodGet, c.paths.Status, bearer(accessToken), nil)
	if err != nil {
		return model.SystemStatus{}, err
	}
	if err = overrideStatusError(resp.StatusCode, body); err != nil {
		return model.SystemStatus{}, err
	}
	var status model.SystemStatus
	if err = json.Unmarshal(body, &status); err != nil {
		return model.SystemStatus{}, apperrors.Wrap(err, apperrors.ErrCodeUnexpectedResponse, "status response is not JSON")
	}
	if status.Status == "" {
		return model.SystemStatus{}, apperrors.UnexpectedResponse("status response has no status")
	}
	return status, nil
}
