package ports

import (
	"context"

	"github.com/target/control-panel-ui/internal/domain/model"
	"github.com/target/control-panel-ui/internal/domain/override"
)

// OverrideClient submits halt and resume requests on behalf of a signed-in user.
type OverrideClient interface {
	// SubmitOverride returns the API reply on a 2xx. A refusal is reported as an
	// unauthorized, forbidden, invalid_input or conflict AppError; anything else
	// (network, 5xx, undecodable body) as service_unavailable or unexpected_response.
	SubmitOverride(ctx context.Context, accessToken string, req override.Request) (override.Reply, error)
}

// StatusClient reads the platform status with the signed-in user's token.
type StatusClient interface {
	SystemStatus(ctx context.Context, accessToken string) (model.SystemStatus, error)
}

// ControlAPI is the full surface of the external Control API used by the panel.
type ControlAPI interface {
	CredentialExchanger
	OverrideClient
	StatusClient
}
