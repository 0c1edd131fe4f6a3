package session

import (
	"context"
	"log/slog"

	"github.com/crimetryx/crimetryx/internal/backend"
	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
)

// Authenticator exchanges credentials for an investigator identity.
type Authenticator interface {
	Authenticate(ctx context.Context, investigatorID, password string) (models.Identity, error)
}

// Demo credentials recognised without a backend.
const (
	DemoInvestigatorID = "demo"
	DemoPassword       = "demo123"
)

// LiveAuthenticator authenticates against the case-management backend.
type LiveAuthenticator struct {
	client *backend.Client
}

func NewLiveAuthenticator(client *backend.Client) *LiveAuthenticator {
	return &LiveAuthenticator{client: client}
}

func (a *LiveAuthenticator) Authenticate(ctx context.Context, investigatorID, password string) (models.Identity, error) {
	identity, err := a.client.Login(ctx, investigatorID, password)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 401 {
			return models.Identity{}, errors.Wrap(ErrInvalidCredentials, "live login",
				slog.String("investigator_id", investigatorID))
		}
		return models.Identity{}, err
	}
	return identity, nil
}

// DemoAuthenticator accepts exactly the built-in demo credentials and
// synthesises the demo identity. It never touches the network.
type DemoAuthenticator struct{}

func NewDemoAuthenticator() *DemoAuthenticator {
	return &DemoAuthenticator{}
}

func (a *DemoAuthenticator) Authenticate(_ context.Context, investigatorID, password string) (models.Identity, error) {
	if investigatorID != DemoInvestigatorID || password != DemoPassword {
		return models.Identity{}, errors.Wrap(ErrInvalidCredentials, "demo login",
			slog.String("investigator_id", investigatorID))
	}
	return models.Identity{
		InvestigatorID: DemoInvestigatorID,
		Name:           "Demo Investigator",
		Role:           "investigator",
	}, nil
}

// FallbackAuthenticator tries the live backend first and degrades to the
// standby authenticator only when the backend is unreachable. A reachable
// backend rejecting the credentials is a real failure and is not masked.
type FallbackAuthenticator struct {
	live    Authenticator
	standby Authenticator
	logger  *slog.Logger
}

func NewFallbackAuthenticator(live, standby Authenticator, logger *slog.Logger) *FallbackAuthenticator {
	return &FallbackAuthenticator{live: live, standby: standby, logger: logger}
}

func (a *FallbackAuthenticator) Authenticate(ctx context.Context, investigatorID, password string) (models.Identity, error) {
	identity, err := a.live.Authenticate(ctx, investigatorID, password)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, backend.ErrUnreachable) {
		return models.Identity{}, err
	}
	a.logger.LogAttrs(ctx, slog.LevelWarn, "backend unreachable, falling back to demo auth",
		errors.SlogError(err))
	return a.standby.Authenticate(ctx, investigatorID, password)
}
