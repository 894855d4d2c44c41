package gateway

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/homebooking/internal/config"
)

// Module exposes the gateway status client and signature verifier to fx graph.
var Module = fx.Provide(newClient, newVerifier)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// newClient returns a nil Client when polling is disabled.
func newClient(p clientParams) (Client, error) {
	if !p.Config.PaymentPollingEnabled() {
		return nil, nil
	}
	client, err := NewHTTPClient(p.Config.GatewayStatusURL, p.Config.GatewayServerKey, p.Logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newVerifier(p clientParams) *Verifier {
	if p.Config.GatewayServerKey == "" {
		p.Logger.Warn("gateway server key is empty, notify signatures are not verified")
	}
	return NewVerifier(p.Config.GatewayServerKey)
}
