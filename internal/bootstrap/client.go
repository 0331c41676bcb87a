package bootstrap

import (
	"log/slog"

	"github.com/pcagrade/planning-client/config"
	"github.com/pcagrade/planning-client/internal/apiclient"
	"github.com/pcagrade/planning-client/internal/ports"
)

// BuildAPIClient creates the backend API client reading credentials through
// the session manager.
func BuildAPIClient(cfg config.APIConfig, creds ports.CredentialSource, logger *slog.Logger) (*apiclient.Client, error) {
	return apiclient.NewClient(apiclient.ClientOptions{
		BaseURL:     cfg.BaseURL,
		Credentials: creds,
		Timeout:     cfg.Timeout,
		Logger:      logger,
	})
}
