package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/leadboard/pkg/cryptox"
	"github.com/aussiebroadwan/leadboard/pkg/jwtx"
)

// InitSigningKeys returns a KeyManager for access tokens.
//
// With cfg.SigningKeyFile set, the Ed25519 key is loaded from that file (and
// generated on first start) so tokens survive restarts. Otherwise a key is
// generated in memory and every restart invalidates outstanding tokens.
func InitSigningKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	if cfg.SigningKeyFile == "" {
		km, err := jwtx.NewEphemeralKeyManager()
		if err != nil {
			return nil, fmt.Errorf("failed to generate ephemeral signing key: %w", err)
		}
		logger.Warn("using an ephemeral signing key, all existing tokens are now invalid")
		return km, nil
	}

	priv, err := cryptox.LoadOrCreateEd25519Key(cfg.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	km, err := jwtx.NewKeyManager(priv)
	if err != nil {
		return nil, err
	}
	logger.Info("signing key loaded", "path", cfg.SigningKeyFile, "kid", km.GetSigner().KID())
	return km, nil
}
