package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/campus/pkg/jwtx"
)

// InitKeys creates the in-memory pool of Ed25519 signing keys. Keys are
// generated on startup and live only in memory, so every outstanding
// session becomes invalid when the service restarts.
//
// By default 3 keys with random identifiers are generated and each token
// is signed by one of them. Use CAMPUS_NUM_KEYS to change the pool size.
func InitKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		Issuer:  cfg.Issuer,
		NumKeys: cfg.NumKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize key manager: %w", err)
	}

	logger.Info("signing keys generated", "algorithm", jwtx.AlgorithmEdDSA, "num_keys", km.NumKeys())
	return km, nil
}
