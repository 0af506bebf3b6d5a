package cli

import (
	"fmt"

	"github.com/example/watools/internal/wire"
)

// requireID rejects a missing or non-positive ID flag.
func requireID(flag string, id int) error {
	if id <= 0 {
		return fmt.Errorf("--%s is required", flag)
	}
	return nil
}

// selectedAccount returns the account chosen by --account-id, the environment or config.json.
func selectedAccount() (int, error) {
	cfg, err := wire.Config()
	if err != nil {
		return 0, err
	}
	if cfg.AccountID == 0 {
		return 0, fmt.Errorf("no account selected: use --account-id or set account_id in config.json")
	}
	return cfg.AccountID, nil
}
