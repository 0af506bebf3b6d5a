package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/example/watools/internal/config"
	"github.com/example/watools/internal/db"
	"github.com/example/watools/internal/wire"
)

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration (secrets masked)",
		Long: `Show the configuration after merging config.json, credentials.json,
.env, WATOOLS_* environment variables and command-line flags.

Files are read from $WATOOLS_CONFIG_DIR, $XDG_CONFIG_HOME/watools or ~/.config/watools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, err := wire.Config()
			if err != nil {
				return err
			}
			props := cfg.Properties()
			if dir, err := config.ConfigDir(); err == nil {
				props["config_dir"] = dir
			}
			if path, err := db.GetDBPath(); err == nil {
				props["cache_db"] = path
			}
			return printProperties(os.Stdout, props, asJSON)
		},
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

// printProperties writes key/value pairs sorted by key.
func printProperties(out io.Writer, props map[string]string, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(props)
	}

	keys := make([]string, 0, len(props))
	width := 0
	for k := range props {
		keys = append(keys, k)
		if len(k) > width {
			width = len(k)
		}
	}
	sort.Strings(keys)

	fmt.Fprintln(out)
	for _, k := range keys {
		fmt.Fprintf(out, "%-*s  %s\n", width, k, props[k])
	}
	fmt.Fprintln(out)
	return nil
}
