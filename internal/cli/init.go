package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/academy/internal/paths"
	"github.com/mesh-intelligence/academy/internal/sqlite"
	"github.com/mesh-intelligence/academy/pkg/types"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize academy storage",
		Long:  "Create the configuration and data directories, write config.yaml, and create the empty JSONL catalog files.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, "")
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	if err := writeConfigIfMissing(paths.ConfigFile(configDir), dataDir); err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	s, err := decodeSettings(v)
	if err != nil {
		return userError(err)
	}
	if dataDir, err = paths.ResolveDataDir(flags.dataDir, s.DataDir); err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	catalog := sqlite.NewBackend()
	if err := catalog.Attach(types.Config{Backend: s.Backend, DataDir: dataDir, SyncStrategy: s.Sync}); err != nil {
		return sysError(fmt.Errorf("initialize storage: %w", err))
	}
	if err := catalog.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	if flags.jsonMode {
		return printJSON(cmd, map[string]string{"config_dir": configDir, "data_dir": dataDir})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Academy initialized\nconfig: %s\ndata:   %s\n", configDir, dataDir)
	return nil
}

// writeConfigIfMissing creates config.yaml with default values and the given
// data directory. An existing file is left untouched.
func writeConfigIfMissing(path, dataDir string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	cfg := defaultSettings()
	cfg.DataDir = dataDir
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
