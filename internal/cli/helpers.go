package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/academy/internal/app"
	"github.com/mesh-intelligence/academy/internal/logging"
	"github.com/mesh-intelligence/academy/internal/paths"
	"github.com/mesh-intelligence/academy/internal/sqlite"
	"github.com/mesh-intelligence/academy/pkg/types"
)

// validTableNamesStr is a comma-separated list of valid table names for error output.
var validTableNamesStr = strings.Join(types.StandardTableNames, ", ")

// userErrors are the sentinel errors caused by bad input rather than by the
// environment.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrInvalidData,
	types.ErrInvalidFilter,
	types.ErrUnsupportedLanguage,
	types.ErrTableNotFound,
}

// classify wraps err in an exitError with the matching exit code.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return userError(err)
		}
	}
	return sysError(err)
}

// env is the per-invocation state shared by commands that touch the catalog.
type env struct {
	settings settings
	dataDir  string
	logger   *zap.Logger
	catalog  types.Catalog
}

// openEnv loads configuration, builds the logger, and attaches the catalog.
// The caller must call close.
func openEnv() (*env, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return nil, sysError(err)
	}
	s, err := decodeSettings(v)
	if err != nil {
		return nil, userError(err)
	}
	if flags.cartID != "" {
		s.CartID = flags.cartID
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, s.DataDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	logger, err := logging.New(s.LogLevel)
	if err != nil {
		return nil, userError(err)
	}

	backend := sqlite.NewBackend()
	cfg := types.Config{Backend: s.Backend, DataDir: dataDir, SyncStrategy: s.Sync}
	if err := backend.Attach(cfg); err != nil {
		return nil, sysError(fmt.Errorf("attach catalog: %w", err))
	}
	logger.Debug("catalog attached", zap.String("data_dir", dataDir), zap.String("sync", cfg.EffectiveSyncStrategy()))

	return &env{settings: s, dataDir: dataDir, logger: logger, catalog: backend}, nil
}

func (e *env) close() error {
	err := e.catalog.Detach()
	_ = e.logger.Sync()
	if err != nil {
		return sysError(fmt.Errorf("detach catalog: %w", err))
	}
	return nil
}

func (e *env) session() (*app.Session, error) {
	s, err := app.NewSession(e.catalog, app.Options{
		Language:  e.settings.Language,
		Languages: e.settings.Languages,
		SlotCount: e.settings.SlotCount,
		CartID:    e.settings.CartID,
	}, e.logger)
	if err != nil {
		return nil, classify(err)
	}
	return s, nil
}

func (e *env) table(name string) (types.Table, error) {
	tbl, err := e.catalog.GetTable(name)
	if errors.Is(err, types.ErrTableNotFound) {
		return nil, userError(fmt.Errorf("unknown table %q (valid: %s)", name, validTableNamesStr))
	}
	if err != nil {
		return nil, sysError(fmt.Errorf("get table: %w", err))
	}
	return tbl, nil
}

// withEnv runs fn against an attached catalog and detaches afterwards.
func withEnv(fn func(e *env) error) (err error) {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := e.close(); err == nil {
			err = cerr
		}
	}()
	return classify(fn(e))
}

// decodeEntity unmarshals JSON data into the entity type stored in tableName.
func decodeEntity(tableName string, data []byte) (any, error) {
	var entity any
	switch tableName {
	case types.TableArticles:
		entity = &types.Article{}
	case types.TableLessons:
		entity = &types.Lesson{}
	case types.TableProducts:
		entity = &types.Product{}
	case types.TableCarts:
		entity = &types.Cart{}
	default:
		return nil, userError(fmt.Errorf("unknown table %q (valid: %s)", tableName, validTableNamesStr))
	}
	if err := json.Unmarshal(data, entity); err != nil {
		return nil, userError(fmt.Errorf("parse JSON: %w", err))
	}
	return entity, nil
}

// parseFilter turns key=value arguments into a Fetch filter. Values that
// parse as JSON keep their JSON type; anything else is a string.
func parseFilter(args []string) (map[string]any, error) {
	filter := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, userError(fmt.Errorf("invalid filter %q (expected key=value)", arg))
		}
		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			parsed = value
		}
		filter[key] = parsed
	}
	return filter, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal JSON: %w", err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
