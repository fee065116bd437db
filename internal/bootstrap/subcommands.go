package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/chmouel/codecanvas/internal/config"
	"github.com/chmouel/codecanvas/internal/filetree"
	"github.com/chmouel/codecanvas/internal/git"
	"github.com/chmouel/codecanvas/internal/log"
	"github.com/chmouel/codecanvas/internal/storage"
	"github.com/chmouel/codecanvas/internal/utils"
)

// environment is everything a subcommand operates on.
type environment struct {
	cfg      *config.AppConfig
	root     string // resolved storage root on disk
	stateDir string
	store    *storage.Store
	tree     *filetree.Model
	git      *git.Engine
}

var (
	loadCLIConfigFunc = loadCLIConfig
	stateDirFunc      = config.StateDir
)

// loadCLIConfig loads the configuration file and applies the global flags
// on top of it. CLI overrides have the highest precedence.
func loadCLIConfig(configFileFlag, storageRootFlag, themeFlag string, configOverrides []string) (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(configFileFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if storageRootFlag != "" {
		cfg.StorageRoot = storageRootFlag
	}
	if err := applyThemeConfig(cfg, themeFlag); err != nil {
		return nil, err
	}

	if len(configOverrides) > 0 {
		if err := cfg.ApplyCLIOverrides(configOverrides); err != nil {
			return nil, fmt.Errorf("error applying config overrides: %w", err)
		}
	}
	return cfg, nil
}

// applyThemeConfig applies theme configuration from command line flag.
func applyThemeConfig(cfg *config.AppConfig, themeName string) error {
	if themeName == "" {
		return nil
	}
	normalized := config.NormalizeThemeName(themeName)
	if normalized == "" {
		return fmt.Errorf("unknown theme %q", themeName)
	}
	cfg.Theme = normalized
	return nil
}

// setupDebugLog points the debug logger at the flag value, then the config
// value. With neither set, buffered entries are discarded.
func setupDebugLog(cfg *config.AppConfig, debugLogFlag string) {
	path := debugLogFlag
	if path == "" {
		path = cfg.DebugLog
	}
	log.SetFormat(cfg.LogFormat)
	if path == "" {
		_ = log.SetFile("")
		return
	}
	if expanded, err := utils.ExpandPath(path); err == nil {
		path = expanded
	}
	cfg.DebugLog = path
	if err := log.SetFile(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening debug log file %q: %v\n", path, err)
	}
}

// openEnvironment loads the configuration and opens the storage root, the
// file tree and the VCS engine over it.
func openEnvironment(ctx context.Context, cmd *urfavecli.Command) (*environment, error) {
	cfg, err := loadCLIConfigFunc(
		cmd.String("config-file"),
		cmd.String("storage-root"),
		cmd.String("theme"),
		cmd.StringSlice("config"),
	)
	if err != nil {
		return nil, err
	}
	setupDebugLog(cfg, cmd.String("debug-log"))

	root, err := cfg.ResolvedStorageRoot()
	if err != nil {
		return nil, fmt.Errorf("error resolving storage root: %w", err)
	}
	store, err := storage.NewOS(root)
	if err != nil {
		return nil, err
	}
	if err := store.CheckPermission(); err != nil {
		return nil, err
	}

	tree, err := filetree.New(ctx, store, "/", filetree.WithShowHidden(cfg.ShowHidden))
	if err != nil {
		return nil, err
	}
	engine := git.NewEngine(store,
		git.WithAuthor(cfg.GitAuthorName, cfg.GitAuthorEmail),
		git.WithDefaultBranch(cfg.DefaultBranch),
	)
	return &environment{
		cfg:      cfg,
		root:     root,
		stateDir: stateDirFunc(),
		store:    store,
		tree:     tree,
		git:      engine,
	}, nil
}

// stdout is where subcommands print their results.
func stdout(cmd *urfavecli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// stderr is where subcommands print progress and warnings.
func stderr(cmd *urfavecli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// requireArgs fails with the usage line unless exactly n arguments are given.
func requireArgs(cmd *urfavecli.Command, n int) error {
	if cmd.NArg() != n {
		return fmt.Errorf("usage: codecanvas %s %s", cmd.Name, cmd.ArgsUsage)
	}
	return nil
}

// closeLog flushes the debug log before the process exits.
func closeLog() {
	if err := log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing debug log: %v\n", err)
	}
}
