package bootstrap

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	urfavecli "github.com/urfave/cli/v3"

	"github.com/chmouel/codecanvas/internal/app"
	"github.com/chmouel/codecanvas/internal/buildinfo"
	"github.com/chmouel/codecanvas/internal/log"
	"github.com/chmouel/codecanvas/internal/watch"
	"github.com/chmouel/codecanvas/internal/workspace"
)

var logger = log.Component("bootstrap")

// runProgramFunc runs the TUI until the user quits.
var runProgramFunc = func(ctx context.Context, model tea.Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// NewCommand builds the root command with every subcommand attached.
func NewCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:    "codecanvas",
		Usage:   "A terminal workspace for code with a built-in git panel",
		Version: buildinfo.Version(),
		Flags:   globalFlags(),
		Commands: []*urfavecli.Command{
			treeCommand(),
			openCommand(),
			newEntryCommand(),
			rmCommand(),
			mvCommand(),
			initCommand(),
			statusCommand(),
			stageCommand(),
			unstageCommand(),
			commitCommand(),
			diffCommand(),
			branchCommand(),
			searchCommand(),
			samplesCommand(),
			authCommand(),
			versionCommand(),
			completionCommand(),
		},
		Action: runTUI,
	}
}

// Run parses args and executes the matching command.
func Run(ctx context.Context, args []string) error {
	return NewCommand().Run(ctx, args)
}

// runTUI is the default action that launches the TUI when no subcommand is given.
func runTUI(ctx context.Context, cmd *urfavecli.Command) error {
	if cmd.NArg() > 0 {
		return fmt.Errorf("unknown command %q, see codecanvas --help", cmd.Args().First())
	}
	env, err := openEnvironment(ctx, cmd)
	if err != nil {
		closeLog()
		return err
	}
	defer closeLog()

	state := workspace.Load(env.stateDir, env.cfg.RecentFilesLimit)
	state.Tabs.Reload(env.store)

	var watcher *watch.Service
	if env.cfg.AutoRefresh {
		watcher = watch.New()
	}
	model := app.NewModel(env.cfg, app.Deps{
		Store:   env.store,
		Tree:    env.tree,
		Git:     env.git,
		State:   state,
		Watcher: watcher,
	})
	logger.Debugf("starting UI on %s", env.root)

	err = runProgramFunc(ctx, model)
	model.Close()
	if saveErr := state.Save(env.stateDir); saveErr != nil {
		logger.Warnf("save workspace state: %v", saveErr)
		fmt.Fprintf(stderr(cmd), "Error saving workspace state: %v\n", saveErr)
	}
	if err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
