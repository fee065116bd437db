package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	urfavecli "github.com/urfave/cli/v3"

	"github.com/chmouel/codecanvas/internal/app/services"
	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/diffview"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/storage"
	"github.com/chmouel/codecanvas/internal/theme"
)

// initCommand returns the init subcommand definition.
func initCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "init",
		Usage:     "Initialise a repository on the default branch",
		ArgsUsage: "<repo>",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			env, err := openEnvironment(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			repo := storage.Clean(cmd.Args().First())
			if err := env.git.Init(ctx, repo); err != nil {
				return err
			}
			fmt.Fprintf(stdout(cmd), "Initialised repository in %s on %s\n", repo, env.git.CurrentBranch(ctx, repo))
			return nil
		},
	}
}

// statusCommand returns the status subcommand definition.
func statusCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "status",
		Usage:     "List files that differ from the last commit",
		ArgsUsage: "<repo>",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:  "matrix",
				Usage: "Print the raw HEAD/workdir/stage matrix",
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			env, err := openEnvironment(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			repo := storage.Clean(cmd.Args().First())
			if cmd.Bool("matrix") {
				rows, err := env.git.StatusMatrix(ctx, repo)
				if err != nil {
					return err
				}
				printMatrix(stdout(cmd), rows)
				return nil
			}
			return refreshAndPrintStatus(ctx, cmd, env, repo)
		},
	}
}

// refreshAndPrintStatus re-queries the status and prints it.
func refreshAndPrintStatus(ctx context.Context, cmd *urfavecli.Command, env *environment, repo string) error {
	files, err := env.git.RefreshStatus(ctx, repo)
	if err != nil {
		return err
	}
	staged := make(map[string]bool)
	for _, row := range env.git.Matrix() {
		staged[row.Path] = row.Staged()
	}
	printStatus(stdout(cmd), env.git.CurrentBranch(ctx, repo), files, staged)
	return nil
}

func printStatus(w io.Writer, branch string, files []models.GitFileStatus, staged map[string]bool) {
	fmt.Fprintf(w, "On branch %s\n", branch)
	if len(files) == 0 {
		fmt.Fprintln(w, "Working tree clean")
		return
	}
	for _, f := range files {
		mark := " "
		if staged[f.Path] {
			mark = "+"
		}
		name := f.Path
		if f.Status == models.StatusRenamed && f.OldPath != "" {
			name = f.OldPath + " -> " + f.Path
		}
		fmt.Fprintf(w, "%s%s %s\n", mark, f.Status.Short(), name)
	}
}

func printMatrix(w io.Writer, rows []models.StatusRow) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tHEAD\tWORKDIR\tSTAGE")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", row.Path, row.Head, row.Workdir, row.Stage)
	}
	_ = tw.Flush()
}

// stageCommand returns the stage subcommand definition.
func stageCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "stage",
		Aliases:   []string{"add"},
		Usage:     "Stage a file, or every change below a folder",
		ArgsUsage: "<repo> <path>",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return indexAction(ctx, cmd, true)
		},
	}
}

// unstageCommand returns the unstage subcommand definition.
func unstageCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "unstage",
		Aliases:   []string{"reset"},
		Usage:     "Reset a file in the index to its committed version",
		ArgsUsage: "<repo> <path>",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			return indexAction(ctx, cmd, false)
		},
	}
}

// indexAction stages or unstages one path, then prints the re-queried status.
func indexAction(ctx context.Context, cmd *urfavecli.Command, stage bool) error {
	if err := requireArgs(cmd, 2); err != nil {
		return err
	}
	env, err := openEnvironment(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	repo := storage.Clean(cmd.Args().Get(0))
	p := cmd.Args().Get(1)
	if err := env.git.Select(ctx, repo); err != nil {
		return err
	}
	if stage {
		err = env.git.Stage(ctx, p)
	} else {
		err = env.git.Unstage(ctx, p)
	}
	if err != nil {
		return err
	}
	return refreshAndPrintStatus(ctx, cmd, env, repo)
}

// commitCommand returns the commit subcommand definition.
func commitCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "commit",
		Usage:     "Record the staged changes",
		ArgsUsage: "<repo>",
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "Commit message",
			},
			&urfavecli.StringFlag{
				Name:  "author",
				Usage: "Override the author as \"Name <email>\"",
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			var author *models.Signature
			if raw := cmd.String("author"); raw != "" {
				sig, err := parseAuthor(raw)
				if err != nil {
					return err
				}
				author = &sig
			}
			env, err := openEnvironment(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			repo := storage.Clean(cmd.Args().First())
			if err := env.git.Select(ctx, repo); err != nil {
				return err
			}
			record, err := env.git.Commit(ctx, cmd.String("message"), author)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout(cmd), "[%s %s] %s\n", env.git.CurrentBranch(ctx, repo), record.ShortID(), firstLine(record.Message))
			return nil
		},
	}
}

// parseAuthor reads "Name <email>".
func parseAuthor(raw string) (models.Signature, error) {
	open := strings.LastIndex(raw, "<")
	end := strings.LastIndex(raw, ">")
	if open <= 0 || end < open {
		return models.Signature{}, apperr.Validation(apperr.CodeInvalidName, "author must look like \"Name <email>\"")
	}
	sig := models.Signature{
		Name:  strings.TrimSpace(raw[:open]),
		Email: strings.TrimSpace(raw[open+1 : end]),
	}
	if sig.Name == "" || sig.Email == "" {
		return models.Signature{}, apperr.Validation(apperr.CodeInvalidName, "author must look like \"Name <email>\"")
	}
	return sig, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// diffCommand returns the diff subcommand definition.
func diffCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "diff",
		Usage:     "Show a file against its last committed version",
		ArgsUsage: "<repo> <path>",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:  "color",
				Usage: "Colour the diff with the UI theme",
			},
			&urfavecli.BoolFlag{
				Name:  "no-pager",
				Usage: "Write to stdout even when it is a terminal",
			},
			&urfavecli.IntFlag{
				Name:  "context",
				Usage: "Lines of context around each change",
				Value: diffview.DefaultContext,
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if err := requireArgs(cmd, 2); err != nil {
				return err
			}
			env, err := openEnvironment(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			repo := storage.Clean(cmd.Args().Get(0))
			p := cmd.Args().Get(1)
			text, err := fileDiff(ctx, env, repo, p, int(cmd.Int("context")))
			if err != nil {
				return err
			}
			if text == "" {
				return nil
			}
			if cmd.Bool("color") {
				text = diffview.Colorize(text, theme.GetTheme(env.cfg.Theme))
			}
			if !cmd.Bool("no-pager") && isTerminal(stdout(cmd)) {
				return runPager(ctx, services.PagerCommand(env.cfg), text)
			}
			_, err = io.WriteString(stdout(cmd), text)
			return err
		},
	}
}

// fileDiff renders the unified diff of p. A file with no committed version
// is shown as entirely added.
func fileDiff(ctx context.Context, env *environment, repo, p string, contextLines int) (string, error) {
	d, err := env.git.Diff(ctx, repo, p)
	if err == nil {
		return diffview.Unified(d, contextLines), nil
	}
	if !apperr.Is(err, apperr.CodeNotFound) {
		return "", err
	}
	data, readErr := env.tree.ReadFile(storage.Join(repo, p))
	if readErr != nil {
		return "", readErr
	}
	return diffview.NewFile(p, string(data)), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// runPager pipes text through the configured pager.
func runPager(ctx context.Context, pager, text string) error {
	if pager == "" || pager == "cat" {
		_, err := io.WriteString(os.Stdout, text)
		return err
	}
	// #nosec G204 -- pager comes from the user's config or environment
	c := exec.CommandContext(ctx, "bash", "-c", pager)
	c.Stdin = strings.NewReader(text)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Env = append(os.Environ(), services.PagerEnv(pager)...)
	return c.Run()
}

// branchCommand returns the branch subcommand definition.
func branchCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "branch",
		Usage:     "Print the current branch",
		ArgsUsage: "<repo>",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			env, err := openEnvironment(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			repo := storage.Clean(cmd.Args().First())
			fmt.Fprintln(stdout(cmd), env.git.CurrentBranch(ctx, repo))
			return nil
		},
	}
}
