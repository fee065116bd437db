package bootstrap

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	urfavecli "github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/chmouel/codecanvas/internal/auth"
	"github.com/chmouel/codecanvas/internal/buildinfo"
	"github.com/chmouel/codecanvas/internal/completion"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/samples"
	"github.com/chmouel/codecanvas/internal/search"
	"github.com/chmouel/codecanvas/internal/storage"
)

// searchCommand returns the search subcommand definition.
func searchCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "search",
		Aliases:   []string{"grep"},
		Usage:     "Search file contents below the storage root",
		ArgsUsage: "<query>",
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:  "path",
				Usage: "Only search below this folder",
			},
			&urfavecli.BoolFlag{
				Name:    "case-sensitive",
				Aliases: []string{"s"},
				Usage:   "Match case exactly",
			},
			&urfavecli.BoolFlag{
				Name:    "whole-word",
				Aliases: []string{"w"},
				Usage:   "Only match whole words",
			},
			&urfavecli.BoolFlag{
				Name:    "regex",
				Aliases: []string{"e"},
				Usage:   "Treat the query as a regular expression",
			},
			&urfavecli.StringFlag{
				Name:  "include",
				Usage: "Comma separated path substrings to search",
			},
			&urfavecli.StringFlag{
				Name:  "exclude",
				Usage: "Comma separated path substrings to skip",
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

			opts := search.Options{
				CaseSensitive: cmd.Bool("case-sensitive") || env.cfg.SearchCaseSensitive,
				WholeWord:     cmd.Bool("whole-word") || env.cfg.SearchWholeWord,
				Regex:         cmd.Bool("regex") || env.cfg.SearchRegex,
				Include:       search.ParsePatterns(env.cfg.SearchInclude),
				Exclude:       search.ParsePatterns(env.cfg.SearchExclude),
				MaxFileSize:   env.cfg.SearchMaxFileSize,
			}
			if cmd.IsSet("include") {
				opts.Include = search.ParsePatterns(cmd.String("include"))
			}
			if cmd.IsSet("exclude") {
				opts.Exclude = search.ParsePatterns(cmd.String("exclude"))
			}
			if p := cmd.String("path"); p != "" {
				opts.Root = storage.Clean(p)
			}

			matches, err := search.Run(ctx, env.tree, cmd.Args().First(), opts)
			if err != nil {
				return err
			}
			printMatches(stdout(cmd), matches)
			return nil
		},
	}
}

// printMatches writes grep style path:line:content lines.
func printMatches(w io.Writer, matches []models.SearchMatch) {
	for _, m := range matches {
		for _, line := range m.Lines {
			fmt.Fprintf(w, "%s:%d:%s\n", m.Path, line.Line, line.Content)
		}
	}
}

// samplesCommand returns the samples subcommand definition.
func samplesCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "samples",
		Usage: "Browse the built-in code samples",
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Only list samples in this language",
			},
			&urfavecli.StringFlag{
				Name:    "category",
				Aliases: []string{"c"},
				Usage:   "Only list samples in this category",
			},
			&urfavecli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Only list samples whose title or description matches",
			},
			&urfavecli.StringFlag{
				Name:  "show",
				Usage: "Print the code of the sample with this id",
			},
		},
		Action: func(_ context.Context, cmd *urfavecli.Command) error {
			w := stdout(cmd)
			if id := cmd.String("show"); id != "" {
				sample, ok := samples.Get(id)
				if !ok {
					return fmt.Errorf("no sample with id %q", id)
				}
				fmt.Fprintf(w, "%s\n%s\n\n%s\n", sample.Title, sample.Description, sample.Code)
				return nil
			}
			printSamples(w, filterSamples(cmd.String("language"), cmd.String("category"), cmd.String("query")))
			return nil
		},
	}
}

// filterSamples applies every non-empty filter.
func filterSamples(language, category, query string) []models.CodeSample {
	list := samples.All()
	if query != "" {
		list = samples.Search(query)
	}
	out := make([]models.CodeSample, 0, len(list))
	for _, s := range list {
		if language != "" && !strings.EqualFold(s.Language, language) {
			continue
		}
		if category != "" && !strings.EqualFold(s.Category, category) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func printSamples(w io.Writer, list []models.CodeSample) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLANGUAGE\tCATEGORY\tTITLE")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Language, s.Category, s.Title)
	}
	_ = tw.Flush()
}

// readPasswordFunc prompts for a password.
var readPasswordFunc = readPassword

// readPassword reads a password without echo from a terminal, or one line
// from piped stdin.
func readPassword(prompt string) (string, error) {
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		// #nosec G115 -- file descriptors fit in an int
		data, err := term.ReadPassword(int(fd))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// openGate loads the configuration for logging and returns the auth gate
// over the state directory.
func openGate(cmd *urfavecli.Command) (*auth.Gate, error) {
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
	dir := stateDirFunc()
	return auth.NewGate(auth.NewLocalBackend(dir), auth.WithStateDir(dir)), nil
}

// authCommand returns the auth subcommand definition.
func authCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "auth",
		Usage: "Manage the signed in user",
		Commands: []*urfavecli.Command{
			{
				Name:      "signin",
				Aliases:   []string{"login"},
				Usage:     "Sign in with an existing account",
				ArgsUsage: "<email>",
				Action: func(ctx context.Context, cmd *urfavecli.Command) error {
					if err := requireArgs(cmd, 1); err != nil {
						return err
					}
					gate, err := openGate(cmd)
					if err != nil {
						return err
					}
					defer closeLog()

					password, err := readPasswordFunc("Password: ")
					if err != nil {
						return err
					}
					u, err := gate.SignIn(ctx, cmd.Args().First(), password)
					if err != nil {
						return err
					}
					fmt.Fprintf(stdout(cmd), "Signed in as %s <%s>\n", u.Name, u.Email)
					return nil
				},
			},
			{
				Name:      "signup",
				Aliases:   []string{"register"},
				Usage:     "Create an account and sign in",
				ArgsUsage: "<email>",
				Flags: []urfavecli.Flag{
					&urfavecli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Display name",
						Required: true,
					},
				},
				Action: func(ctx context.Context, cmd *urfavecli.Command) error {
					if err := requireArgs(cmd, 1); err != nil {
						return err
					}
					gate, err := openGate(cmd)
					if err != nil {
						return err
					}
					defer closeLog()

					password, err := readPasswordFunc("Password: ")
					if err != nil {
						return err
					}
					u, err := gate.SignUp(ctx, cmd.Args().First(), password, cmd.String("name"))
					if err != nil {
						return err
					}
					fmt.Fprintf(stdout(cmd), "Created account %s <%s>\n", u.Name, u.Email)
					return nil
				},
			},
			{
				Name:    "signout",
				Aliases: []string{"logout"},
				Usage:   "End the current session",
				Action: func(ctx context.Context, cmd *urfavecli.Command) error {
					gate, err := openGate(cmd)
					if err != nil {
						return err
					}
					defer closeLog()

					if !gate.IsAuthenticated() {
						fmt.Fprintln(stdout(cmd), "Not signed in")
						return nil
					}
					if err := gate.SignOut(ctx); err != nil {
						fmt.Fprintf(stderr(cmd), "Warning: %v\n", err)
					}
					fmt.Fprintln(stdout(cmd), "Signed out")
					return nil
				},
			},
			{
				Name:  "whoami",
				Usage: "Print the signed in user",
				Action: func(_ context.Context, cmd *urfavecli.Command) error {
					gate, err := openGate(cmd)
					if err != nil {
						return err
					}
					defer closeLog()

					session, ok := gate.Session()
					if !ok {
						return fmt.Errorf("not signed in")
					}
					fmt.Fprintf(stdout(cmd), "%s <%s> since %s\n",
						session.User.Name, session.User.Email, session.SignedInAt.Format("2006-01-02 15:04"))
					return nil
				},
			},
		},
	}
}

// versionCommand returns the version subcommand definition.
func versionCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(_ context.Context, cmd *urfavecli.Command) error {
			fmt.Fprintln(stdout(cmd), buildinfo.Get().String())
			return nil
		},
	}
}

// completionCommand returns the completion subcommand definition.
func completionCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "completion",
		Usage:     "Generate shell completion scripts",
		ArgsUsage: "<bash|zsh|fish>",
		Action: func(_ context.Context, cmd *urfavecli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("usage: codecanvas completion <%s>", strings.Join(completion.Shells(), "|"))
			}
			var names []string
			for _, sub := range cmd.Root().Commands {
				if !sub.Hidden {
					names = append(names, sub.Name)
				}
			}
			script, err := completion.Script(cmd.Args().First(), names)
			if err != nil {
				return err
			}
			_, err = io.WriteString(stdout(cmd), script)
			return err
		},
	}
}
