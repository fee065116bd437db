package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/chmouel/codecanvas/internal/filetree"
	"github.com/chmouel/codecanvas/internal/language"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/storage"
	"github.com/chmouel/codecanvas/internal/workspace"
)

// treeCommand returns the tree subcommand definition.
func treeCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "tree",
		Usage:     "Print the workspace file tree",
		ArgsUsage: "[path]",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Include hidden entries",
			},
			&urfavecli.BoolFlag{
				Name:  "icons",
				Usage: "Prefix entries with Nerd Font icons",
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			env, err := openEnvironment(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			if cmd.Bool("all") {
				env.tree.SetShowHidden(true)
			}
			root := "/"
			if cmd.NArg() > 0 {
				root = storage.Clean(cmd.Args().First())
			}
			return printTree(ctx, stdout(cmd), env.tree, root, cmd.Bool("icons"))
		},
	}
}

// printTree writes root and everything below it, indented by depth.
func printTree(ctx context.Context, w io.Writer, tree *filetree.Model, root string, icons bool) error {
	info, err := tree.Stat(root)
	if err != nil {
		return err
	}
	if info.Kind != models.KindDirectory {
		return fmt.Errorf("not a directory: %s", root)
	}
	fmt.Fprintln(w, root)
	return tree.Walk(ctx, root, func(node *models.FileNode) error {
		rel, ok := storage.Rel(root, node.Path)
		if !ok {
			return nil
		}
		depth := strings.Count(rel, "/")
		name := node.Name
		if node.IsDir() {
			name += "/"
		}
		if icons {
			name = language.Icon(node.Name, node.IsDir()) + " " + name
		}
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth+1), name)
		return nil
	})
}

// openCommand returns the open subcommand definition.
func openCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "open",
		Aliases:   []string{"cat"},
		Usage:     "Print a file and add it to the recent files",
		ArgsUsage: "<path>",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			env, err := openEnvironment(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			p := storage.Clean(cmd.Args().First())
			info, err := env.tree.Stat(p)
			if err != nil {
				return err
			}
			doc, err := env.tree.OpenFile(ctx, &models.FileNode{Name: storage.Base(p), Path: p, Kind: info.Kind})
			if err != nil {
				return err
			}

			state := workspace.Load(env.stateDir, env.cfg.RecentFilesLimit)
			state.Recent.Touch(doc.Path)
			if err := state.Save(env.stateDir); err != nil {
				logger.Warnf("save recent files: %v", err)
			}

			_, err = io.WriteString(stdout(cmd), doc.Content)
			return err
		},
	}
}

// newEntryCommand returns the new subcommand definition.
func newEntryCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "new",
		Usage:     "Create an empty file or a folder",
		ArgsUsage: "<parent> <name>",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Create a folder instead of a file",
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

			kind := models.KindFile
			if cmd.Bool("dir") {
				kind = models.KindDirectory
			}
			node, err := env.tree.CreateEntry(ctx, storage.Clean(cmd.Args().Get(0)), cmd.Args().Get(1), kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout(cmd), "Created %s %s\n", kind, node.Path)
			return nil
		},
	}
}

// rmCommand returns the rm subcommand definition.
func rmCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "rm",
		Usage:     "Delete a file or a folder with its contents",
		ArgsUsage: "<path>",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			env, err := openEnvironment(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			p := storage.Clean(cmd.Args().First())
			if p == "/" {
				return fmt.Errorf("refusing to delete the workspace root")
			}
			if err := env.tree.Delete(ctx, p); err != nil {
				return err
			}
			forgetPath(env, p)
			fmt.Fprintf(stdout(cmd), "Deleted %s\n", p)
			return nil
		},
	}
}

// mvCommand returns the mv subcommand definition.
func mvCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "mv",
		Usage:     "Rename or move a file or a folder",
		ArgsUsage: "<old> <new>",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if err := requireArgs(cmd, 2); err != nil {
				return err
			}
			env, err := openEnvironment(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			oldPath := storage.Clean(cmd.Args().Get(0))
			newPath := storage.Clean(cmd.Args().Get(1))
			if err := filetree.ValidateName(storage.Base(newPath)); err != nil {
				return err
			}
			if err := env.tree.Rename(ctx, oldPath, newPath); err != nil {
				return err
			}
			forgetPath(env, oldPath)
			fmt.Fprintf(stdout(cmd), "Renamed %s to %s\n", oldPath, newPath)
			return nil
		},
	}
}

// forgetPath drops persisted tabs, recent files and bookmarks at or below p.
func forgetPath(env *environment, p string) {
	state := workspace.Load(env.stateDir, env.cfg.RecentFilesLimit)
	under := func(candidate string) bool {
		_, ok := storage.Rel(p, candidate)
		return ok
	}
	for _, tab := range state.Tabs.List() {
		if under(tab.Path) {
			state.Tabs.Close(tab.ID)
		}
	}
	for _, recent := range state.Recent.List() {
		if under(recent) {
			state.Recent.Remove(recent)
		}
	}
	for _, mark := range state.Bookmarks.List() {
		if under(mark) {
			state.Bookmarks.Toggle(mark)
		}
	}
	if err := state.Save(env.stateDir); err != nil {
		logger.Warnf("save workspace state: %v", err)
	}
}
