// cmd/gitlet/main.go
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"gitlet/internal/repo"
	"gitlet/internal/vcslog"
	"gitlet/internal/watch"
)

var sessionID = uuid.NewString()
var logger *vcslog.Logger

var rootCmd = &cobra.Command{
	Use:   "gitlet",
	Short: "Gitlet is a local, single-user version-control engine",
}

func main() {
	var err error
	logger, err = vcslog.New("info", sessionID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if len(os.Args) < 2 {
		fmt.Println("Please enter a command.")
		return
	}

	if !knownCommand(os.Args[1]) {
		fmt.Println("No command with that name exists.")
		return
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func knownCommand(name string) bool {
	for _, c := range rootCmd.Commands() {
		if c.Name() == name {
			return true
		}
	}
	return false
}

// requireRepo opens the repository rooted at the current directory,
// printing the exact "Not in an initialized Gitlet directory." and
// returning ok=false if none exists. init is the only command that
// skips this check (§6).
func requireRepo() (*repo.Repository, bool) {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
	r, out := repo.Open(dir, logger)
	if out.IsUserError() {
		fmt.Println(out.Message)
		return nil, false
	}
	if out.IsFatal() {
		fmt.Println("fatal:", out.Err)
		os.Exit(1)
	}
	return r, true
}

// render prints an Outcome the way Design Note §9's result-variant model
// intends: UserError and Ok messages both go to stdout; Fatal exits 1.
func render(out repo.Outcome) {
	switch out.Kind {
	case repo.KindOk:
		if out.Message != "" {
			fmt.Print(out.Message)
			if out.Message[len(out.Message)-1] != '\n' {
				fmt.Println()
			}
		}
	case repo.KindUserError:
		fmt.Println(out.Message)
	case repo.KindFatal:
		fmt.Println("fatal:", out.Err)
		os.Exit(1)
	}
}

func init() {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new Gitlet repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			_, out := repo.Init(dir, logger)
			render(out)
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Stage a file for the next commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := requireRepo()
			if !ok {
				return nil
			}
			render(r.Add(args[0]))
			return nil
		},
	}

	commitCmd := &cobra.Command{
		Use:   "commit <message>",
		Short: "Record a new commit from the staging area",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := requireRepo()
			if !ok {
				return nil
			}
			message := ""
			if len(args) == 1 {
				message = args[0]
			}
			render(r.Commit(message))
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <file>",
		Short: "Unstage a file, deleting it if tracked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := requireRepo()
			if !ok {
				return nil
			}
			render(r.Rm(args[0]))
			return nil
		},
	}

	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Print commit history from HEAD along first-parent",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := requireRepo()
			if !ok {
				return nil
			}
			render(r.Log())
			return nil
		},
	}

	globalLogCmd := &cobra.Command{
		Use:   "global-log",
		Short: "Print every commit in the repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := requireRepo()
			if !ok {
				return nil
			}
			render(r.GlobalLog())
			return nil
		},
	}

	findCmd := &cobra.Command{
		Use:   "find <message>",
		Short: "Print the ids of commits with an exact message match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := requireRepo()
			if !ok {
				return nil
			}
			render(r.Find(args[0]))
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the staging area and working tree status",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := requireRepo()
			if !ok {
				return nil
			}
			out := r.Status()
			if out.IsOk() {
				printColoredStatus(out.Message)
				return nil
			}
			render(out)
			return nil
		},
	}

	branchCmd := &cobra.Command{
		Use:   "branch <name>",
		Short: "Create a new branch pointing at HEAD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := requireRepo()
			if !ok {
				return nil
			}
			render(r.BranchCreate(args[0]))
			return nil
		},
	}

	rmBranchCmd := &cobra.Command{
		Use:   "rm-branch <name>",
		Short: "Delete a branch reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := requireRepo()
			if !ok {
				return nil
			}
			render(r.BranchRemove(args[0]))
			return nil
		},
	}

	checkoutCmd := &cobra.Command{
		Use:   "checkout [-- <file> | <commit-id> -- <file> | <branch>]",
		Short: "Restore a file or switch branches",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := requireRepo()
			if !ok {
				return nil
			}
			render(runCheckout(r, args))
			return nil
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset <commit-id>",
		Short: "Move the current branch's tip to a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := requireRepo()
			if !ok {
				return nil
			}
			render(r.Reset(args[0]))
			return nil
		},
	}

	mergeCmd := &cobra.Command{
		Use:   "merge <branch>",
		Short: "Three-way merge a branch into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := requireRepo()
			if !ok {
				return nil
			}
			render(r.Merge(args[0]))
			return nil
		},
	}

	splitCmd := &cobra.Command{
		Use:   "split <commit-id> <commit-id>",
		Short: "Print the split (nearest common ancestor) commit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := requireRepo()
			if !ok {
				return nil
			}
			render(r.Split(args[0], args[1]))
			return nil
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run status on every working-tree change",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := requireRepo()
			if !ok {
				return nil
			}
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			w, err := watch.New(dir, logger.Logger, func() {
				out := r.Status()
				if out.IsOk() {
					printColoredStatus(out.Message)
				}
			})
			if err != nil {
				return err
			}
			defer w.Close()
			w.Run()
			return nil
		},
	}

	rootCmd.AddCommand(initCmd, addCmd, commitCmd, rmCmd, logCmd, globalLogCmd,
		findCmd, statusCmd, branchCmd, rmBranchCmd, checkoutCmd, resetCmd,
		mergeCmd, splitCmd, watchCmd)
}

// runCheckout dispatches the three checkout variants by operand shape
// (§4.8), returning "Incorrect operands." for anything else.
func runCheckout(r *repo.Repository, args []string) repo.Outcome {
	switch {
	case len(args) == 2 && args[0] == "--":
		return r.CheckoutFile(args[1])
	case len(args) == 3 && args[1] == "--":
		return r.CheckoutFileFromCommit(args[0], args[2])
	case len(args) == 1:
		return r.CheckoutBranch(args[0])
	default:
		return repo.UserErr("Incorrect operands.")
	}
}

func printColoredStatus(status string) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	blue := color.New(color.FgBlue).SprintFunc()

	section := ""
	for _, line := range splitLinesKeepTrailing(status) {
		switch line {
		case "=== Branches ===", "=== Staged Files ===", "=== Removed Files ===",
			"=== Modifications Not Staged For Commit ===", "=== Untracked Files ===":
			section = line
			fmt.Println(line)
			continue
		}
		switch section {
		case "=== Staged Files ===":
			if line != "" {
				fmt.Println(green(line))
				continue
			}
		case "=== Removed Files ===":
			if line != "" {
				fmt.Println(red(line))
				continue
			}
		case "=== Modifications Not Staged For Commit ===":
			if line != "" {
				fmt.Println(yellow(line))
				continue
			}
		case "=== Untracked Files ===":
			if line != "" {
				fmt.Println(blue(line))
				continue
			}
		}
		fmt.Println(line)
	}
}

func splitLinesKeepTrailing(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
