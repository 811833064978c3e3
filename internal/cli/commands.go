package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/errs"
	"github.com/systemshift/gitlet/internal/repo"
)

func newInitCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new repository in the current directory",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := repo.Init(e.root, repo.WithConfig(e.cfg))
			return err
		},
	}
}

func newAddCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>",
		Short: "Stage a file for the next commit",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutate(func(r *repo.Repository) error {
				return r.Add(args[0])
			})
		},
	}
}

func newCommitCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:                "commit <message>",
		Short:              "Record the staged changes",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := e.operand()
			if err != nil {
				return err
			}
			return e.mutate(func(r *repo.Repository) error {
				_, err := r.Commit(msg)
				return err
			})
		},
	}
}

func newRmCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file>",
		Short: "Unstage a file, or stop tracking it and delete it",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutate(func(r *repo.Repository) error {
				return r.Remove(args[0])
			})
		},
	}
}

func newLogCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the history of the current branch",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := e.open()
			if err != nil {
				return err
			}
			text, err := r.Log()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newGlobalLogCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "global-log",
		Short: "Show every commit ever made",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := e.open()
			if err != nil {
				return err
			}
			text, err := r.GlobalLog()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newFindCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:                "find <message>",
		Short:              "Print the ids of all commits with the given message",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := e.operand()
			if err != nil {
				return err
			}
			r, err := e.open()
			if err != nil {
				return err
			}
			ids, err := r.Find(msg)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show branches, staged changes and untracked files",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := e.open()
			if err != nil {
				return err
			}
			st, err := r.Status()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), st.String())
			return nil
		},
	}
}

func newCheckoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout (-- <file> | <commit> -- <file> | <branch>)",
		Short: "Restore a file or switch branches",
		Example: `  gitlet checkout -- notes.txt
  gitlet checkout 3fa2c1b -- notes.txt
  gitlet checkout feature`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash := cmd.ArgsLenAtDash()
			return e.mutate(func(r *repo.Repository) error {
				switch {
				case dash == 0 && len(args) == 1:
					return r.CheckoutFile(args[0])
				case dash == 1 && len(args) == 2:
					return r.CheckoutFileAt(args[0], args[1])
				case dash == -1 && len(args) == 1:
					return r.CheckoutBranch(args[0])
				default:
					return errs.ErrIncorrectOperands
				}
			})
		},
	}
}

func newBranchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "branch <name>",
		Short: "Create a branch at the current commit",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutate(func(r *repo.Repository) error {
				return r.Branch(args[0])
			})
		},
	}
}

func newRmBranchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-branch <name>",
		Short: "Delete a branch pointer",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutate(func(r *repo.Repository) error {
				return r.RemoveBranch(args[0])
			})
		},
	}
}

func newResetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <commit>",
		Short: "Move the current branch to a commit and check it out",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutate(func(r *repo.Repository) error {
				return r.Reset(args[0])
			})
		},
	}
}

func newMergeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current one (not supported)",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutate(func(r *repo.Repository) error {
				return r.Merge(args[0])
			})
		},
	}
}
