// Package cli wires gitlet's commands to the repository operations.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/config"
	"github.com/systemshift/gitlet/internal/errs"
	"github.com/systemshift/gitlet/internal/logging"
	"github.com/systemshift/gitlet/internal/repo"
)

var (
	errNoCommand      = errs.New(errs.KindIncorrectOperands, "Please enter a command.")
	errUnknownCommand = errs.New(errs.KindIncorrectOperands, "No command with that name exists.")
)

// env is the per-invocation state shared by all commands.
type env struct {
	args      []string // command line as given, for verbatim commands
	verbosity int
	chdir     string

	root     string
	cfg      *config.Config
	operands []string
	helpErr  error
}

// Execute runs gitlet with args and returns the process exit code.
func Execute(args []string) int {
	// Quiet until setup has read -v and the repository config; flag and
	// help errors are reported before that happens.
	logging.SetupLogger(0, "")

	e := &env{args: args}
	rootCmd := newRootCmd(e)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		err = e.helpErr
	}
	if err != nil {
		log.Debug().Err(err).Str("kind", string(errs.KindOf(err))).Msg("Command failed")
		fmt.Fprintln(os.Stderr, errs.Message(err))
		return 1
	}
	return 0
}

// newRootCmd creates the gitlet command tree around e.
func newRootCmd(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gitlet",
		Short: "A tiny version-control system",
		Long: `gitlet keeps snapshots of the files in a directory, with branches,
a staging area and a commit history stored under .gitlet/.`,
		Args: cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.DisableFlagParsing {
				ops, err := e.verbatim(cmd)
				if err != nil {
					return err
				}
				e.operands = ops
			}
			return e.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errNoCommand
			}
			return errUnknownCommand
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&e.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVarP(&e.chdir, "dir", "C", "", "Run as if gitlet was started in this directory")
	rootCmd.SetFlagErrorFunc(func(*cobra.Command, error) error {
		return errs.ErrIncorrectOperands
	})

	// gitlet has no help surface: "help" is an unknown command and -h is
	// an unexpected operand.
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "help",
		Hidden: true,
		Args:   cobra.ArbitraryArgs,
		RunE: func(*cobra.Command, []string) error {
			return errUnknownCommand
		},
	})
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		if cmd == rootCmd {
			e.helpErr = errUnknownCommand
			return
		}
		e.helpErr = errs.ErrIncorrectOperands
	})

	rootCmd.AddCommand(
		newInitCmd(e),
		newAddCmd(e),
		newCommitCmd(e),
		newRmCmd(e),
		newLogCmd(e),
		newGlobalLogCmd(e),
		newFindCmd(e),
		newStatusCmd(e),
		newCheckoutCmd(e),
		newBranchCmd(e),
		newRmBranchCmd(e),
		newResetCmd(e),
		newMergeCmd(e),
		newMountCmd(e),
	)
	return rootCmd
}

// setup resolves the working directory, loads its configuration and
// configures logging.
func (e *env) setup(cmd *cobra.Command) error {
	dir := e.chdir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errs.Wrap(err, errs.KindInternal, "cannot determine working directory")
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errs.Wrap(err, errs.KindInternal, "cannot resolve directory")
	}
	e.root = abs

	cfg, err := config.Load(filepath.Join(abs, repo.GitletDir))
	if err != nil {
		return errs.Wrap(err, errs.KindInternal, "cannot load configuration")
	}
	e.cfg = cfg

	verbosity := e.verbosity
	if cfg.Log.Level > verbosity {
		verbosity = cfg.Log.Level
	}
	logging.SetupLogger(verbosity, cfg.Log.File)
	log.Debug().Str("command", cmd.Name()).Str("root", abs).Msg("Command started")
	return nil
}

// open loads the repository for a read-only command.
func (e *env) open() (*repo.Repository, error) {
	return repo.Open(e.root, repo.WithConfig(e.cfg))
}

// mutate opens the repository, runs fn and saves the result. Nothing is
// saved if fn fails.
func (e *env) mutate(fn func(r *repo.Repository) error) error {
	r, err := e.open()
	if err != nil {
		return err
	}
	if err := fn(r); err != nil {
		return err
	}
	return r.Save()
}

// verbatim returns the operands of a command that disables flag parsing,
// taken exactly as given after the command name. Anything before the name
// is parsed as gitlet's global flags.
func (e *env) verbatim(cmd *cobra.Command) ([]string, error) {
	args := e.args
	if args == nil {
		// cobra falls back the same way
		args = os.Args[1:]
	}
	flags := cmd.Root().PersistentFlags()
	flags.SetInterspersed(false)
	if err := flags.Parse(args); err != nil {
		return nil, errs.ErrIncorrectOperands
	}
	rest := flags.Args()
	if len(rest) == 0 || rest[0] != cmd.Name() {
		return nil, errs.ErrIncorrectOperands
	}
	return rest[1:], nil
}

// operand returns the single verbatim operand of cmd.
func (e *env) operand() (string, error) {
	if len(e.operands) != 1 {
		return "", errs.ErrIncorrectOperands
	}
	return e.operands[0], nil
}

// exactArgs is cobra.ExactArgs with gitlet's error message.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errs.ErrIncorrectOperands
		}
		return nil
	}
}
