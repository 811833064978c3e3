package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	gitletfuse "github.com/systemshift/gitlet/internal/fuse"
	"github.com/systemshift/gitlet/internal/repo"
)

func newMountCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "mount <dir>",
		Short: "Mount a read-only view of branches, commits and logs",
		Long: `mount serves the repository as a read-only FUSE filesystem until
interrupted. Branch and commit directories contain the files of the
corresponding snapshot; log, global-log and ACTIVE mirror the repository.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := repo.NewView(e.root)
			if err != nil {
				return err
			}
			mountpoint := args[0]
			if err := os.MkdirAll(mountpoint, 0755); err != nil {
				return errors.Wrap(err, "create mountpoint")
			}

			server, err := gitletfuse.MountFS(mountpoint, view, e.verbosity >= 3)
			if err != nil {
				return errors.Wrap(err, "mount failed")
			}

			done := make(chan os.Signal, 1)
			signal.Notify(done, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-done
				log.Info().Msg("Unmounting")
				if err := server.Unmount(); err != nil {
					log.Warn().Err(err).Msg("Unmount failed")
				}
			}()

			log.Info().Str("mountpoint", mountpoint).Int("pid", os.Getpid()).Msg("Mounted")
			server.Wait()
			return nil
		},
	}
}
