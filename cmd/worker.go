package cmd

import (
	"loans/worker"
	"loans/worker/keeper"
	"loans/worker/payee"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "loans job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		system := provideSystem()
		eng := provideEngine(database)
		gateway := provideGateway()

		checkpoints := provideCheckpointStore(database)
		outputStore := provideOutputStore(database)

		keep := keeper.New(system, eng, cfg.App.Location)
		keep.Start()
		defer keep.Stop()

		workers := []worker.Worker{
			payee.New(system, checkpoints, outputStore, eng, gateway),
		}

		var g errgroup.Group
		for _, w := range workers {
			w := w
			g.Go(func() error {
				return w.Run(ctx)
			})
		}

		if err := g.Wait(); err != nil {
			log.WithError(err).Errorln("worker exit")
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
