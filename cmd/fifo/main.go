// Command fifo prints the library identification banner and runs the
// built-in self-test, mirroring the behavior of the reference tool.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/howerj/fifo/pkg/fifo"
	"github.com/howerj/fifo/pkg/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		logLevel string
		logFile  string
	)

	root := &cobra.Command{
		Use:           "fifo",
		Short:         fifo.Project,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lg := logger.New(logger.Config{LogLevel: logLevel, FileLogName: logFile})
			defer lg.Sync()
			return selfTest(cmd.OutOrStdout(), lg)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "duplicate logs to this file with rotation")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print the identification banner",
		Run: func(cmd *cobra.Command, _ []string) {
			printBanner(cmd.OutOrStdout())
		},
	})

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func selfTest(out io.Writer, lg *zap.Logger) error {
	printBanner(out)

	start := time.Now()
	err := fifo.SelfTest()
	elapsed := time.Since(start)

	if err != nil {
		lg.Error("self-test failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		fmt.Fprintln(out, "FIFO UNIT TESTS FAIL")
		return err
	}

	lg.Info("self-test passed", zap.Duration("elapsed", elapsed))
	fmt.Fprintln(out, "FIFO UNIT TESTS PASS")
	return nil
}

func printBanner(out io.Writer) {
	fmt.Fprintf(out, "\nProject: %s\nVersion: %s\nAuthor:  %s\nLicense: %s\nEmail:   %s\nRepo:    %s\n\n",
		fifo.Project, fifo.Version, fifo.Author, fifo.License, fifo.Email, fifo.Repo)
}
