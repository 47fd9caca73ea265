// Command magnify runs the Eulerian video magnification engine over an image
// sequence and reports pyramid and buffer sizing for a video format.
//
// Usage:
//
//	magnify run --input frames/ --output out/ --mode color --fps 30
//	magnify run --input frames/ --output out/ --preset pulse.yaml
//	magnify levels 640x480
//	magnify buffer-size 30
//	magnify preset --mode laplace --out motion.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	logLevel string
	logJSON  bool
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "magnify",
		Short:         "Amplify subtle colour and motion changes in video",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging(opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Emit logs as JSON")

	root.AddCommand(
		newRunCommand(),
		newLevelsCommand(),
		newBufferSizeCommand(),
		newPresetCommand(),
	)
	return root
}

func configureLogging(opts *globalOptions) error {
	level, err := logrus.ParseLevel(opts.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.logLevel, err)
	}
	logrus.SetLevel(level)
	if opts.logJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// setupSignalHandling cancels the context on the first interrupt.
func setupSignalHandling(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"signal":   sig.String(),
		}).Warn("Received signal, stopping")
		cancel()
	}()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "magnify: %v\n", err)
		os.Exit(1)
	}
}
