package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kartoza/crop-advisor/internal/advisor"
	"github.com/kartoza/crop-advisor/internal/artifacts"
	"github.com/kartoza/crop-advisor/internal/config"
	"github.com/kartoza/crop-advisor/internal/features"
	"github.com/kartoza/crop-advisor/internal/logging"
	"github.com/kartoza/crop-advisor/internal/server"
	"github.com/kartoza/crop-advisor/internal/window"
)

var version = "dev"

var (
	configPath   string
	port         int
	portAttempts int
	openWindow   bool
	packDir      string
	packOut      string
)

var rootCmd = &cobra.Command{
	Use:           "crop-advisor",
	Short:         "Crop recommendation from soil and climate readings",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recommendation form over HTTP",
	RunE:  runServe,
}

var predictCmd = &cobra.Command{
	Use:   "predict N P K temperature humidity ph rainfall",
	Short: "Print a recommendation for one set of readings",
	Args:  cobra.ExactArgs(features.Count),
	RunE:  runPredict,
}

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Pack an artifact directory into a read-only SQLite bundle",
	RunE:  runPack,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("crop-advisor v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the YAML configuration file")

	serveCmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	serveCmd.Flags().IntVar(&portAttempts, "port-attempts", 1, "Try this many consecutive ports if the first is taken")
	serveCmd.Flags().BoolVar(&openWindow, "window", false, "Open the form in a desktop window (needs a webview build)")

	// negative readings such as -5 degrees must not be parsed as flags
	predictCmd.Flags().SetInterspersed(false)

	packCmd.Flags().StringVar(&packDir, "dir", "./models", "Directory holding the exported artifacts")
	packCmd.Flags().StringVar(&packOut, "out", "./models/bundle.db", "Bundle file to write")

	rootCmd.AddCommand(serveCmd, predictCmd, packCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and builds the logger
func loadConfig() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, err
	}
	cfg.Version = version

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if port > 0 {
		cfg.Port = port
	}

	availablePort, err := findAvailablePort(cfg.Port, portAttempts)
	if err != nil {
		return err
	}
	if availablePort != cfg.Port {
		logger.Info("Port in use, using next free port", zap.Int("requested", cfg.Port), zap.Int("port", availablePort))
		cfg.Port = availablePort
	}

	logger.Info("Crop advisor starting", zap.String("version", version), zap.Int("port", cfg.Port))

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	if openWindow && !window.Available {
		logger.Warn("Built without window support, serving headless. Rebuild with -tags webview")
		openWindow = false
	}

	if !openWindow {
		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-stop:
			logger.Info("Shutting down", zap.Stringer("signal", sig))
			if err := srv.Stop(); err != nil {
				logger.Error("Error during shutdown", zap.Error(err))
			}
		}
		return nil
	}

	serverURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
	if err := window.WaitForServer(context.Background(), serverURL, 10*time.Second); err != nil {
		logger.Warn("Server may not be ready", zap.Error(err))
	}

	// Closing done terminates the window
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case err := <-errCh:
			if err != nil {
				logger.Error("Server error", zap.Error(err))
			}
		case sig := <-stop:
			logger.Info("Shutting down", zap.Stringer("signal", sig))
		}
	}()

	logger.Info("Opening application window", zap.String("url", serverURL))
	if err := window.Run(window.DefaultOptions(serverURL), done); err != nil {
		logger.Error("Window error", zap.Error(err))
	}

	logger.Info("Window closed, shutting down server")
	if err := srv.Stop(); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	return nil
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	v, err := features.ParseStrings(args)
	if err != nil {
		return printResult(cmd, "", err)
	}

	// The all-zero vector needs no model
	bundle, loadErr := cfg.LoadArtifacts()
	defer bundle.Close()

	adv, err := advisor.New(bundle, advisor.Options{Logger: logger, LoadErr: loadErr})
	if err != nil {
		return err
	}

	rec, err := adv.Recommend(context.Background(), v)
	return printResult(cmd, rec.Message, err)
}

// printResult prints what the form would show. Only non-validation
// failures make the command fail.
func printResult(cmd *cobra.Command, result string, err error) error {
	var verr *features.ValidationError
	switch {
	case err == nil:
		fmt.Fprintln(cmd.OutOrStdout(), result)
		return nil
	case errors.As(err, &verr):
		fmt.Fprintln(cmd.OutOrStdout(), verr.Error())
		return nil
	default:
		return fmt.Errorf("An error occurred: %w", err)
	}
}

func runPack(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := artifacts.PackSQLite(packDir, cfg.Artifacts.Names, packOut); err != nil {
		return err
	}
	logger.Info("Wrote artifact bundle", zap.String("dir", packDir), zap.String("out", packOut))
	return nil
}

// findAvailablePort finds an available port, starting from the given port.
// If the port is in use, it tries subsequent ports up to maxAttempts times.
func findAvailablePort(startPort int, maxAttempts int) (int, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	for i := 0; i < maxAttempts; i++ {
		port := startPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port found after %d attempts starting from %d", maxAttempts, startPort)
}
