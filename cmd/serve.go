package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"emailsender/internal/cluster"
	"emailsender/internal/config"
	"emailsender/internal/controller"
	"emailsender/internal/sender"
	"emailsender/pkg/logging"
)

// serveDebug enables verbose logging across the application regardless of
// the configured log level.
var serveDebug bool

// serveNamespace restricts watching to one namespace, overriding the
// configured one. Empty watches all namespaces.
var serveNamespace string

// serveConfigPath specifies a custom configuration directory path.
// The directory should contain config.yaml.
var serveConfigPath string

// serveCmd defines the serve command structure.
// This is the main command of emailsender: it starts the operator and runs
// until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the email-sender operator",
	Long: `Starts the operator: watches EmailSenderConfig and Email custom resources
in the cluster and delivers each Email through the provider its config
references, recording the delivery outcome in the Email's status.

Configuration:
  emailsender loads config.yaml from ~/.config/emailsender by default.
  Use --config-path to load it from a different directory. Missing file
  or keys fall back to built-in defaults.

The operator needs cluster credentials the way kubectl finds them: an
in-cluster service account, a KUBECONFIG environment variable, or
~/.kube/config.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command.
func runServe(cmd *cobra.Command, args []string) error {
	configPath := serveConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		// Logging is not configured yet at this point.
		logging.Fallback().Error("Failed to load configuration", "path", configPath, "error", err)
		return err
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if serveDebug {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)

	namespace := cfg.Namespace
	if serveNamespace != "" {
		namespace = serveNamespace
	}

	restConfig, err := cluster.GetRestConfig()
	if err != nil {
		return fmt.Errorf("failed to load cluster credentials: %w", err)
	}

	client, err := cluster.New(restConfig)
	if err != nil {
		return fmt.Errorf("failed to create cluster client: %w", err)
	}

	registry := sender.NewRegistry(client)

	manager := controller.NewManager(controller.ManagerConfig{
		Namespace:        namespace,
		WorkerCount:      cfg.Controller.Workers,
		MaxRetries:       cfg.Controller.MaxRetries,
		RetryBackoff:     cfg.Controller.RetryBackoff(),
		ReconcileTimeout: cfg.Controller.HandlerTimeout(),
	})
	manager.SetDetector(controller.NewKubernetesDetector(restConfig, namespace))

	if err := manager.RegisterReconciler(controller.NewSenderConfigReconciler(registry)); err != nil {
		return err
	}
	if err := manager.RegisterReconciler(controller.NewEmailReconciler(client, registry)); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start operator: %w", err)
	}

	logging.Info("Bootstrap", "Operator running, providers: %v", registry.Keys())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info("Bootstrap", "Received signal %s, shutting down", sig)
	case <-ctx.Done():
	}

	return manager.Stop()
}

// init registers the serve command and its flags with the root command.
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable general debug logging")
	serveCmd.Flags().StringVar(&serveNamespace, "namespace", "", "Watch a single namespace (default: all namespaces)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Custom configuration directory path")
}
