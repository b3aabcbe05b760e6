package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the emailsender application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "emailsender",
	Short: "Kubernetes operator that delivers Email resources through external providers",
	Long: `emailsender watches EmailSenderConfig and Email custom resources and
delivers each Email exactly once through the provider the referenced
config names (MailGun, MailerSend or Resend), recording the outcome in
the Email's status subresource.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that
	// are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This is called from the main package to inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "emailsender version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
