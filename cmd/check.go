package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/client-go/discovery"

	"emailsender/internal/cluster"
	emailsenderv1 "emailsender/pkg/apis/emailsender/v1"
)

// checkCmd represents the check command: a preflight that verifies the
// cluster is reachable and the operator's custom resource definitions are
// installed and served.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check cluster connectivity and installed CRDs",
	Long: `Check that the cluster is reachable with the ambient credentials and that
the EmailSenderConfig and Email custom resource definitions are installed
and served under ` + emailsenderv1.GroupVersion.String() + `.

Run this before 'emailsender serve' to diagnose setup problems.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	restConfig, err := cluster.GetRestConfig()
	if err != nil {
		return fmt.Errorf("failed to load cluster credentials: %w", err)
	}

	dc, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("failed to create discovery client: %w", err)
	}

	serverVersion, err := dc.ServerVersion()
	if err != nil {
		return fmt.Errorf("cluster unreachable: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cluster reachable (server version %s)\n", serverVersion.GitVersion)

	resources, err := dc.ServerResourcesForGroupVersion(emailsenderv1.GroupVersion.String())
	if err != nil {
		return fmt.Errorf("%s is not served, are the CRDs installed? %w", emailsenderv1.GroupVersion.String(), err)
	}

	served := make(map[string]bool, len(resources.APIResources))
	for _, res := range resources.APIResources {
		served[res.Name] = true
	}

	for _, plural := range []string{
		emailsenderv1.EmailSenderConfigResource.Resource,
		emailsenderv1.EmailResource.Resource,
	} {
		if !served[plural] {
			return fmt.Errorf("resource %q is not served under %s", plural, emailsenderv1.GroupVersion.String())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "CRD %s.%s installed\n", plural, emailsenderv1.GroupVersion.Group)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "All checks passed")
	return nil
}
