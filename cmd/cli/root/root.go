package root

import (
	"github.com/spf13/cobra"
)

// RootCmd is the top-level command; subcommand packages attach to it in init.
var RootCmd = &cobra.Command{
	Use:           "users",
	Short:         "Users API CLI",
	Long:          "Command line interface for the users CRUD API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// GetRoot returns the RootCmd.
func GetRoot() *cobra.Command {
	return RootCmd
}
