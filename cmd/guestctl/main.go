// guestctl talks to the hosted backend from a terminal: quota checks,
// manual submissions, and the admin bootstrap chores.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"inviteform/internal/shared/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "guestctl",
	Short: "Operate invite forms from the command line",
	Long: `guestctl reads the same environment as the server (.env is loaded when present).

Available subcommands:
  quota         - Show the remaining invitations for a registration code
  submit        - Register guests for a registration code
  hash-password - Print a bcrypt hash for ADMIN_PASSWORD_HASH
  migrate       - Create the submissions audit table`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		cfg = config.Load()
	},
}

func init() {
	rootCmd.AddCommand(quotaCmd, submitCmd, hashPasswordCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
