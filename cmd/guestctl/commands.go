package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"inviteform/internal/backend"
	"inviteform/internal/guests"
	"inviteform/internal/i18n"
	"inviteform/internal/notifications"
	"inviteform/internal/registration"
	"inviteform/internal/shared/database"
	"inviteform/pkg/logger"
)

var (
	flagID      string
	flagLang    string
	flagNames   []string
	flagEntries []string
	flagTimeout time.Duration
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show the remaining invitations for a registration code",
	RunE:  runQuota,
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Register guests for a registration code",
	Long: `Register guests the same way the form does: the quota is checked first,
then the entries are sent to the hosted backend.

  guestctl submit --id INV-1 --name "Ali" --name "Sara"
  guestctl submit --id INV-1 --entry "Ali:0944123456" --entry "Sara:+963944000000"`,
	RunE: runSubmit,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(hash))
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the submissions audit table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.Database.Enabled = true
		cfg.Redis.Enabled = false

		db, err := database.InitDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Fprintln(cmd.OutOrStdout(), "✅ submissions table is up to date")
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{quotaCmd, submitCmd} {
		c.Flags().StringVar(&flagID, "id", "", "registration code")
		c.Flags().StringVar(&flagLang, "lang", "en", "message language (ar or en)")
		c.Flags().DurationVar(&flagTimeout, "timeout", 0, "override BACKEND_TIMEOUT")
		_ = c.MarkFlagRequired("id")
	}
	submitCmd.Flags().StringArrayVar(&flagNames, "name", nil, "guest name, repeatable")
	submitCmd.Flags().StringArrayVar(&flagEntries, "entry", nil, `guest as "name:phone", repeatable`)
}

func newService() registration.Service {
	timeout := cfg.Backend.Timeout
	if flagTimeout > 0 {
		timeout = flagTimeout
	}

	mode := registration.ModeTextarea
	if len(flagEntries) > 0 {
		mode = registration.ModeRows
	}

	client := backend.NewClient(cfg.Backend.URL, backend.Encoding(cfg.Backend.Encoding), timeout)
	return registration.NewService(client, nil, notifications.NopPublisher{}, logger.NewWithWriter(io.Discard, "error"), registration.Options{Mode: mode})
}

func runQuota(cmd *cobra.Command, args []string) error {
	lang := i18n.ParseLang(flagLang)

	q, err := newService().Quota(cmd.Context(), flagID)
	if err != nil {
		return errors.New(registration.ErrorText(lang, err))
	}

	if !q.Open {
		fmt.Fprintln(cmd.OutOrStdout(), i18n.T(lang, "no_more"))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), i18n.T(lang, "remaining", q.Remaining))
	return nil
}

func runSubmit(cmd *cobra.Command, args []string) error {
	lang := i18n.ParseLang(flagLang)

	entries, err := parseEntries(flagNames, flagEntries)
	if err != nil {
		return err
	}

	result, err := newService().Register(cmd.Context(), registration.RegisterInput{
		Code:    flagID,
		Lang:    lang,
		Entries: entries,
	})
	if err != nil {
		var validation guests.ValidationErrors
		if errors.As(err, &validation) {
			for _, row := range validation {
				fmt.Fprintf(cmd.ErrOrStderr(), "row %d: %s\n", row.Row+1, row.Reason)
			}
			return validation
		}
		return errors.New(registration.ErrorText(lang, err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	fmt.Fprintln(cmd.OutOrStdout(), i18n.T(lang, "remaining", result.Remaining))
	return nil
}

// parseEntries turns --name and --entry flags into guest entries. Names and
// entries cannot be mixed since one needs phones and the other doesn't.
func parseEntries(names, entries []string) ([]guests.Entry, error) {
	if len(names) > 0 && len(entries) > 0 {
		return nil, errors.New("use either --name or --entry, not both")
	}

	if len(names) > 0 {
		return guests.FromNames(strings.Join(names, "\n")), nil
	}

	out := make([]guests.Entry, 0, len(entries))
	for _, raw := range entries {
		i := strings.LastIndex(raw, ":")
		if i < 0 {
			return nil, fmt.Errorf("entry %q is not in name:phone form", raw)
		}
		out = append(out, guests.Entry{
			Name:  strings.TrimSpace(raw[:i]),
			Phone: strings.TrimSpace(raw[i+1:]),
		})
	}
	return out, nil
}
