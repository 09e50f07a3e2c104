// Command directory is the console front-end for the user directory. It
// wires config, logger and the Redis store together and exposes one
// subcommand per gated operation. The acting user is passed with --as;
// every mutation is authorized against that user's stored role at the
// moment of the call.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"user-directory-backend/internal/common/config"
	"user-directory-backend/internal/common/logger"
	"user-directory-backend/internal/features/user/models"
	userredis "user-directory-backend/internal/features/user/repository/redis"
	"user-directory-backend/internal/features/user/service"
	platformredis "user-directory-backend/internal/platform/redis"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newService builds the full stack. The store dials lazily, so commands
// that fail flag validation never touch Redis.
func newService() (service.DirectoryService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init("user-directory", cfg.Debug)

	store := platformredis.NewStore(cfg.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	repo := userredis.NewUserDirectory(store)
	return service.NewDirectoryService(repo), nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "directory",
		Short:         "Role-gated user directory",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newCreateCmd(),
		newListCmd(),
		newWarnCmd(),
		newMuteCmd(),
		newCheckCmd(),
		newResetCredentialCmd(),
		newDeleteCmd(),
		newPurgeCmd(),
	)
	return root
}

func newCreateCmd() *cobra.Command {
	var name, email, password, role string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			user, err := svc.Create(cmd.Context(), name, email, password, models.ParseRole(role))
			if err != nil {
				return err
			}
			logger.Info().Str("id", user.ID()).Str("role", string(user.Role())).Msg("user created")
			fmt.Println(user.ID())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "initial credential")
	cmd.Flags().StringVar(&role, "role", "User", "User, Moderator, Admin or SuperAdmin")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// criteriaFlags binds the optional search criteria shared by list and
// purge. Deleted is tri-state: unset means "any".
type criteriaFlags struct {
	q, id, name, email, role string
	deleted                  bool
}

func (f *criteriaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.q, "q", "", "free-text match against name or email")
	cmd.Flags().StringVar(&f.id, "id", "", "exact id")
	cmd.Flags().StringVar(&f.name, "name", "", "substring match against name")
	cmd.Flags().StringVar(&f.email, "email", "", "substring match against email")
	cmd.Flags().StringVar(&f.role, "role", "", "exact role")
	cmd.Flags().BoolVar(&f.deleted, "deleted", false, "filter by deletion flag")
}

func (f *criteriaFlags) criteria(cmd *cobra.Command) models.Criteria {
	c := models.Criteria{Q: f.q, ID: f.id, Name: f.name, Email: f.email}
	if f.role != "" {
		c.Role = models.ParseRole(f.role)
	}
	if cmd.Flags().Changed("deleted") {
		c.IsDeleted = &f.deleted
	}
	return c
}

func newListCmd() *cobra.Command {
	flags := &criteriaFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			users, err := svc.Search(cmd.Context(), flags.criteria(cmd))
			if err != nil {
				return err
			}
			now := time.Now()
			for _, u := range users {
				info := u.Info()
				line := fmt.Sprintf("%s\t%s\t%s\t%s\twarnings=%d", info.ID, info.Name, info.Email, info.Role, info.Warnings)
				if u.IsMuted(now) {
					line += fmt.Sprintf("\tmuted_for=%s", u.MuteRemaining(now).Round(time.Second))
				}
				if info.IsDeleted {
					line += "\tdeleted"
				}
				fmt.Println(line)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newWarnCmd() *cobra.Command {
	var actingID string
	cmd := &cobra.Command{
		Use:   "warn <target-id>",
		Short: "Warn a user (moderator only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			count, err := svc.Warn(cmd.Context(), actingID, args[0])
			if errors.Is(err, service.ErrNotAuthorized) {
				logger.Warn().Str("acting", actingID).Msg("warn denied")
				return err
			}
			if err != nil {
				return err
			}
			fmt.Printf("warnings: %d\n", count)
			return nil
		},
	}
	cmd.Flags().StringVar(&actingID, "as", "", "acting user id")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func newMuteCmd() *cobra.Command {
	var actingID string
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "mute <target-id>",
		Short: "Mute a user for a duration (moderator only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			until, err := svc.Mute(cmd.Context(), actingID, args[0], duration)
			if errors.Is(err, service.ErrNotAuthorized) {
				logger.Warn().Str("acting", actingID).Msg("mute denied")
				return err
			}
			if err != nil {
				return err
			}
			fmt.Printf("muted until %s\n", time.UnixMilli(until).Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&actingID, "as", "", "acting user id")
	cmd.Flags().DurationVar(&duration, "for", 10*time.Minute, "mute duration")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var actingID, password string
	cmd := &cobra.Command{
		Use:   "check <target-id>",
		Short: "Check a user's credential (self or admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			ok, err := svc.CheckCredential(cmd.Context(), actingID, args[0], password)
			if err != nil {
				return err
			}
			if ok {
				fmt.Println("match")
			} else {
				fmt.Println("no match")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&actingID, "as", "", "acting user id")
	cmd.Flags().StringVar(&password, "password", "", "credential to check")
	_ = cmd.MarkFlagRequired("as")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newResetCredentialCmd() *cobra.Command {
	var actingID, password string
	cmd := &cobra.Command{
		Use:   "reset-credential <target-id>",
		Short: "Reset a user's credential (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			if err := svc.ResetCredential(cmd.Context(), actingID, args[0], password); err != nil {
				if errors.Is(err, service.ErrNotAuthorized) {
					logger.Warn().Str("acting", actingID).Msg("credential reset denied")
				}
				return err
			}
			fmt.Println("credential reset")
			return nil
		},
	}
	cmd.Flags().StringVar(&actingID, "as", "", "acting user id")
	cmd.Flags().StringVar(&password, "password", "", "new credential")
	_ = cmd.MarkFlagRequired("as")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var actingID string
	cmd := &cobra.Command{
		Use:   "delete <target-id>",
		Short: "Soft-delete a user (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			flipped, err := svc.SoftDelete(cmd.Context(), actingID, args[0])
			if errors.Is(err, service.ErrNotAuthorized) {
				logger.Warn().Str("acting", actingID).Msg("delete denied")
				return err
			}
			if err != nil {
				return err
			}
			if flipped {
				fmt.Println("deleted")
			} else {
				fmt.Println("already deleted")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&actingID, "as", "", "acting user id")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func newPurgeCmd() *cobra.Command {
	var actingID string
	var all bool
	flags := &criteriaFlags{}
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Soft-delete every user matching the criteria (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria := flags.criteria(cmd)
			// Empty criteria matches the whole directory. That is the
			// documented store behavior, so an explicit --all stands in
			// for the confirmation.
			if criteria.IsEmpty() && !all {
				return fmt.Errorf("empty criteria would delete every user; pass --all to confirm")
			}
			svc, err := newService()
			if err != nil {
				return err
			}
			count, err := svc.PurgeByCriteria(cmd.Context(), actingID, criteria)
			if errors.Is(err, service.ErrNotAuthorized) {
				logger.Warn().Str("acting", actingID).Msg("purge denied")
				return err
			}
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d users\n", count)
			return nil
		},
	}
	cmd.Flags().StringVar(&actingID, "as", "", "acting user id")
	cmd.Flags().BoolVar(&all, "all", false, "confirm deleting the whole directory")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("as")
	return cmd
}
