package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/savings-circle/backend/internal/application/usecase/subscription"
	"github.com/savings-circle/backend/internal/domain/entity"
	"github.com/savings-circle/backend/internal/domain/valueobject"
	"github.com/savings-circle/backend/internal/infra/db"
	"github.com/savings-circle/backend/internal/infra/observability"
	"github.com/savings-circle/backend/internal/integration/adapters"
	"github.com/savings-circle/backend/internal/integration/persistence"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func sweepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-subscriptions",
		Short: "Mark every lapsed subscription as expired",
		Long: `Run one subscription sweep.

Active subscriptions whose end date has passed are rewritten to expired, one
member per transaction. The API server runs the same sweep on a timer; this
command is for cron based deployments and for catching up after downtime.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			uow := persistence.NewUnitOfWork(database.DB(),
				persistence.WithMaxAttempts(a.cfg.Ledger.MaxTxAttempts),
				persistence.WithBackoff(a.cfg.Ledger.TxBackoff),
			)
			dispatcher := a.newDispatcher(database)
			sweeper := subscription.NewSweepExpiredUseCase(uow, adapters.SystemClock{}, dispatcher, a.cfg.Ledger.SweepBatchSize, observability.ExpiryMetrics{})

			out, err := sweeper.Execute(cmd.Context())
			if closeErr := dispatcher.Close(cmd.Context()); closeErr != nil {
				slog.Warn("Some events were not delivered", "error", closeErr)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d expired=%d failed=%d\n", out.Scanned, out.Expired, out.Failed)
			return nil
		},
	}
}

func tokenCmd(a *app) *cobra.Command {
	var (
		principal entity.Principal
		ttl       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an access token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl <= 0 {
				ttl = a.cfg.Identity.AccessTokenExpiry
			}
			tokens := adapters.NewTokenService(a.cfg.Identity.Secret, a.cfg.Identity.Issuer, adapters.SystemClock{})
			token, err := tokens.GenerateAccessToken(cmd.Context(), principal, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&principal.UserID, "user", "u", "", "user id (required)")
	cmd.Flags().StringVar(&principal.Name, "name", "", "display name")
	cmd.Flags().StringVar(&principal.Email, "email", "", "email address")
	cmd.Flags().StringVar(&principal.Phone, "phone", "", "phone number")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to the configured expiry)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func feeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fee",
		Short: "Read or change the subscription fee",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current subscription fee",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			settings := persistence.NewPlatformSettingsRepository(database.DB(), nil, a.cfg.Platform.DefaultFeeCents)
			fee, err := settings.SubscriptionFeeCents(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), valueobject.FormatCents(fee))
			return nil
		},
	})

	var operatorID string
	set := &cobra.Command{
		Use:   "set AMOUNT",
		Short: "Change the fee charged for future activation requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fee, err := valueobject.ParseAmount(args[0])
			if err != nil {
				return err
			}

			database, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			redisClient, err := db.NewRedisClient(&a.cfg.Redis)
			if err != nil {
				slog.Warn("Redis unavailable, cached fee may be stale until it expires", "error", err)
				redisClient = nil
			}
			if redisClient != nil {
				defer redisClient.Close()
			}

			settings := persistence.NewPlatformSettingsRepository(database.DB(), redisClient, a.cfg.Platform.DefaultFeeCents)
			dispatcher := a.newDispatcher(database)
			uc := subscription.NewSetPlatformFeeUseCase(settings, adapters.NewOperatorDirectory(a.cfg.Platform.OperatorIDs), adapters.SystemClock{}, dispatcher)
			err = uc.Execute(cmd.Context(), subscription.SetPlatformFeeInput{
				OperatorID: operatorID,
				FeeCents:   fee,
			})
			_ = dispatcher.Close(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subscription fee set to %s\n", valueobject.FormatCents(fee))
			return nil
		},
	}
	set.Flags().StringVar(&operatorID, "operator", "", "operator user id recorded as the actor (required)")
	_ = set.MarkFlagRequired("operator")
	cmd.AddCommand(set)

	return cmd
}

func emailsCmd(a *app) *cobra.Command {
	var (
		groupFlag string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "emails",
		Short: "List the notification emails queued for a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, err := uuid.Parse(groupFlag)
			if err != nil {
				return fmt.Errorf("invalid group id %q: %w", groupFlag, err)
			}

			database, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			jobs, err := persistence.NewEmailQueueRepository(database.DB()).ListByGroup(cmd.Context(), groupID, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tSTATUS\tATTEMPTS\tTEMPLATE\tRECIPIENT\tLAST ERROR")
			for _, job := range jobs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
					job.CreatedAt.UTC().Format(time.RFC3339),
					job.Status,
					job.Attempts,
					job.Template,
					job.Recipient.Email,
					job.LastError,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&groupFlag, "group", "g", "", "group id (required)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of emails to list")
	_ = cmd.MarkFlagRequired("group")

	return cmd
}
