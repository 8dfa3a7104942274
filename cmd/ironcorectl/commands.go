package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/EdwinEstrella/ironcore-gym/internal/cache"
	"github.com/EdwinEstrella/ironcore-gym/internal/config"
	"github.com/EdwinEstrella/ironcore-gym/internal/db"
	"github.com/EdwinEstrella/ironcore-gym/internal/email"
	"github.com/EdwinEstrella/ironcore-gym/internal/events"
	"github.com/EdwinEstrella/ironcore-gym/internal/gym"
	"github.com/EdwinEstrella/ironcore-gym/internal/logger"
	"github.com/EdwinEstrella/ironcore-gym/internal/subscription"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ironcorectl",
		Short:         "Operational commands for IronCore Gym",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.InitWithLevel(cfg.LogLevel)
			cmd.SetContext(withConfig(cmd.Context(), cfg))
			return nil
		},
	}

	root.AddCommand(
		migrateCmd(),
		expireCmd(),
		remindCmd(),
		statsCmd(),
	)
	return root
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(cfg *config.Config, database *sqlx.DB) error {
				if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return errors.New("--steps must be at least 1")
			}
			return withDB(cmd, func(cfg *config.Config, database *sqlx.DB) error {
				if err := db.RollbackMigrations(database, cfg.MigrationsPath, steps); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

func expireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Mark overdue ACTIVE subscriptions as EXPIRED",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(cfg *config.Config, database *sqlx.DB) error {
				publisher := dialPublisher(cfg)
				defer publisher.Close()
				rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
				defer rdb.Close()

				svc := expiryService(cfg, database, rdb, publisher)
				n, err := svc.ExpireOverdue(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "expired %d subscription(s)\n", n)
				return nil
			})
		},
	}
}

// expiryService drops the cached dashboard stats of every gym it touches so the
// API serves fresh counts.
func expiryService(cfg *config.Config, database *sqlx.DB, rdb *redis.Client, publisher events.Publisher) subscription.Service {
	stats := cache.NewStatsCache(rdb, cfg.StatsCacheTTL)
	return subscription.NewService(subscription.NewRepository(database), nil, nil, nil, publisher, stats)
}

func remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Queue expiry reminders for subscriptions ending within a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(cfg *config.Config, database *sqlx.DB) error {
				rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
				defer rdb.Close()

				// the API process drains the queue; this only enqueues
				notifier := email.New(rdb, nil)
				svc := subscription.NewService(subscription.NewRepository(database), nil, nil, notifier, events.Noop{}, nil)
				n, err := svc.SendExpiryReminders(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "queued %d reminder(s)\n", n)
				return nil
			})
		},
	}
}

func statsCmd() *cobra.Command {
	var gymID string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard stats for a gym",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(cfg *config.Config, database *sqlx.DB) error {
				stats, err := gym.NewService(gym.NewRepository(database), nil).GetStats(cmd.Context(), gymID)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			})
		},
	}
	cmd.Flags().StringVar(&gymID, "gym", "", "gym id")
	_ = cmd.MarkFlagRequired("gym")
	return cmd
}

func withDB(cmd *cobra.Command, fn func(cfg *config.Config, database *sqlx.DB) error) error {
	cfg := configFrom(cmd.Context())
	if cfg == nil {
		return errors.New("config not loaded")
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close()

	return fn(cfg, database)
}

func dialPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.Noop{}
	}
	producer, err := events.NewProducer(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.WithError(err).Warn("broker unavailable, events dropped")
		return events.Noop{}
	}
	return producer
}
