package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"

	"github.com/turtacn/recordstore/common/config"
	"github.com/turtacn/recordstore/common/types/enum"
	"github.com/turtacn/recordstore/examples/userrecord"
	"github.com/turtacn/recordstore/kvstore"
	"github.com/turtacn/recordstore/kvstore/badgerstore"
	"github.com/turtacn/recordstore/kvstore/boltstore"
	"github.com/turtacn/recordstore/kvstore/memory"
)

// openHandle opens the kvstore.Handle named by cfg.Backend.Type, the
// demo's single extension point for trying each backend implementation
// from the command line via --backend.
func openHandle(cfg *config.Config) (kvstore.Handle, error) {
	backendType, err := enum.ParseBackendType(cfg.Backend.Type)
	if err != nil {
		return nil, err
	}
	switch backendType {
	case enum.BackendMemory:
		return memory.New(), nil
	case enum.BackendBolt:
		return boltstore.Open(cfg.Backend.Path)
	case enum.BackendBadger:
		return badgerstore.Open(cfg.Backend.Path)
	default:
		return nil, fmt.Errorf("unsupported backend %q", cfg.Backend.Type)
	}
}

func buildPutCmd() *cobra.Command {
	var id uint64
	var email, username string
	var age uint8
	var balance uint64

	cmd := &cobra.Command{
		Use:   "put",
		Short: "Insert or update a user record",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			h, err := openHandle(cfg)
			if err != nil {
				return err
			}
			defer h.Close()

			ctx := context.Background()
			txn, err := h.Begin(ctx, true)
			if err != nil {
				return err
			}
			u := &userrecord.User{ID: id, Email: email, Username: username, Age: age, Balance: balance}
			if err := userrecord.Store.Put(ctx, txn, u, nil); err != nil {
				return err
			}
			return txn.Commit()
		},
	}
	flags := cmd.Flags()
	flags.Uint64Var(&id, "id", 0, "user id")
	flags.StringVar(&email, "email", "", "user email")
	flags.StringVar(&username, "username", "", "user name")
	flags.Uint8Var(&age, "age", 0, "user age")
	flags.Uint64Var(&balance, "balance", 0, "user balance")
	return cmd
}

func buildGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Look up a user record by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			h, err := openHandle(cfg)
			if err != nil {
				return err
			}
			defer h.Close()

			ctx := context.Background()
			txn, err := h.Begin(ctx, false)
			if err != nil {
				return err
			}
			got, _, err := userrecord.Store.Get(ctx, txn, &userrecord.User{ID: id}, false)
			if err != nil {
				return err
			}
			litter.Dump(got)
			return nil
		},
	}
}

func buildGetByEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-by-email <email>",
		Short: "Look up a user record by email (secondary index)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			h, err := openHandle(cfg)
			if err != nil {
				return err
			}
			defer h.Close()

			ctx := context.Background()
			txn, err := h.Begin(ctx, false)
			if err != nil {
				return err
			}
			got, _, err := userrecord.Store.GetBySecondary(ctx, txn, "by_email", &userrecord.User{Email: args[0]}, false)
			if err != nil {
				return err
			}
			litter.Dump(got)
			return nil
		},
	}
}

func buildDelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "del <id>",
		Short: "Delete a user record by id, cascading through its secondary index entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			h, err := openHandle(cfg)
			if err != nil {
				return err
			}
			defer h.Close()

			ctx := context.Background()
			txn, err := h.Begin(ctx, true)
			if err != nil {
				return err
			}
			if err := userrecord.Store.Del(ctx, txn, &userrecord.User{ID: id}); err != nil {
				return err
			}
			return txn.Commit()
		},
	}
}

func buildListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every user record in primary-key order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			h, err := openHandle(cfg)
			if err != nil {
				return err
			}
			defer h.Close()

			ctx := context.Background()
			txn, err := h.Begin(ctx, false)
			if err != nil {
				return err
			}
			cur, err := userrecord.Store.CursorPK(ctx, txn, nil)
			if err != nil {
				return err
			}
			defer cur.Close()

			for cur.Next() {
				rec, err := userrecord.Store.DecodeValue(cur.Value())
				if err != nil {
					return err
				}
				litter.Dump(rec)
			}
			return nil
		},
	}
}
