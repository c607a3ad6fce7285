package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"subburn/internal/blobstore"
)

func newStorageCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Fetch or remove objects in the configured blob store",
	}
	cmd.AddCommand(newStorageGetCommand(ctx))
	cmd.AddCommand(newStorageDeleteCommand(ctx))
	return cmd
}

func openStore(ctx *commandContext) (blobstore.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return blobstore.New(cfg)
}

func newStorageGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key> [dest]",
		Short: "Download an object to a local file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			key, err := blobstore.CleanKey(args[0])
			if err != nil {
				return err
			}
			dest := filepath.Base(filepath.FromSlash(key))
			if len(args) == 2 {
				dest = args[1]
			}
			obj, err := store.Get(cmd.Context(), key, dest)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fetched %s to %s (%d bytes)\n", obj.Key, dest, obj.Size)
			return nil
		},
	}
}

func newStorageDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove an object from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			key, err := blobstore.CleanKey(args[0])
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s from %s\n", key, store.Name())
			return nil
		},
	}
}
