package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nemonet1337/zaiMedLedger/pkg/inventory"
)

func newEntryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "台帳エントリの操作",
	}

	cmd.AddCommand(newPostCmd(a, inventory.TransactionTypeAdd, "入庫を記録"))
	cmd.AddCommand(newPostCmd(a, inventory.TransactionTypeRemove, "出庫を記録"))

	cmd.AddCommand(&cobra.Command{
		Use:   "update <entry-id> <add|remove> <quantity>",
		Short: "エントリの種別と数量を変更",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseID("entry-id", args[0])
			if err != nil {
				return err
			}
			quantity, err := parseQuantity(args[2])
			if err != nil {
				return err
			}
			posting := inventory.Posting{Type: inventory.TransactionType(args[1]), Quantity: quantity}
			entry, err := a.manager.UpdateEntry(cmd.Context(), entryID, posting)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entry)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <entry-id>",
		Short: "エントリを削除してロット在庫数を戻す",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseID("entry-id", args[0])
			if err != nil {
				return err
			}
			if err := a.manager.DeleteEntry(cmd.Context(), entryID); err != nil {
				return err
			}
			cmd.Printf("エントリ %d を削除しました\n", entryID)
			return nil
		},
	})

	var limit int
	list := &cobra.Command{
		Use:   "list <lot-id>",
		Short: "ロットのエントリを古い順に表示",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lotID, err := parseID("lot-id", args[0])
			if err != nil {
				return err
			}
			entries, err := a.manager.ListEntriesByLot(cmd.Context(), lotID, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	}
	list.Flags().IntVar(&limit, "limit", 0, "表示件数の上限")
	cmd.AddCommand(list)

	return cmd
}

func newPostCmd(a *app, typ inventory.TransactionType, short string) *cobra.Command {
	var reference string
	cmd := &cobra.Command{
		Use:   string(typ) + " <lot-id> <quantity>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lotID, err := parseID("lot-id", args[0])
			if err != nil {
				return err
			}
			quantity, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			entry, err := a.manager.CreateEntry(cmd.Context(), lotID, inventory.Posting{Type: typ, Quantity: quantity}, reference)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entry)
		},
	}
	cmd.Flags().StringVar(&reference, "ref", "", "参照番号（伝票番号など）")
	return cmd
}

func parseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, inventory.NewValidationError(field, "IDは整数である必要があります", raw)
	}
	return id, nil
}

func parseQuantity(raw string) (int64, error) {
	q, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, inventory.NewValidationError("quantity", "数量は整数である必要があります", raw)
	}
	return q, nil
}
