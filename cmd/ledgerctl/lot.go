package main

import (
	"github.com/spf13/cobra"
)

func newLotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lot",
		Short: "在庫ロットの操作",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <lot-id>",
		Short: "ロットを表示",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lotID, err := parseID("lot-id", args[0])
			if err != nil {
				return err
			}
			lot, err := a.manager.GetLot(cmd.Context(), lotID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), lot)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "audit <lot-id>",
		Short: "台帳を再計算してロット在庫数を検証",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lotID, err := parseID("lot-id", args[0])
			if err != nil {
				return err
			}
			audit, err := a.tracker.VerifyLot(cmd.Context(), lotID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), audit)
		},
	})

	return cmd
}
