// Command ledgerctl inspects and edits stock lots and ledger entries from
// the command line.
package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nemonet1337/zaiMedLedger/internal/config"
	"github.com/nemonet1337/zaiMedLedger/internal/logging"
	"github.com/nemonet1337/zaiMedLedger/pkg/inventory"
	"github.com/nemonet1337/zaiMedLedger/pkg/inventory/storage"
)

// app holds the resources shared by all subcommands
type app struct {
	manager *inventory.Manager
	tracker inventory.Tracker
	closer  func() error
	logger  *zap.Logger
	userID  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "ledgerctl",
		Short:             "医薬品在庫台帳の操作ツール",
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.userID, "user", "", "操作ユーザーID")

	root.AddCommand(newLotCmd(a))
	root.AddCommand(newEntryCmd(a))
	return root
}

// init opens storage and builds the manager unless one was injected
func (a *app) init(cmd *cobra.Command, _ []string) error {
	if a.userID != "" {
		cmd.SetContext(inventory.WithUser(cmd.Context(), a.userID))
	}
	if a.manager != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.Database.Driver, cfg.DataSource(), logger)
	if err != nil {
		return err
	}

	a.logger = logger
	a.manager = inventory.NewManager(store, inventory.NewLogPublisher(logger), logger, cfg.ManagerConfig())
	a.tracker = a.manager.Tracker()
	a.closer = store.Close
	return nil
}

func (a *app) close() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.closer != nil {
		return a.closer()
	}
	return nil
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
