package cli

import (
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/inferbench/internal/history"
	"github.com/wesleyorama2/inferbench/internal/report"
)

func newHistoryCmd() *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	openStore := func() (*history.Store, error) {
		if dbPath == "" {
			p, err := history.DefaultPath()
			if err != nil {
				return nil, err
			}
			dbPath = p
		}
		return history.Open(dbPath)
	}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(limit)
			if err != nil {
				return err
			}
			report.NewConsole(report.ConsoleConfig{Writer: cmd.OutOrStdout()}).PrintHistory(records)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "History database (default ~/.inferbench/history.db)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Get(args[0])
			if err != nil {
				return err
			}

			console := report.NewConsole(report.ConsoleConfig{Writer: cmd.OutOrStdout()})
			console.Infof("Run %s at %s", rec.ID, rec.Timestamp.Local().Format("2006-01-02 15:04:05"))
			console.PrintHeader(rec.Model, rec.Config)
			console.PrintResult(&rec.Result)
			return nil
		},
	})

	return cmd
}
