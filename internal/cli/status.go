package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/autodash/internal/infra/drive"
	"github.com/vietddude/autodash/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Drive authorization and recent action runs",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	tokenState, err := drive.NewCredentialManager(nil, drive.NewFileTokenStore(cfg.Drive.TokenFile), nil).State()
	if err != nil {
		slog.Warn("Failed to read Drive token", "error", err)
	}
	fmt.Printf("Google Drive: %s\n\n", tokenState)

	if cfg.Database.URL == "" {
		fmt.Println("Run history is kept in memory only; configure database.url to persist it.")
		return
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	runs, err := postgres.NewRunRepo(db).Recent(ctx, cfg.History.PageSize)
	if err != nil {
		slog.Error("Failed to query runs", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "STARTED\tACTION\tTRIGGER\tOK\tKIND\tDURATION")
	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\t%s\n",
			r.StartedAt.Format(time.DateTime), r.Action, r.Trigger, r.OK, r.Kind, r.Duration.Round(time.Millisecond))
	}
	_ = w.Flush()
}
