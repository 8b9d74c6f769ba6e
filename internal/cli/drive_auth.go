package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/autodash/internal/control"
	"github.com/vietddude/autodash/internal/infra/drive"
)

var driveAuthCmd = &cobra.Command{
	Use:   "drive-auth",
	Short: "Authorize Google Drive access for backups",
	Run:   runDriveAuth,
}

func init() {
	rootCmd.AddCommand(driveAuthCmd)
}

func runDriveAuth(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	authorizer := &drive.LoopbackAuthorizer{Port: cfg.Drive.CallbackPort, Out: os.Stdout}
	if _, err := control.OpenDrive(context.Background(), cfg.Drive, authorizer); err != nil {
		slog.Error("Google Drive authorization failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Google Drive authorized, token saved to %s\n", cfg.Drive.TokenFile)
}
