package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vietddude/autodash/internal/actions"
	"github.com/vietddude/autodash/internal/control"
	"github.com/vietddude/autodash/internal/core/config"
	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/dashboard"
)

var runFlags struct {
	city    string
	url     string
	query   string
	to      string
	subject string
	body    string
	file    string
	task    string
	source  string
	output  string
	folder  string
}

var runCmd = &cobra.Command{
	Use:   "run [action]",
	Short: "Run one action and print its result",
	Long: `Run one action the same way the dashboard button does.

Actions: crypto, btc_price, eth_price, weather, news, uptime, pdf_summary,
backup, email, machine_report, task.`,
	Args: cobra.ExactArgs(1),
	Run:  runAction,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.city, "city", "", "city for weather")
	f.StringVar(&runFlags.url, "url", "", "website for uptime")
	f.StringVar(&runFlags.query, "query", "", "topic for news")
	f.StringVar(&runFlags.to, "to", "", "email recipient")
	f.StringVar(&runFlags.subject, "subject", "", "email subject")
	f.StringVar(&runFlags.body, "body", "", "email body")
	f.StringVar(&runFlags.file, "file", "", "PDF to summarize")
	f.StringVar(&runFlags.task, "task", "", "named task to trigger")
	f.StringVar(&runFlags.source, "source", "", "folder to back up")
	f.StringVar(&runFlags.output, "output", "", "where the archive is staged")
	f.StringVar(&runFlags.folder, "folder", "", "Drive folder for backups")
	rootCmd.AddCommand(runCmd)
}

func runAction(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	reqs, err := buildRequests(cfg, args[0])
	if err != nil {
		slog.Error("Invalid action", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	app, err := control.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize dashboard", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	out, err := app.Dashboard().Run(ctx, reqs...)
	if err != nil {
		slog.Error("Failed to run action", "error", err)
		os.Exit(1)
	}
	if out.Warning != "" {
		fmt.Fprintln(os.Stderr, out.Warning)
		os.Exit(2)
	}

	failed := false
	for _, res := range out.Results {
		printResult(res)
		if !res.OK {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func buildRequests(cfg *config.AppConfig, name string) ([]actions.Request, error) {
	base := actions.Request{Trigger: actions.TriggerCLI}
	if name == "crypto" {
		btc, eth := base, base
		btc.Action, eth.Action = domain.ActionBTCPrice, domain.ActionETHPrice
		return []actions.Request{btc, eth}, nil
	}

	req := base
	req.Action = domain.ActionName(name)
	if !req.Action.Valid() {
		return nil, fmt.Errorf("unknown action %q", name)
	}

	req.City = runFlags.city
	req.URL = runFlags.url
	req.Query = runFlags.query
	req.Task = runFlags.task
	req.Email = actions.EmailRequest{To: runFlags.to, Subject: runFlags.subject, Body: runFlags.body}
	req.Backup = actions.BackupRequest{
		SourceDir:   orDefault(runFlags.source, cfg.Backup.SourceDir),
		OutputDir:   orDefault(runFlags.output, cfg.Backup.OutputDir),
		DriveFolder: orDefault(runFlags.folder, cfg.Backup.DriveFolder),
	}

	if req.Action == domain.ActionPDFSummary && runFlags.file != "" {
		data, err := os.ReadFile(runFlags.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", runFlags.file, err)
		}
		req.Document = &actions.Document{Name: filepath.Base(runFlags.file), Data: data}
	}
	return []actions.Request{req}, nil
}

func printResult(res domain.Result) {
	status := "OK"
	if !res.OK {
		status = "FAILED (" + string(res.Kind) + ")"
	}
	fmt.Printf("[%s] %s\n", res.Action, status)
	fmt.Println(strings.TrimSpace(dashboard.DisplayValue(res)))
	for _, n := range res.Nested {
		printResult(n)
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
