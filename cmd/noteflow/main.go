package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyan/noteflow/internal/credential"
	"github.com/hyan/noteflow/internal/ingest"
	"github.com/hyan/noteflow/internal/model"
	"github.com/hyan/noteflow/internal/source/email"
	"github.com/hyan/noteflow/internal/source/relay"
	"github.com/hyan/noteflow/internal/store"
	nfsync "github.com/hyan/noteflow/internal/sync"
	"github.com/hyan/noteflow/internal/vault"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "noteflow",
	Short: "noteflow - file remote messages into a markdown vault",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single ingestion batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context(), false)
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the configured credentials against each source",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context(), true)
	},
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Poll for new messages on a fixed timer",
	RunE:  runDaemon,
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key [api-key]",
	Short: "Store the relay API key in the system keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := credential.Set(credential.APIKeyName, args[0]); err != nil {
			return err
		}
		fmt.Println("API key stored")
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent ingestion runs and filings",
	RunE:  runHistory,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "config file path")
	rootCmd.AddCommand(runCmd, verifyCmd, daemonCmd, setKeyCmd, historyCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app bundles everything a run needs; it is rebuilt per invocation so
// configuration changes take effect without restarting the daemon.
type app struct {
	cfg    *model.AppConfig
	ledger *store.SQLiteStore
}

func loadApp() (*app, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	ledger, err := store.NewSQLiteStore(cfg.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("opening ingestion ledger: %w", err)
	}

	return &app{cfg: cfg, ledger: ledger}, nil
}

func (a *app) Close() {
	if err := a.ledger.Close(); err != nil {
		log.Printf("closing ledger: %v", err)
	}
}

// apiKey resolves the relay API key: environment first, then keyring.
func apiKey() string {
	if key := os.Getenv("NOTEFLOW_API_KEY"); key != "" {
		return key
	}
	key, err := credential.Get(credential.APIKeyName)
	if err != nil {
		return ""
	}
	return key
}

// emailPassword resolves the IMAP password the same way.
func emailPassword() string {
	if pw := os.Getenv("NOTEFLOW_EMAIL_PASSWORD"); pw != "" {
		return pw
	}
	pw, err := credential.Get(credential.EmailPasswordName)
	if err != nil {
		return ""
	}
	return pw
}

// pipelines assembles one ingestion pipeline per enabled source.
func (a *app) pipelines() ([]*ingest.Pipeline, error) {
	docs, err := vault.NewFS(a.cfg.VaultPath)
	if err != nil {
		return nil, err
	}

	naming := a.cfg.NamingConfig()
	assets := ingest.NewAssetStore(docs, vault.AttachmentPathPolicy(a.cfg.AttachmentFolder), naming.SaveFolder)
	resolver := ingest.NewResolver(docs)
	writer := ingest.NewWriter(docs, vault.NewFolderTemplates(docs, "templates"))

	key := apiKey()
	client := relay.NewClient(a.cfg.Relay.BaseURL, key)

	var pipelines []*ingest.Pipeline

	relaySrc := relay.NewAdapter(client)
	relayLocalizer := ingest.NewLocalizer(assets, client.AttachmentURL)
	pipelines = append(pipelines,
		ingest.NewPipeline(key, naming, relaySrc, relayLocalizer, resolver, writer, a.ledger))

	if a.cfg.Email.Enabled {
		pw := emailPassword()
		emailSrc := email.NewAdapter(
			a.cfg.Email.Host, a.cfg.Email.Port,
			a.cfg.Email.Username, pw, a.cfg.Email.TLS,
		)
		// Mail attachments travel with the message; there is no
		// remote attachment endpoint on this path.
		emailLocalizer := ingest.NewLocalizer(assets, nil)
		pipelines = append(pipelines,
			ingest.NewPipeline(pw, naming, emailSrc, emailLocalizer, resolver, writer, a.ledger))
	}

	return pipelines, nil
}

// runAll executes every pipeline sequentially, reporting but not
// stopping on per-source failures, so one misconfigured source does
// not starve the others.
func runAll(ctx context.Context, pipelines []*ingest.Pipeline, verifyOnly bool) error {
	var firstErr error
	for _, p := range pipelines {
		if err := p.Run(ctx, verifyOnly); err != nil {
			log.Printf("ingestion: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func runOnce(ctx context.Context, verifyOnly bool) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	pipelines, err := a.pipelines()
	if err != nil {
		return err
	}
	if err := runAll(ctx, pipelines, verifyOnly); err != nil {
		return err
	}
	if verifyOnly {
		fmt.Println("credentials accepted")
	}
	return nil
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	// Fail fast on an unusable key rather than silently polling.
	if apiKey() == "" {
		return &ingest.ConfigError{Reason: "API key is empty; run 'noteflow set-key' or set NOTEFLOW_API_KEY"}
	}

	interval := time.Duration(cfg.PollIntervalSec) * time.Second
	poller := nfsync.New(func(ctx context.Context) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		pipelines, err := a.pipelines()
		if err != nil {
			return err
		}
		return runAll(ctx, pipelines, false)
	}, interval, func(res nfsync.Result) {
		if res.Err != nil {
			log.Printf("run finished in %s with error: %v", res.Duration.Round(time.Millisecond), res.Err)
			return
		}
		log.Printf("run finished in %s", res.Duration.Round(time.Millisecond))
	})

	log.Printf("polling every %s", interval)
	poller.Start()
	defer poller.Stop()

	<-cmd.Context().Done()
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	runs, err := a.ledger.GetRuns(ctx, 10)
	if err != nil {
		return err
	}

	for _, run := range runs {
		fmt.Printf("%s  %-6s fetched=%d filed=%d skipped=%d failed=%d\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Source, run.Fetched, run.Filed, run.Skipped, run.Failed)

		filings, err := a.ledger.GetFilings(ctx, store.FilingFilter{RunID: &run.ID, Limit: 50})
		if err != nil {
			return err
		}
		for _, f := range filings {
			line := fmt.Sprintf("  msg %d: %s", f.MessageID, f.Status)
			if f.Path != "" {
				line += " -> " + f.Path
			}
			if f.Error != "" {
				line += " (" + f.Error + ")"
			}
			fmt.Println(line)
		}
	}
	return nil
}
