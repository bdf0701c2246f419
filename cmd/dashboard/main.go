package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"finance-dashboard/internal/api"
	"finance-dashboard/internal/chart"
	"finance-dashboard/internal/config"
	"finance-dashboard/internal/form"
	"finance-dashboard/internal/prefs"
	"finance-dashboard/internal/redisconn"
	"finance-dashboard/internal/state"
	"finance-dashboard/internal/syncloop"
	"finance-dashboard/internal/tui"
)

const chartWidth = 36

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadDashboard()
	if err != nil {
		return err
	}

	logFile, err := tea.LogToFile(cfg.LogFile, "dashboard")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	ctx := context.Background()
	prefStore, closePrefs := openPrefs(ctx, cfg)
	defer closePrefs()
	theme := prefs.Resolve(ctx, prefStore, lipgloss.HasDarkBackground)

	client := api.NewClient(cfg.APIURL, api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}))
	store := state.New(state.NewDraft(time.Now()))
	doughnut := chart.NewDoughnut(chart.Terminal(chartWidth), chart.WithErrorHandler(func(err error) {
		log.Printf("chart: %v", err)
	}))
	loop := syncloop.New(client, store,
		syncloop.WithTrigger(syncloop.NewTicker(cfg.RefreshInterval)),
		syncloop.WithChart(doughnut),
	)
	notifier := tui.NewNotifier()
	controller := form.New(store, client, loop, notifier)

	model := tui.New(tui.Deps{
		Store:    store,
		Form:     controller,
		Loop:     loop,
		Chart:    doughnut,
		Notifier: notifier,
		Prefs:    prefStore,
		Theme:    theme,

		RefreshEvery: cfg.RefreshInterval,
	})
	defer model.Close()

	log.Printf("dashboard starting against %s", cfg.APIURL)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// openPrefs prefers Redis when configured and falls back to the file store.
func openPrefs(ctx context.Context, cfg *config.Dashboard) (prefs.Store, func()) {
	if cfg.PrefsRedisURL != "" {
		client, err := redisconn.Dial(ctx, cfg.PrefsRedisURL)
		if err == nil {
			return prefs.NewRedisStore(client), func() { client.Close() }
		}
		log.Printf("prefs: %v, using %s", err, cfg.PrefsFile)
	}
	return prefs.NewFileStore(cfg.PrefsFile), func() {}
}
