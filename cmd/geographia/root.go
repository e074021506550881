package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"geographia/internal/eventbus"
	"geographia/internal/ui"
	"geographia/internal/ui/coordinator"
	"geographia/internal/ui/services/focus"
)

var (
	cfgFile   string
	deepLink  string
	deviceLat float64
	deviceLng float64
)

var rootCmd = &cobra.Command{
	Use:   "geographia",
	Short: "Discover and share places on the map of Argentina",
	Long: `Geographia is a terminal client for the Geographia map. Browse locations
by type, search places and addresses, read and post comments, rate locations
and manage your account.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().Float64Var(&deviceLat, "lat", 0, "device latitude")
	rootCmd.PersistentFlags().Float64Var(&deviceLng, "lng", 0, "device longitude")
	rootCmd.Flags().StringVar(&deepLink, "url", "", "open a map link, e.g. /map/(popup:location)?locationId=3")
}

func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	bus := eventbus.New(a.log)
	sched := focus.NewFrameScheduler()
	elements := ui.NewElements()
	coord := coordinator.New(coordinator.Deps{
		Bus:           bus,
		Backend:       a.client,
		Session:       a.session,
		Geocode:       a.pipeline,
		Scheduler:     sched,
		FocusFallback: elements.Map(),
		Log:           a.log,
	})

	uiModel := ui.NewModel(ui.Options{
		Coordinator: coord,
		Backend:     a.client,
		Geolocator:  a.geo,
		Scheduler:   sched,
		Elements:    elements,
		Center:      a.center(),
		Log:         a.log,
	})
	defer uiModel.Close()

	p := tea.NewProgram(uiModel, tea.WithAltScreen(), tea.WithContext(ctx))
	uiModel.SetProgram(p)

	// Set up event forwarding to UI
	stop := ui.Forward(bus, p.Send, a.log)
	defer stop()

	if deepLink != "" {
		if err := coord.Router.NavigateURL(deepLink); err != nil {
			return fmt.Errorf("open %q: %w", deepLink, err)
		}
	}

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			p.Quit()
		case <-ctx.Done():
		}
	}()

	a.log.Info("starting terminal client")
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run UI: %w", err)
	}
	cancel()
	uiModel.Close()
	coord.Wait()
	return nil
}
