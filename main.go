package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-arp/config"
	"go-arp/debug"
	"go-arp/host"
	"go-arp/server"
	"go-arp/theme"
	"go-arp/tui"
)

func main() {
	if err := debug.Enable(); err != nil {
		fmt.Fprintf(os.Stderr, "debug log disabled: %v\n", err)
	}
	defer debug.Disable()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}

	// Load theme
	palette, err := theme.LoadPalette(cfg.UI.Palette)
	if err != nil {
		debug.Log("main", "palette: %v", err)
	}
	th := theme.New(palette)

	app := host.NewApp(cfg)
	if err := app.OpenOutput(); err != nil {
		fmt.Printf("No MIDI output (%v), running silent\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.Start(ctx)

	// Control API next to the TUI
	srv := server.New(app.Controller(), app.Manager.Engine().Board(), app.Manager.Transport())
	srv.OnChange = app.Saver.Touch
	go func() {
		if err := srv.ListenAndServe(ctx, cfg.HTTP.Addr); err != nil {
			debug.Log("main", "http: %v", err)
		}
	}()

	fmt.Println("go-arp")
	fmt.Println("Connect a MIDI keyboard any time - it'll be detected automatically")

	m := tui.NewAppModel(app, th)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()

	cancel()
	app.Manager.Wait()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
