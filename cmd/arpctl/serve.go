package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"go-arp/config"
	"go-arp/debug"
	"go-arp/host"
	"go-arp/server"
)

var (
	serveAddr string
	servePlay bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&servePlay, "play", false, "start the transport right away")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the arpeggiator headless with the HTTP control API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd)
	},
}

func serve(cmd *cobra.Command) error {
	if err := debug.Enable(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "debug log disabled: %v\n", err)
	}
	defer debug.Disable()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.HTTP.Addr = serveAddr
	}

	app := host.NewApp(cfg)
	if err := app.OpenOutput(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "no MIDI output (%v), running silent\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app.Start(ctx)
	go app.FollowDevices()
	if servePlay {
		app.Manager.Play()
	}

	srv := server.New(app.Controller(), app.Manager.Engine().Board(), app.Manager.Transport())
	srv.OnChange = app.Saver.Touch

	fmt.Fprintf(cmd.OutOrStdout(), "go-arp listening on http://%s\n", cfg.HTTP.Addr)
	err = srv.ListenAndServe(ctx, cfg.HTTP.Addr)

	stop()
	app.Manager.Wait()
	if serr := app.Saver.Flush(); serr != nil {
		debug.Log("serve", "save: %v", serr)
	}
	return err
}
