package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/streamkit/api"
	"github.com/kbukum/streamkit/bootstrap"
	"github.com/kbukum/streamkit/component"
	"github.com/kbukum/streamkit/config"
	"github.com/kbukum/streamkit/observability"
	"github.com/kbukum/streamkit/render"
	"github.com/kbukum/streamkit/server"
	"github.com/kbukum/streamkit/sse"
)

type serveOptions struct {
	configFile string
	envFile    string
	port       int
}

func newServeCmd() *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, o)
		},
	}
	cmd.Flags().StringVarP(&o.configFile, "config", "c", "", "path to the config file (default: searched)")
	cmd.Flags().StringVar(&o.envFile, "env-file", "", "path to a .env file (default: searched)")
	cmd.Flags().IntVarP(&o.port, "port", "p", 0, "override server.port")
	return cmd
}

func runServe(cmd *cobra.Command, o *serveOptions) error {
	var loadOpts []config.LoaderOption
	if o.configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(o.envFile))
	}
	cfg, err := config.LoadService(loadOpts...)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = o.port
	}

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	telemetry := observability.NewComponent(cfg.Name, cfg.Version, cfg.Observability)
	streams := sse.NewComponent()
	srv := server.New(cfg.Server, app.Logger)

	// The server starts last so telemetry is up before the first request.
	for _, c := range []component.Component{telemetry, streams, server.NewComponent(srv)} {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}

	app.OnConfigure(func(_ context.Context, a *bootstrap.App) error {
		renderer := render.New(
			render.WithObservers(observability.PrometheusObserver{}, telemetry.Observer()),
			render.WithStreams(streams.Streams()),
			render.WithBuffer(a.Cfg.Stream.BufferSize),
			render.WithLogger(a.Logger.WithComponent("render")),
		)
		handler := api.NewHandler(renderer, nil, api.WithTimeout(a.Cfg.Stream.Timeout))
		handler.Register(srv.GinEngine())
		srv.RegisterDefaultEndpoints(a.Name, a.Components.HealthAll)
		return nil
	})

	return app.Run(cmd.Context())
}
