package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/canvasfx/internal/app"
	"github.com/coreman2200/canvasfx/internal/config"
	"github.com/coreman2200/canvasfx/internal/host"
	"github.com/coreman2200/canvasfx/internal/preview"
	"github.com/coreman2200/canvasfx/internal/term"
	"github.com/coreman2200/canvasfx/internal/window"
)

type globals struct {
	configPath    string
	logLevel      string
	fps           int
	theme         string
	reducedMotion bool
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := newRoot(&globals{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRoot(g *globals) *cobra.Command {
	root := &cobra.Command{
		Use:          "canvasfx",
		Short:        "Animated particle and node backgrounds for a scrolling page",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "path to a page YAML file (built-in page when empty)")
	pf.StringVar(&g.logLevel, "log-level", "info", "debug | info | warn | error")
	pf.IntVar(&g.fps, "fps", 60, "target frames per second")
	pf.StringVar(&g.theme, "theme", "quantum-void", "initial theme")
	pf.BoolVar(&g.reducedMotion, "reduced-motion", false, "start with animation stopped")

	root.AddCommand(renderCmd(g), serveCmd(g), termCmd(g), windowCmd(g))
	return root
}

// load reads the config and lets explicitly set flags win over it.
func (g *globals) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if g.configPath != "" {
		c, err := config.Load(g.configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if flags.Changed("fps") {
		cfg.FPS = g.fps
	}
	if flags.Changed("theme") {
		cfg.Theme = g.theme
	}
	if flags.Changed("reduced-motion") {
		cfg.ReducedMotion = g.reducedMotion
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(lvl)
	return cfg, nil
}

func (g *globals) core(cmd *cobra.Command) (*app.Core, error) {
	cfg, err := g.load(cmd)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, log.Logger)
}

func renderCmd(g *globals) *cobra.Command {
	var (
		frames int
		out    string
		prefix string
		scroll float64
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render frames to PNG files",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.core(cmd)
			if err != nil {
				return err
			}
			defer c.Close()
			c.Scroll(scroll)
			w, err := host.NewPNGWriter(out, prefix)
			if err != nil {
				return err
			}
			defer w.Close()
			if err := c.Render(frames, w); err != nil {
				return err
			}
			log.Info().Int("frames", w.Written()).Str("dir", out).Msg("rendered")
			return nil
		},
	}
	cmd.Flags().IntVarP(&frames, "frames", "n", 120, "number of frames")
	cmd.Flags().StringVarP(&out, "out", "o", "frames", "output directory")
	cmd.Flags().StringVar(&prefix, "prefix", "frame", "file name prefix")
	cmd.Flags().Float64Var(&scroll, "scroll", 0, "page scroll offset")
	return cmd
}

func serveCmd(g *globals) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Stream frames to a browser and accept input over websockets",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.core(cmd)
			if err != nil {
				return err
			}
			defer c.Close()
			srv := preview.New(c, log.Logger)
			defer srv.Close()

			hs := &http.Server{
				Addr:         addr,
				Handler:      withCORS(srv.Handler()),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 10 * time.Second,
				IdleTimeout:  60 * time.Second,
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				log.Info().Str("addr", addr).Msg("HTTP server starting")
				if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("http server crashed")
					stop()
				}
			}()
			err = c.Run(ctx, srv)
			log.Info().Msg("shutting down")
			_ = hs.Close()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	return cmd
}

func termCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Show the page in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.core(cmd)
			if err != nil {
				return err
			}
			defer c.Close()
			// the console writer would scribble over the screen
			zerolog.SetGlobalLevel(zerolog.Disabled)
			s, err := term.Open(c, log.Logger)
			if err != nil {
				return err
			}
			defer s.Close()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return s.Run(ctx)
		},
	}
}

func windowCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "window",
		Short: "Show the page in a desktop window",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.core(cmd)
			if err != nil {
				return err
			}
			defer c.Close()
			return window.Run(c, log.Logger, "canvasfx")
		},
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}
