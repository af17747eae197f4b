package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zibamira/CTCoral-CoDA/config"
	"github.com/zibamira/CTCoral-CoDA/logger"
	"github.com/zibamira/CTCoral-CoDA/provider"
	"github.com/zibamira/CTCoral-CoDA/server"
	"github.com/zibamira/CTCoral-CoDA/session"
)

// loadConfig resolves the configuration with CLI flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Server.Port = &port
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("start-browser") {
		cfg.Server.StartBrowser, _ = cmd.Flags().GetBool("start-browser")
	}
	return cfg, nil
}

// serve runs the update loop and the websocket server around the provider
// until interrupted.
func serve(cmd *cobra.Command, cfg *config.Config, p provider.DataProvider) error {
	log := logger.Logger.Named("coda")

	app := session.New(log.Named("session"), p)
	app.AutomaticReload = cfg.Session.AutomaticReload

	if err := app.Reload(); err != nil {
		return err
	}

	verbosity, _ := cmd.Flags().GetCount("verbose")
	port := cfg.Server.PortOrDefault()
	printStartupBanner(verbosity, port, app)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go app.Run(ctx)

	srv := server.New(log.Named("server"), app, port)
	defer srv.Close()

	if cfg.Server.StartBrowser {
		startBrowser(fmt.Sprintf("http://localhost:%d", port))
	}

	return srv.Run(ctx)
}

// startBrowser opens the URL in the default browser, best effort.
func startBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logger.Logger.Warnw("failed to open browser", "url", url, "error", err)
	}
}
