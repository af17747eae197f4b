package commands

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/zibamira/CTCoral-CoDA/session"
	"github.com/zibamira/CTCoral-CoDA/version"
)

// printStartupBanner prints the user-friendly startup message.
func printStartupBanner(verbosity, port int, app *session.Application) {
	info := version.Get()
	vertices, edges := app.Status()

	pterm.DefaultHeader.WithFullWidth().Printf("CoDA - Coral Dashboard")
	pterm.Println()

	pterm.Info.Printf("Version:  %s (commit %s)\n", info.Version, info.Short())
	pterm.Info.Printf("Data:     %s, %s\n", vertices, edges)
	pterm.Info.Printf("Serving:  http://localhost:%d\n", port)
	if verbosity >= 1 {
		pterm.Info.Printf("Verbosity: %d\n", verbosity)
	}
	pterm.Println()

	fmt.Println(pterm.LightYellow("Select corals in any view, every other view follows."))
	fmt.Println(pterm.Gray("Press Ctrl+C to stop."))
	fmt.Println()
}
