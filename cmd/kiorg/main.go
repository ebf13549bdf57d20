// Command kiorg is the application entry point: it wires the core
// engine (internal/app.App) to whatever widget tree is linked in as a
// Renderer and drives the GUI event loop.
package main

import (
	"flag"
	"fmt"
	"os"

	"gioui.org/app"

	kiorg "github.com/kiorg/kiorg/internal/app"
	"github.com/kiorg/kiorg/internal/config"
)

func main() {
	generateConfig := flag.Bool("generate-config", false, "write a fresh config.toml, backing up any existing one with a timestamp")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [directory]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	var startPath string
	if flag.NArg() > 0 {
		startPath = flag.Arg(0)
	}

	if *generateConfig {
		backupPath, err := config.GenerateConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "kiorg: %v\n", err)
			os.Exit(1)
		}
		if backupPath != "" {
			fmt.Printf("existing config backed up to %s\n", backupPath)
		}
		fmt.Printf("fresh config written to %s\n", config.ConfigPath())
		return
	}

	a, err := kiorg.NewApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kiorg: %v\n", err)
		os.Exit(1)
	}

	go func() {
		if err := a.Run(noopRenderer{}, startPath); err != nil {
			fmt.Fprintf(os.Stderr, "kiorg: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

// noopRenderer is the placeholder Renderer linked into this binary. The
// real immediate-mode widget tree (layout, theme, rendering frames) is
// an external collaborator the core does not define; swapping this for
// a real one is the only thing a full build adds.
type noopRenderer struct{}

func (noopRenderer) Layout(gtx interface{}, state *kiorg.ViewState) kiorg.UIEvent {
	return kiorg.UIEvent{SelectIndex: -1}
}
