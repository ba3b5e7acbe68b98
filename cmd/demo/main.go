package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1F47E/nato-grid/pkg/config"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

func main() {
	var (
		configFile = flag.String("config", "", "Config file path (default ./config.yaml)")
		queries    = flag.Int("n", 200000, "Round trips for the benchmark (ctrl+b)")
	)
	flag.Parse()

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(os.Stderr, "demo needs an interactive terminal, use natogrid instead")
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	codec, err := cfg.Codec()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *queries < benchSteps {
		*queries = benchSteps
	}

	program := tea.NewProgram(initialModel(codec, cfg.Server.BaseURL, *queries))
	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
