package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/calendar-engine/calendar"
	"github.com/warp/calendar-engine/factory"
)

var (
	configPath string
	timezone   string
)

var rootCmd = &cobra.Command{
	Use:   "calctl",
	Short: "Inspect calendar pagination chains",
	Long: `calctl builds calendar chains (year > month > week > day) over a period
and prints the pages, intervals and drill-down links of every unit.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "calendar config file (.json or .yaml)")
	rootCmd.PersistentFlags().StringVar(&timezone, "tz", "Local", "IANA location dates are read in")
}

// loadSettings reads --config, or builds a chain from the given unit names.
func loadSettings(units []string) (*factory.Settings, error) {
	if configPath != "" {
		return factory.NewChainFactory().Load(configPath)
	}
	cfg := calendar.Config{Units: make([]calendar.UnitConfig, len(units))}
	for i, name := range units {
		kind, err := calendar.ParseKind(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		cfg.Units[i] = calendar.UnitConfig{Kind: kind}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &factory.Settings{Chain: cfg, Limit: factory.DefaultLimit}, nil
}

func location() (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}
