package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/jackzampolin/medlens/internal/config"
	"github.com/jackzampolin/medlens/internal/home"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file to the home directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		path := h.ConfigPath()
		if cfgFile != "" {
			path = cfgFile
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML (API keys redacted)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, _, err := loadConfig(newLogger(slog.LevelWarn))
		if err != nil {
			return err
		}
		cfg := *cm.Get()
		providers := make(map[string]config.LLMProviderCfg, len(cfg.LLMProviders))
		for name, p := range cfg.LLMProviders {
			if p.APIKey != "" && config.ResolveEnvVars(p.APIKey) != "" {
				p.APIKey = "<set>"
			} else {
				p.APIKey = ""
			}
			providers[name] = p
		}
		cfg.LLMProviders = providers

		data, err := yaml.Marshal(&cfg)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
