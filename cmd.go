package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	flagHost    string
	flagPort    int
	flagMetrics string
	flagLogLvl  string
)

var rootCmd = &cobra.Command{
	Use:   "keyvaultd",
	Short: "An in-memory, RESP-speaking key-value store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		applyFlagOverrides(cfg, cmd)

		log := newLogger(cfg)
		metrics := NewMetrics()
		metrics.Serve(cfg.MetricsAddr, log)

		srv := NewServer(cfg, log, metrics)
		log.WithField("config", cfg.String()).Info("starting keyvaultd")
		return srv.Start()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		applyFlagOverrides(cfg, cmd)
		fmt.Println(cfg.String())
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("keyvaultd dev")
	},
}

func applyFlagOverrides(cfg *Config, cmd *cobra.Command) {
	if cmd.Flags().Changed("host") {
		cfg.Host = flagHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = flagPort
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr = flagMetrics
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flagLogLvl
	}
}

func newLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

func init() {
	cobra.OnInitialize(func() {
		viper.AutomaticEnv()
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "listen host")
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", 0, "listen port")
	rootCmd.PersistentFlags().StringVar(&flagMetrics, "metrics-addr", "", "address for the /metrics HTTP endpoint (empty disables it)")
	rootCmd.PersistentFlags().StringVar(&flagLogLvl, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
