package cmd

import (
	"fmt"
	"os"

	"github.com/IBM/sarama"
	"github.com/chrisdamba/foodstore/internal/logging"
	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	cfg     *models.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "foodstore",
	Short: "Order pricing, stock and scheduling engine for a food store",
	Long: `foodstore prices carts, checks daily stock and offers delivery or pickup
slots for a single food store. It serves the storefront over HTTP, seeds and
maintains the Postgres catalog, exports orders and simulates demand.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = models.LoadConfig(viper.GetViper(), cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		logger, err = logging.NewLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		sarama.Logger = logging.NewStdAdapter(logger.Named("sarama"))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ./examples/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("catalog", "", "catalog file used by offline commands")

	cobra.CheckErr(viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag("catalog_file", rootCmd.PersistentFlags().Lookup("catalog")))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
