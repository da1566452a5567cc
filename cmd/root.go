package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Lumos-Labs-HQ/unigen/internal/config"
)

var (
	cfgFile   string
	configErr error
	Version   = "1.0.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════════════════╗",
		"║     ██╗   ██╗███╗   ██╗██╗ ██████╗ ███████╗███╗   ██╗        ║",
		"║     ██║   ██║████╗  ██║██║██╔════╝ ██╔════╝████╗  ██║        ║",
		"║     ██║   ██║██╔██╗ ██║██║██║  ███╗█████╗  ██╔██╗ ██║        ║",
		"║     ██║   ██║██║╚██╗██║██║██║   ██║██╔══╝  ██║╚██╗██║        ║",
		"║     ╚██████╔╝██║ ╚████║██║╚██████╔╝███████╗██║ ╚████║        ║",
		"║      ╚═════╝ ╚═╝  ╚═══╝╚═╝ ╚═════╝ ╚══════╝╚═╝  ╚═══╝        ║",
		"║                                                              ║",
		"║          Synthetic University Data Generator                 ║",
		"╚══════════════════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("                        ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "unigen",
	Short: "Generate synthetic relational data for a fictitious university",
	Long: `
unigen builds departments, staff, students, courses, schedules, library and
club records with consistent cross references, then writes them to CSV or JSON
files, a relational database and optionally MongoDB.

Database Support:
- SQLite (default, synthetic_university.db)
- PostgreSQL
- MySQL
- MongoDB (document sink)`,
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("unigen version %s\n", Version)
			return nil
		}

		showBanner()
		fmt.Println()
		return cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./unigen.config.json)")
	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("unigen.config")
	}

	viper.AutomaticEnv()

	// Without --config a missing file is fine and defaults apply.
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		configErr = fmt.Errorf("failed to read config %s: %w", cfgFile, err)
	}
}

func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
