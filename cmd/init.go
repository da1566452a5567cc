package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Lumos-Labs-HQ/unigen/internal/seeder"
	"github.com/Lumos-Labs-HQ/unigen/template"
)

const configFileName = "unigen.config.json"

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create unigen.config.json and a .env with connection examples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, _ := cmd.Flags().GetString("provider")
			out, _ := cmd.Flags().GetString("out")
			force, _ := cmd.Flags().GetBool("force")

			dbType, err := template.ValidateDatabaseType(provider)
			if err != nil {
				return err
			}
			return initializeProject(template.NewProjectTemplate(dbType, out), force)
		},
	}
	cmd.Flags().String("provider", "sqlite", "Relational sink: sqlite, postgresql or mysql")
	cmd.Flags().StringP("out", "o", ".", "Output directory written into the config")
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
	return cmd
}

func initializeProject(tmpl *template.ProjectTemplate, force bool) error {
	if _, err := os.Stat(configFileName); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configFileName)
	}

	for _, dir := range tmpl.GetDirectoryStructure() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	defaults := make(map[string]int)
	for _, e := range seeder.Entities() {
		defaults[e.Key] = e.DefaultCount
	}
	body, err := tmpl.GetConfig(defaults)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFileName, []byte(body), 0644); err != nil {
		return fmt.Errorf("failed to create file %s: %w", configFileName, err)
	}

	if err := handleEnvFile(tmpl.GetEnvTemplate()); err != nil {
		return fmt.Errorf("failed to handle .env file: %w", err)
	}

	color.Green("Initialized unigen for %s", tmpl.DatabaseType)
	fmt.Printf("   %s\n   .env\n", configFileName)
	return nil
}

// handleEnvFile creates .env, or appends the example variables that an
// existing .env does not define yet.
func handleEnvFile(defaultEnvContent string) error {
	envPath := ".env"

	existingContent, err := os.ReadFile(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return os.WriteFile(envPath, []byte(defaultEnvContent), 0644)
		}
		return err
	}

	existingStr := string(existingContent)
	var missing []string
	for _, line := range strings.Split(strings.TrimSpace(defaultEnvContent), "\n") {
		key, _, _ := strings.Cut(line, "=")
		if !strings.Contains(existingStr, key+"=") {
			missing = append(missing, line)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	if len(existingStr) > 0 && !strings.HasSuffix(existingStr, "\n") {
		existingStr += "\n"
	}
	existingStr += "\n# Added by unigen\n" + strings.Join(missing, "\n") + "\n"

	return os.WriteFile(envPath, []byte(existingStr), 0644)
}

func init() {
	rootCmd.AddCommand(newInitCmd())
}
