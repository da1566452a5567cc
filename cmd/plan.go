package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Lumos-Labs-HQ/unigen/internal/seeder"
)

type planColumn struct {
	Name       string `yaml:"name"`
	Kind       string `yaml:"kind"`
	PrimaryKey bool   `yaml:"primary_key,omitempty"`
	Nullable   bool   `yaml:"nullable,omitempty"`
	References string `yaml:"references,omitempty"`
	Deferred   bool   `yaml:"deferred,omitempty"`
}

type planEntity struct {
	Key     string       `yaml:"key"`
	Name    string       `yaml:"name"`
	Count   int          `yaml:"count"`
	Columns []planColumn `yaml:"columns"`
}

type generationPlan struct {
	Order    []string     `yaml:"order"`
	Entities []planEntity `yaml:"entities"`
}

func buildPlan(s *seeder.Seeder, counts map[string]int) (*generationPlan, error) {
	if err := s.ValidateCounts(counts); err != nil {
		return nil, err
	}
	order, err := s.Order()
	if err != nil {
		return nil, err
	}

	plan := &generationPlan{Order: order}
	for _, key := range order {
		entity, _ := s.Entity(key)
		count := entity.DefaultCount
		if n, ok := counts[key]; ok {
			count = n
		}

		pe := planEntity{Key: entity.Key, Name: entity.Name, Count: count}
		for _, col := range entity.Columns {
			pc := planColumn{
				Name:       col.Name,
				Kind:       col.Kind.String(),
				PrimaryKey: col.PrimaryKey,
				Nullable:   col.Nullable,
				Deferred:   col.Deferred,
			}
			if col.IsFK() {
				pc.References = col.RefTable + "." + col.RefColumn
			}
			pe.Columns = append(pe.Columns, pc)
		}
		plan.Entities = append(plan.Entities, pe)
	}
	return plan, nil
}

func printPlan(w io.Writer, plan *generationPlan) {
	fmt.Fprintf(w, "Generation order: %s\n\n", strings.Join(plan.Order, " -> "))
	for i, e := range plan.Entities {
		fmt.Fprintf(w, "%2d. %s (%s, %d rows)\n", i+1, e.Name, e.Key, e.Count)
		for _, c := range e.Columns {
			var notes []string
			if c.PrimaryKey {
				notes = append(notes, "pk")
			}
			if c.Nullable {
				notes = append(notes, "nullable")
			}
			if c.References != "" {
				ref := "-> " + c.References
				if c.Deferred {
					ref += " (assigned after generation)"
				}
				notes = append(notes, ref)
			}
			fmt.Fprintf(w, "      %-20s %-5s %s\n", c.Name, c.Kind, strings.Join(notes, ", "))
		}
	}
}

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the generation order and table schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			s := seeder.NewSeeder(seeder.NewDataGenerator(seeder.GeneratorOptions{Seed: 1}), nil)
			plan, err := buildPlan(s, cfg.Counts)
			if err != nil {
				return err
			}

			if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(plan)
			}

			color.New(color.FgCyan, color.Bold).Fprintln(cmd.OutOrStdout(), "unigen plan")
			printPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}
	cmd.Flags().Bool("yaml", false, "Render the plan as YAML")
	return cmd
}

func init() {
	rootCmd.AddCommand(newPlanCmd())
}
