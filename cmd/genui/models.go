package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func modelsCmd() *cobra.Command {
	var aliasesFlag bool
	var validateFlag bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List supported models and provider status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if aliasesFlag {
				return a.showAliases(cmd)
			}
			if validateFlag {
				return a.validateAliases(cmd)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODELS\tSTATUS")
			for _, p := range a.factory.Providers() {
				status := "no key"
				if a.cfg.HasProvider(p.Name) || p.Name == "mock" {
					status = "ready"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, strings.Join(p.Models, ", "), status)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			models := a.models("", "")
			printNote(cmd.ErrOrStderr(), "defaults: design=%s ui=%s", models.DesignModel.Model, models.UIModel.Model)
			return nil
		},
	}

	cmd.Flags().BoolVar(&aliasesFlag, "aliases", false, "show aliases and what they resolve to")
	cmd.Flags().BoolVar(&validateFlag, "validate", false, "check all aliases resolve to supported models")

	return cmd
}

func (a *app) showAliases(cmd *cobra.Command) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tMODEL\tPROVIDER")

	for _, name := range a.aliases.Names() {
		model := a.aliases.Resolve(name)
		provider, ok := a.factory.ProviderFor(model)
		if !ok {
			provider = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, model, provider)
	}

	return w.Flush()
}

func (a *app) validateAliases(cmd *cobra.Command) error {
	errs := a.aliases.Validate(a.factory)
	if len(errs) == 0 {
		printSuccess(cmd.OutOrStdout(), "all aliases resolve to supported models")
		return nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Found %d validation errors:\n", len(errs))
	for _, err := range errs {
		fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", err)
	}
	return fmt.Errorf("validation failed")
}
