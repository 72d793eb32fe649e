package taxonomy

import (
	"fmt"

	"github.com/felixgeelhaar/synapse/adapter/cli"
	"github.com/felixgeelhaar/synapse/internal/taxonomy/application/commands"
	"github.com/felixgeelhaar/synapse/internal/taxonomy/application/queries"
	"github.com/spf13/cobra"
)

// SubjectsCmd is the subjects command group
var SubjectsCmd = &cobra.Command{
	Use:     "subjects",
	Aliases: []string{"subject", "sub"},
	Short:   "List and add subjects",
	Long:    `Subjects narrow a category, e.g. "running" under "health".`,
}

var (
	subjectCategory string
	subjectColor    string
)

var listSubjectsCmd = &cobra.Command{
	Use:     "list",
	Short:   "List subjects",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		subjects, err := app.Container.ListSubjectsHandler.Handle(cmd.Context(), queries.ListSubjectsQuery{
			UserID:       app.CurrentUserID,
			CategorySlug: subjectCategory,
		})
		if err != nil {
			return fmt.Errorf("failed to list subjects: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, subjects)
		}
		if len(subjects) == 0 {
			fmt.Fprintln(out, "No subjects found.")
			return nil
		}
		for _, s := range subjects {
			fmt.Fprintf(out, "%-12s %-20s %s\n", s.Slug, s.Name, s.CategorySlug)
		}
		return nil
	},
}

var addSubjectCmd = &cobra.Command{
	Use:   "add <slug> <name>",
	Short: "Add a subject",
	Long: `Add a subject, optionally under a category.

Examples:
  synapse subjects add running Running --category health`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		_, err = app.Container.CreateSubjectHandler.Handle(cmd.Context(), commands.CreateSubjectCommand{
			UserID:       app.CurrentUserID,
			CategorySlug: subjectCategory,
			Slug:         args[0],
			Name:         args[1],
			Color:        subjectColor,
		})
		if err != nil {
			return fmt.Errorf("failed to add subject: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Subject %s added\n", args[0])
		return nil
	},
}

func init() {
	SubjectsCmd.PersistentFlags().StringVar(&subjectCategory, "category", "", "category slug")
	addSubjectCmd.Flags().StringVar(&subjectColor, "color", "", "hex colour, e.g. #3366ff")

	SubjectsCmd.AddCommand(listSubjectsCmd)
	SubjectsCmd.AddCommand(addSubjectCmd)
}
