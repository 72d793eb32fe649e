// Package taxonomy holds the "synapse categories" and "synapse subjects"
// command groups.
package taxonomy

import (
	"fmt"

	"github.com/felixgeelhaar/synapse/adapter/cli"
	"github.com/felixgeelhaar/synapse/internal/taxonomy/application/commands"
	"github.com/felixgeelhaar/synapse/internal/taxonomy/application/queries"
	"github.com/spf13/cobra"
)

// CategoriesCmd is the categories command group
var CategoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"category", "cat"},
	Short:   "List and add categories",
}

var (
	categoryIcon  string
	categoryColor string
)

var listCategoriesCmd = &cobra.Command{
	Use:     "list",
	Short:   "List categories",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		categories, err := app.Container.ListCategoriesHandler.Handle(cmd.Context(), queries.ListCategoriesQuery{UserID: app.CurrentUserID})
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, categories)
		}
		for _, c := range categories {
			icon := c.Icon
			if icon == "" {
				icon = " "
			}
			fmt.Fprintf(out, "%s %-12s %s\n", icon, c.Slug, c.Name)
		}
		return nil
	},
}

var addCategoryCmd = &cobra.Command{
	Use:   "add <slug> <name>",
	Short: "Add a category",
	Long: `Add a category the classifier can file entries under.

Examples:
  synapse categories add health Health --icon 🩺 --color "#22aa66"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		result, err := app.Container.CreateCategoryHandler.Handle(cmd.Context(), commands.CreateCategoryCommand{
			UserID: app.CurrentUserID,
			Slug:   args[0],
			Name:   args[1],
			Icon:   categoryIcon,
			Color:  categoryColor,
		})
		if err != nil {
			return fmt.Errorf("failed to add category: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Category %s added\n", result.Slug)
		return nil
	},
}

func init() {
	addCategoryCmd.Flags().StringVar(&categoryIcon, "icon", "", "emoji shown next to the category")
	addCategoryCmd.Flags().StringVar(&categoryColor, "color", "", "hex colour, e.g. #3366ff")

	CategoriesCmd.AddCommand(listCategoriesCmd)
	CategoriesCmd.AddCommand(addCategoryCmd)
}
