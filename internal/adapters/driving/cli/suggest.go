package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

var suggestJSON bool

var suggestCmd = &cobra.Command{
	Use:   "suggest [text]",
	Short: "Show typeahead suggestions",
	Long: `Fetches the suggestions the search surface would show for the given
text. Text shorter than the configured minimum returns nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output suggestions as JSON")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if surfaces == nil {
		return errSurfacesNotConfigured
	}

	surface := surfaces.NewSurface()
	defer surfaces.ReleaseSurface(surface)

	surface.OnQueryChange(args[0])
	surface.Wait()

	suggestions := surface.State().Suggestions
	if wantJSON(cmd, suggestJSON) {
		if suggestions == nil {
			suggestions = []domain.SuggestionItem{}
		}
		return outputJSON(cmd, suggestions)
	}

	if len(suggestions) == 0 {
		cmd.Println("No suggestions.")
		return nil
	}
	for _, s := range suggestions {
		line := fmt.Sprintf("  %-10s %s", s.Type, s.Text)
		if s.Value != "" && s.Value != s.Text {
			line += fmt.Sprintf(" (%s)", s.Value)
		}
		cmd.Println(line)
	}
	return nil
}
