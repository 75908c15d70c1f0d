package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dollpublish/dollpublish/internal/document"
	"github.com/dollpublish/dollpublish/internal/presenter"
	"github.com/dollpublish/dollpublish/internal/render"
)

var (
	renderOwner       string
	renderTitle       string
	renderAttachments []string
	renderFragment    bool
)

var renderCmd = &cobra.Command{
	Use:   "render FILE.md",
	Short: "Render a markdown file the way the server would",
	Long: `Render a markdown file to HTML on stdout.

The page template is looked up like the server does: the owner's
template.html in the data directory, then the built-in page. Attachment
names given with --attach expand their ![[name]] markers.

Examples:
  dollctl render post.md --owner alice --attach cat.png > preview.html
  dollctl render post.md --fragment`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		doc := &document.Document{
			Name:    renderTitle,
			Path:    base,
			Content: string(src),
		}
		if doc.Name == "" {
			doc.Name = base
		}
		if len(renderAttachments) > 0 {
			// only the names matter for rendering
			doc.Attachments = make(map[string]string, len(renderAttachments))
			for _, name := range renderAttachments {
				doc.Attachments[name] = ""
			}
		}

		fragment := render.New().Render(doc)
		if renderFragment {
			fmt.Fprint(cmd.OutOrStdout(), fragment)
			return nil
		}
		dir, err := resolveDataDir()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), presenter.New(dir, "").Render(fragment, doc, renderOwner))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOwner, "owner", "o", "default", "owner whose template applies")
	renderCmd.Flags().StringVarP(&renderTitle, "title", "t", "", "document title (default: file name)")
	renderCmd.Flags().StringSliceVarP(&renderAttachments, "attach", "a", nil, "attachment names to expand")
	renderCmd.Flags().BoolVar(&renderFragment, "fragment", false, "print only the HTML fragment, without the page template")
	rootCmd.AddCommand(renderCmd)
}
