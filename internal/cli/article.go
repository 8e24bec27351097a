package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/academy/pkg/search"
	"github.com/mesh-intelligence/academy/pkg/types"
)

func newArticleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "article",
		Short: "Search articles",
	}
	cmd.AddCommand(newArticleSearchCmd())
	return cmd
}

func newArticleSearchCmd() *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "search [terms...]",
		Short: "Search articles by title and description",
		Long: `Search matches every term, case-insensitively, against the article title
and description in the default text and in the --lang translation. With no
terms every article is listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(e *env) error {
				if lang == "" {
					lang = e.settings.Language
				}
				s, err := e.session()
				if err != nil {
					return err
				}
				if err := s.SetLanguage(lang); err != nil {
					return err
				}

				tbl, err := e.table(types.TableArticles)
				if err != nil {
					return err
				}
				rows, err := tbl.Fetch(nil)
				if err != nil {
					return fmt.Errorf("list articles: %w", err)
				}
				articles := make([]types.Article, 0, len(rows))
				for _, row := range rows {
					articles = append(articles, *row.(*types.Article))
				}

				found := search.Articles(articles, search.ArticleQuery{Text: strings.Join(args, " "), Lang: lang})
				if flags.jsonMode {
					return printJSON(cmd, found)
				}
				out := cmd.OutOrStdout()
				for _, a := range found {
					title, _ := a.Text(lang)
					fmt.Fprintf(out, "%d\t%s\n", a.ID, title)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language of the localized text to search (default: language from config.yaml)")
	return cmd
}
