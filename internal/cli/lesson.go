package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/academy/pkg/types"
)

func newLessonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lesson",
		Short: "Show and unlock lessons",
	}
	cmd.AddCommand(newLessonShowCmd())
	cmd.AddCommand(newLessonUnlockCmd())
	return cmd
}

// lessonView is the JSON shape of "lesson show".
type lessonView struct {
	Lesson   types.Lesson  `json:"lesson"`
	Language string        `json:"language"`
	Title    string        `json:"title"`
	Related  []articleView `json:"related"`
}

type articleView struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func newLessonShowCmd() *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a lesson and its related-articles grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEnv(func(e *env) error {
				s, err := e.session()
				if err != nil {
					return err
				}
				if lang != "" {
					if err := s.SetLanguage(lang); err != nil {
						return err
					}
				}
				grid, err := s.SelectLesson(id)
				if err != nil {
					return err
				}
				lesson, _ := s.ActiveLesson()

				view := lessonView{Lesson: lesson, Language: s.Language()}
				view.Title, _ = lesson.Text(s.Language())
				for _, a := range grid {
					title, _ := a.Text(s.Language())
					view.Related = append(view.Related, articleView{ID: a.ID, Title: title})
				}
				if flags.jsonMode {
					return printJSON(cmd, view)
				}
				printLesson(cmd, view)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "display language (default: language from config.yaml)")
	return cmd
}

func printLesson(cmd *cobra.Command, view lessonView) {
	out := cmd.OutOrStdout()
	status := ""
	if view.Lesson.Locked {
		status = " [locked]"
	}
	fmt.Fprintf(out, "Lesson %d: %s%s\n", view.Lesson.ID, view.Title, status)
	if _, desc := view.Lesson.Text(view.Language); desc != "" {
		fmt.Fprintln(out, desc)
	}
	if view.Lesson.VideoURL != "" {
		fmt.Fprintf(out, "Video: %s\n", view.Lesson.VideoURL)
	}
	fmt.Fprintln(out, "Related articles:")
	for i, a := range view.Related {
		if a.ID == 0 {
			fmt.Fprintf(out, "  %d. %s\n", i+1, a.Title)
			continue
		}
		fmt.Fprintf(out, "  %d. [%d] %s\n", i+1, a.ID, a.Title)
	}
}

func newLessonUnlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <id>",
		Short: "Unlock a lesson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEnv(func(e *env) error {
				s, err := e.session()
				if err != nil {
					return err
				}
				if err := s.UnlockLesson(id); err != nil {
					return err
				}
				if flags.jsonMode {
					return printJSON(cmd, map[string]any{"lesson_id": id, "locked": false})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Lesson %d unlocked\n", id)
				return nil
			})
		},
	}
}

// parseID parses a positive integer entity id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, userError(fmt.Errorf("%w: %q", types.ErrInvalidID, arg))
	}
	return id, nil
}
