package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/and161185/codenotes/internal/errs"
	"github.com/and161185/codenotes/internal/model"
)

// noteFlags are shared by add and edit.
type noteFlags struct {
	title, description, code, codeFile, language, tags string
}

func (f *noteFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "note title")
	cmd.Flags().StringVar(&f.description, "description", "", "free text")
	cmd.Flags().StringVar(&f.code, "code", "", "code snippet")
	cmd.Flags().StringVar(&f.codeFile, "code-file", "", "read the snippet from a file (- for stdin)")
	cmd.Flags().StringVar(&f.language, "language", "", "language label, e.g. Go")
	cmd.Flags().StringVar(&f.tags, "tags", "", `comma-separated tags, e.g. "algo, sort"`)
	cmd.MarkFlagsMutuallyExclusive("code", "code-file")
}

func (c *cli) snippet(f *noteFlags) (string, error) {
	if f.codeFile == "" {
		return f.code, nil
	}
	b, err := c.readAll(f.codeFile)
	if err != nil {
		return "", fmt.Errorf("read code: %w", err)
	}
	return string(b), nil
}

type noteView struct {
	model.Note
	Updated string `json:"updated"`
}

func view(n model.Note, now time.Time) noteView {
	return noteView{Note: n, Updated: humanize.RelTime(n.UpdatedAt, now, "ago", "from now")}
}

type summaryView struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Language string    `json:"language,omitempty"`
	Tags     []string  `json:"tags"`
	Updated  string    `json:"updated"`
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.FromString(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("note %q: %w", s, errs.ErrNotFound)
	}
	return id, nil
}

func (c *cli) addCmd() *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := c.application(ctx)
			if err != nil {
				return err
			}
			u, err := a.RequireUser(ctx)
			if err != nil {
				return err
			}
			code, err := c.snippet(&f)
			if err != nil {
				return err
			}
			n, err := a.Notes.Add(ctx, u.ID, model.NoteFields{
				Title:       f.title,
				Description: f.description,
				Code:        code,
				Language:    f.language,
				Tags:        model.ParseTags(f.tags),
			})
			if err != nil {
				return err
			}
			c.printJSON(n)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (c *cli) editCmd() *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a note; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.application(ctx)
			if err != nil {
				return err
			}
			if _, err := a.RequireUser(ctx); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var p model.NotePatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				p.Title = &f.title
			}
			if flags.Changed("description") {
				p.Description = &f.description
			}
			if flags.Changed("code") || flags.Changed("code-file") {
				code, err := c.snippet(&f)
				if err != nil {
					return err
				}
				p.Code = &code
			}
			if flags.Changed("language") {
				p.Language = &f.language
			}
			if flags.Changed("tags") {
				tags := model.ParseTags(f.tags)
				p.Tags = &tags
			}

			if p.Empty() {
				return fmt.Errorf("edit: give at least one field to change: %w", errs.ErrValidation)
			}
			if err := a.Notes.Update(ctx, id, p); err != nil {
				return err
			}
			n, _ := a.Notes.Get(id)
			c.printJSON(n)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.application(ctx)
			if err != nil {
				return err
			}
			if _, err := a.RequireUser(ctx); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.Notes.Delete(ctx, id)
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.application(ctx)
			if err != nil {
				return err
			}
			if _, err := a.RequireUser(ctx); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			n, ok := a.Notes.Get(id)
			if !ok {
				return fmt.Errorf("note %s: %w", id, errs.ErrNotFound)
			}
			c.printJSON(view(n, time.Now()))
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	var search, language string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes, optionally searched and filtered by language",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := c.application(ctx)
			if err != nil {
				return err
			}
			if _, err := a.RequireUser(ctx); err != nil {
				return err
			}
			now := time.Now()
			out := []summaryView{}
			for _, n := range a.Notes.Query(search, language) {
				out = append(out, summaryView{
					ID:       n.ID,
					Title:    n.Title,
					Language: n.Language,
					Tags:     n.Tags,
					Updated:  humanize.RelTime(n.UpdatedAt, now, "ago", "from now"),
				})
			}
			c.printJSON(out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "match title, description or tags")
	cmd.Flags().StringVarP(&language, "language", "l", model.AllLanguages, "exact language label")
	return cmd
}

func (c *cli) languagesCmd() *cobra.Command {
	var suggested bool
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List languages used by your notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if suggested {
				c.printJSON(model.SuggestedLanguages)
				return nil
			}
			ctx := cmd.Context()
			a, err := c.application(ctx)
			if err != nil {
				return err
			}
			if _, err := a.RequireUser(ctx); err != nil {
				return err
			}
			c.printJSON(a.Notes.Languages())
			return nil
		},
	}
	cmd.Flags().BoolVar(&suggested, "suggested", false, "print the suggested language labels instead")
	return cmd
}
