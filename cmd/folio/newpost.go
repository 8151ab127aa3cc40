package main

import (
	"encoding/json"
	"fmt"

	"github.com/lemmi/folio"
	"github.com/spf13/cobra"
)

var newPostCmd = &cobra.Command{
	Use:   "new-post",
	Short: "Create a blog article and print its content.json entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		title, _ := f.GetString("title")
		author, _ := f.GetString("author")
		slug, _ := f.GetString("slug")
		simulate, _ := f.GetBool("dry-run")

		meta := folio.ArticleMeta{Title: title, Author: author}
		var (
			sum folio.PostSummary
			err error
		)
		if simulate {
			if slug == "" {
				slug = folio.Slugify(title)
			}
			sum = folio.PostSummary{Slug: slug, Title: title}
		} else {
			sum, err = folio.NewPost(cfg.Source, slug, meta, "")
			if err != nil {
				return err
			}
		}

		b, err := json.MarshalIndent(sum, "", "\t")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	f := newPostCmd.Flags()
	f.String("title", "New Post", "Set the title")
	f.String("author", "Webmaster", "Set the author name")
	f.String("slug", "", "Set the slug, derived from the title if empty")
	f.BoolP("dry-run", "n", false, "Only show the result")
	rootCmd.AddCommand(newPostCmd)
}
