package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/maruel/wishlist/internal/storage"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// groupEntry is one group in a YAML group file.
type groupEntry struct {
	Slug    string `yaml:"slug"`
	Title   string `yaml:"title,omitempty"`
	Hidden  bool   `yaml:"hidden,omitempty"`
	OldSlug string `yaml:"old_slug,omitempty"`
}

func newGroupsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List or replace groups",
	}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Long: `List groups in registry order.

Hidden groups are only listed with --all.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openStore(cmd)
			if err != nil {
				return err
			}
			var groups []storage.Group
			if all {
				groups, err = s.ListGroups()
			} else {
				groups, err = s.ListPublicGroups()
			}
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, g := range groups {
				hidden := ""
				if g.Hidden {
					hidden = "hidden"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", g.Slug, g.Title, hidden)
			}
			return w.Flush()
		},
	}
	list.Flags().BoolVarP(&all, "all", "a", false, "include hidden groups")

	set := &cobra.Command{
		Use:   "set <file.yaml>",
		Short: "Replace the group list",
		Long: `Replace the whole group list with the content of a YAML file.

Groups missing from the file are removed from the registry; their data stays
on disk. An entry with old_slug renames that group and moves its data.

Example file:
  - slug: xmas
    title: Christmas
    old_slug: xmas-2023
  - slug: birthdays
    hidden: true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var entries []groupEntry
			if err := yaml.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}
			s, err := opts.openStore(cmd)
			if err != nil {
				return err
			}
			updates := make([]storage.GroupUpdate, len(entries))
			for i, e := range entries {
				updates[i] = storage.GroupUpdate{Slug: e.Slug, Title: e.Title, Hidden: e.Hidden, OldSlug: e.OldSlug}
			}
			groups, err := s.ReplaceGroups(updates)
			if err != nil {
				return err
			}
			slog.Info("Groups replaced", "count", len(groups))
			fmt.Fprintf(cmd.OutOrStdout(), "%d groups\n", len(groups))
			return nil
		},
	}

	cmd.AddCommand(list, set)
	return cmd
}
