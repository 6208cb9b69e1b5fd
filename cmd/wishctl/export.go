package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/maruel/wishlist/internal/storage"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// archive is the YAML document written by export and read by import.
type archive struct {
	Groups []archiveGroup `yaml:"groups"`
}

type archiveGroup struct {
	Slug    string         `yaml:"slug"`
	Title   string         `yaml:"title"`
	Hidden  bool           `yaml:"hidden,omitempty"`
	Entries []archiveEntry `yaml:"entries,omitempty"`
}

type archiveEntry struct {
	Name    string `yaml:"name"`
	Content string `yaml:"content,omitempty"`
}

// exportArchive reads every group with its names and contents.
func exportArchive(s *storage.Store) (*archive, error) {
	groups, err := s.ListGroups()
	if err != nil {
		return nil, err
	}
	a := &archive{Groups: make([]archiveGroup, 0, len(groups))}
	for _, g := range groups {
		names, err := s.GetGroupNames(g.Slug)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Slug, err)
		}
		ag := archiveGroup{Slug: g.Slug, Title: g.Title, Hidden: g.Hidden}
		for _, n := range names {
			content, err := s.GetGroupContent(g.Slug, n)
			if err != nil {
				return nil, fmt.Errorf("group %q name %q: %w", g.Slug, n, err)
			}
			ag.Entries = append(ag.Entries, archiveEntry{Name: n, Content: content})
		}
		a.Groups = append(a.Groups, ag)
	}
	return a, nil
}

// importArchive replaces the group list, names and contents with a.
func importArchive(s *storage.Store, a *archive) error {
	updates := make([]storage.GroupUpdate, len(a.Groups))
	for i, g := range a.Groups {
		updates[i] = storage.GroupUpdate{Slug: g.Slug, Title: g.Title, Hidden: g.Hidden}
	}
	if _, err := s.ReplaceGroups(updates); err != nil {
		return err
	}
	for _, g := range a.Groups {
		slug := storage.Slugify(g.Slug)
		if slug == "" {
			continue
		}
		names := make([]string, len(g.Entries))
		for i, e := range g.Entries {
			names[i] = e.Name
		}
		if _, err := s.SetGroupNames(slug, names); err != nil {
			return fmt.Errorf("group %q: %w", slug, err)
		}
		for _, e := range g.Entries {
			if e.Content == "" {
				continue
			}
			if err := s.SaveGroupContent(slug, e.Name, e.Content); err != nil {
				return fmt.Errorf("group %q name %q: %w", slug, e.Name, err)
			}
		}
		slog.Debug("Imported group", "group", slug, "names", len(names))
	}
	return nil
}

// writeArchive encodes a as YAML to w.
func writeArchive(w io.Writer, a *archive) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return err
	}
	return enc.Close()
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every group, name and wish list as YAML",
		Long: `Export every group, name and wish list as a YAML document.

The output can be restored with "wishctl import".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openStore(cmd)
			if err != nil {
				return err
			}
			a, err := exportArchive(s)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return writeArchive(cmd.OutOrStdout(), a)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			err = writeArchive(f, a)
			if err2 := f.Close(); err == nil {
				err = err2
			}
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to a file instead of stdout")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Restore an export",
		Long: `Restore a YAML document written by "wishctl export".

The group list and the names of every imported group are replaced. Wish
lists present in the file overwrite the stored ones.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var a archive
			if err := yaml.Unmarshal(data, &a); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}
			s, err := opts.openStore(cmd)
			if err != nil {
				return err
			}
			if err := importArchive(s, &a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d groups\n", len(a.Groups))
			return nil
		},
	}
}
