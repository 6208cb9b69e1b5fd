package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newNamesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "names",
		Short: "List or replace the names of a group",
	}

	list := &cobra.Command{
		Use:   "list <group>",
		Short: "List the names of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openStore(cmd)
			if err != nil {
				return err
			}
			group, err := resolveGroup(s, args[0])
			if err != nil {
				return err
			}
			names, err := s.GetGroupNames(group)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}

	var file string
	set := &cobra.Command{
		Use:   "set <group> [name...]",
		Short: "Replace the names of a group",
		Long: `Replace the names of a group.

Names are given as arguments, or one per line with --file ("-" for stdin).
Names are trimmed and deduplicated; existing names keep their wish list.

Examples:
  wishctl names set xmas Alice Bob
  wishctl names set xmas --file names.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args[1:]
			if file != "" {
				if file == "-" {
					hintIfTerminal(cmd, cmd.InOrStdin())
				}
				lines, err := readLines(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				names = append(names, lines...)
			}
			s, err := opts.openStore(cmd)
			if err != nil {
				return err
			}
			group, err := resolveGroup(s, args[0])
			if err != nil {
				return err
			}
			saved, err := s.SetGroupNames(group, names)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d names\n", group, len(saved))
			return nil
		},
	}
	set.Flags().StringVarP(&file, "file", "f", "", `read names from a file, one per line ("-" for stdin)`)

	cmd.AddCommand(list, set)
	return cmd
}

// readLines returns the lines of path, or of stdin when path is "-".
func readLines(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path) //nolint:gosec // G304: path comes from the command line.
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			lines = append(lines, l)
		}
	}
	return lines, sc.Err()
}
