package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newContentCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Read or write the wish list of a name",
	}

	get := &cobra.Command{
		Use:   "get <group> <name>",
		Short: "Print the wish list of a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openStore(cmd)
			if err != nil {
				return err
			}
			group, err := resolveGroup(s, args[0])
			if err != nil {
				return err
			}
			content, err := s.GetGroupContent(group, args[1])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), content)
			return err
		},
	}

	var file string
	set := &cobra.Command{
		Use:   "set <group> <name>",
		Short: "Replace the wish list of a name",
		Long: `Replace the wish list of a name with the content of --file, or stdin.

The name is added to the group when it is not listed yet.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if file == "" || file == "-" {
				hintIfTerminal(cmd, cmd.InOrStdin())
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(file)
			}
			if err != nil {
				return err
			}
			s, err := opts.openStore(cmd)
			if err != nil {
				return err
			}
			group, err := resolveGroup(s, args[0])
			if err != nil {
				return err
			}
			if err := s.SaveGroupContent(group, args[1], string(data)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s/%s: %d bytes\n", group, args[1], len(data))
			return nil
		},
	}
	set.Flags().StringVarP(&file, "file", "f", "", `read the content from a file (default stdin)`)

	cmd.AddCommand(get, set)
	return cmd
}
