package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nooklet/nooklet/client"
)

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, string(data))
	return nil
}

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List active nooklets",
		RunE: func(cmd *cobra.Command, args []string) error {
			nooklets, err := newClient().ListNooklets(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(nooklets)
		},
	}
	rootCmd.AddCommand(listCmd)

	var content, nType string
	var draft bool
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a nooklet",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := newClient().CreateNooklet(cmd.Context(), client.CreateNookletRequest{
				Content: content,
				Type:    nType,
				IsDraft: draft,
			})
			if err != nil {
				return err
			}
			return printJSON(n)
		},
	}
	createCmd.Flags().StringVarP(&content, "content", "c", "", "Markdown content (required)")
	createCmd.Flags().StringVar(&nType, "type", "", "Entry type: journal, voice or quick_capture (default journal)")
	createCmd.Flags().BoolVar(&draft, "draft", false, "Create as draft")
	_ = createCmd.MarkFlagRequired("content")
	rootCmd.AddCommand(createCmd)

	archiveCmd := &cobra.Command{
		Use:   "archive NOOKLET_ID",
		Short: "Archive (soft-delete) a nooklet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := newClient().ArchiveNooklet(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(n)
		},
	}
	rootCmd.AddCommand(archiveCmd)

	restoreCmd := &cobra.Command{
		Use:   "restore NOOKLET_ID",
		Short: "Un-archive a nooklet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := newClient().RestoreNooklet(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(n)
		},
	}
	rootCmd.AddCommand(restoreCmd)
}
