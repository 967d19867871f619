package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the collections served by the API",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printKinds(cmd.OutOrStdout(), record.All())
	},
}

func printKinds(w io.Writer, kinds []record.Kind) {
	for _, k := range kinds {
		fields := "(any)"
		if len(k.Fields) > 0 {
			fields = strings.Join(k.Fields, ",")
		}
		attach := "-"
		if k.HasAttachment() {
			attach = k.AttachmentField
		}
		fmt.Fprintf(w, "%-13s attachment=%-10s createdAt=%-5v fields=%s\n", k.Name, attach, k.StampCreatedAt, fields)
	}
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}
