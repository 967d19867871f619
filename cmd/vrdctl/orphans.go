package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/attachment"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/config"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/database"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/maintenance"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record/repository"
)

var (
	orphansJSON  bool
	orphansPrune bool
	orphansKinds []string
)

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "Report attachments no record references, and records whose attachment is gone",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			fatal("Error loading config", err)
		}
		if cfg.MongoDB.URI == "" {
			fatal("Error", errors.New("MONGODB_URI is required to scan records"))
		}

		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			fatal("Error connecting to MongoDB", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		files, err := attachment.FromConfig(ctx, cfg)
		if err != nil {
			fatal("Error opening attachment storage", err)
		}

		kinds, err := selectKinds(orphansKinds)
		if err != nil {
			fatal("Error", err)
		}
		if orphansPrune && len(orphansKinds) > 0 {
			// files referenced only by unscanned kinds would look orphaned
			fatal("Error", errors.New("--prune needs every kind scanned; drop --kind"))
		}

		db := client.Database(cfg.MongoDB.Database)
		var sources []maintenance.Source
		for _, k := range kinds {
			sources = append(sources, maintenance.Source{Kind: k, Repo: repository.NewMongoRepo(db.Collection(k.Name))})
		}

		rep, err := maintenance.Scan(ctx, sources, files)
		if err != nil {
			fatal("Error scanning", err)
		}
		if orphansPrune {
			maintenance.Prune(ctx, files, rep)
		}
		if err := writeReport(cmd.OutOrStdout(), rep, orphansJSON); err != nil {
			fatal("Error writing report", err)
		}
	},
}

// selectKinds resolves --kind names; none selects every kind.
func selectKinds(names []string) ([]record.Kind, error) {
	if len(names) == 0 {
		return record.All(), nil
	}
	out := make([]record.Kind, 0, len(names))
	for _, n := range names {
		k, ok := record.Lookup(n)
		if !ok {
			return nil, fmt.Errorf("unknown kind %q", n)
		}
		out = append(out, k)
	}
	return out, nil
}

func writeReport(w io.Writer, rep *maintenance.Report, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rep)
	}

	fmt.Fprintf(w, "stored: %d  referenced: %d\n", rep.Stored, rep.Referenced)
	fmt.Fprintf(w, "orphaned files (%d):\n", len(rep.Orphans))
	for _, p := range rep.Orphans {
		fmt.Fprintf(w, "  %s\n", p)
	}
	fmt.Fprintf(w, "dangling records (%d):\n", len(rep.Dangling))
	for _, d := range rep.Dangling {
		fmt.Fprintf(w, "  %s/%s -> %s\n", d.Kind, d.ID, d.Path)
	}
	if len(rep.Pruned) > 0 || len(rep.Failed) > 0 {
		fmt.Fprintf(w, "pruned %d, failed %d\n", len(rep.Pruned), len(rep.Failed))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(orphansCmd)
	orphansCmd.Flags().BoolVar(&orphansJSON, "json", false, "Output in JSON format")
	orphansCmd.Flags().BoolVar(&orphansPrune, "prune", false, "Remove orphaned files")
	orphansCmd.Flags().StringSliceVar(&orphansKinds, "kind", nil, "Only scan these kinds (repeatable)")
}
