package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"vidscribe/internal/artifact"
	"vidscribe/internal/index"
	"vidscribe/internal/models"
)

func newIndexCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "Load grouped timelines into Postgres with pgvector embeddings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := targetDir(args)
			docs, err := findFolderDocuments(root)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				return fmt.Errorf("no .descriptions.json documents found under %q (run group first)", root)
			}

			ctx := cmd.Context()
			pgCfg := postgresConfig(a)
			if err := index.InitSchema(ctx, pgCfg); err != nil {
				return err
			}

			embeddings := index.NewService(
				index.NewOllamaEmbedder(a.cfg.Ollama.BaseURL, a.cfg.Ollama.Port, a.cfg.Ollama.EmbedModel),
				a.cfg.Pipeline.Workers,
			)
			defer embeddings.Close()

			ix, err := index.NewIndexer(ctx, pgCfg, embeddings, a.logger)
			if err != nil {
				return err
			}
			defer ix.Close()

			store := artifact.NewFSStore()
			total := 0
			for _, path := range docs {
				var doc models.FolderDocument
				if err := artifact.ReadJSON(store, path, &doc); err != nil {
					a.logger.Error("skipping unreadable folder document", "path", path, "error", err)
					continue
				}
				n, err := ix.IndexFolder(ctx, doc)
				if err != nil {
					return err
				}
				total += n
			}
			a.logger.Info("indexing complete", "documents", len(docs), "runs", total)
			return nil
		},
	}
	return cmd
}

func newSearchCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over indexed timelines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			embeddings := index.NewService(
				index.NewOllamaEmbedder(a.cfg.Ollama.BaseURL, a.cfg.Ollama.Port, a.cfg.Ollama.EmbedModel),
				a.cfg.Pipeline.Workers,
			)
			defer embeddings.Close()

			ix, err := index.NewIndexer(ctx, postgresConfig(a), embeddings, a.logger)
			if err != nil {
				return err
			}
			defer ix.Close()

			results, err := ix.Search(ctx, args[0], limit)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%.3f  %s/%s  %s - %s  %s\n",
					r.Similarity, r.Folder, r.Video, r.StartTime, r.EndTime, r.Description)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum number of results")
	return cmd
}

func postgresConfig(a *app) index.PostgresConfig {
	return index.PostgresConfig{
		Host:         a.cfg.Postgres.Host,
		Port:         a.cfg.Postgres.Port,
		User:         a.cfg.Postgres.User,
		Password:     a.cfg.Postgres.Password,
		DBName:       a.cfg.Postgres.DBName,
		EmbeddingDim: a.cfg.Postgres.EmbeddingDim,
	}
}

// findFolderDocuments locates every folder-level descriptions document under
// root, skipping frames directories.
func findFolderDocuments(root string) ([]string, error) {
	var docs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "frames" && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".descriptions.json") {
			docs = append(docs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(docs)
	return docs, nil
}
