package main

import (
	"github.com/spf13/cobra"

	"vidscribe/internal/artifact"
	"vidscribe/internal/describer"
	"vidscribe/internal/extractor"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/scenes"
)

func newRunCommand(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Run the full pipeline: extract, scenes, describe, group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := describer.NewAgentModel(
				cmd.Context(),
				a.logger,
				a.cfg.Ollama.BaseURL,
				a.cfg.Ollama.Port,
				a.cfg.Ollama.VisionModel,
				a.cfg.Ollama.Prompt,
			)
			if err != nil {
				return err
			}

			p := pipeline.New(
				artifact.NewFSStore(),
				a.logger,
				pipeline.Collaborators{
					Extractor: extractor.New(a.logger),
					Scenes:    scenes.New(a.logger),
					Describer: describer.New(model, a.logger, a.cfg.Pipeline.Workers, a.cfg.Pipeline.Interval),
				},
				pipeline.Options{
					Interval:       a.cfg.Pipeline.Interval,
					SceneThreshold: a.cfg.Pipeline.SceneThreshold,
					GroupThreshold: a.cfg.Pipeline.GroupThreshold,
					Workers:        a.cfg.Pipeline.Workers,
					Force:          force,
				},
			)

			summary, err := p.Run(cmd.Context(), targetDir(args))
			if err != nil {
				return err
			}
			a.logger.Info("pipeline complete",
				"found", summary.VideosFound,
				"succeeded", summary.VideosSucceeded,
				"failed", len(summary.Failures),
				"folders", len(summary.FoldersWritten),
			)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Regenerate every stage even when artifacts exist")
	return cmd
}
