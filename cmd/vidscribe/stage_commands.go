package main

import (
	"errors"

	"github.com/spf13/cobra"

	"vidscribe/internal/artifact"
	"vidscribe/internal/describer"
	"vidscribe/internal/extractor"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/scenes"
)

func newExtractCommand(a *app) *cobra.Command {
	var interval float64

	cmd := &cobra.Command{
		Use:   "extract [dir]",
		Short: "Extract frames from video files with ffmpeg",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("interval") {
				interval = a.cfg.Pipeline.Interval
			}
			p := pipeline.New(
				artifact.NewFSStore(),
				a.logger,
				pipeline.Collaborators{Extractor: extractor.New(a.logger)},
				pipeline.Options{Interval: interval},
			)
			return p.ExtractAll(cmd.Context(), targetDir(args))
		},
	}

	cmd.Flags().Float64VarP(&interval, "interval", "i", 0, "Seconds between sampled frames (default from config)")
	return cmd
}

func newScenesCommand(a *app) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "scenes [dir]",
		Short: "Detect scene changes with ffmpeg's scene filter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Pipeline.SceneThreshold
			}
			if threshold < 0 || threshold > 1 {
				return errors.New("threshold must be between 0.0 and 1.0")
			}
			p := pipeline.New(
				artifact.NewFSStore(),
				a.logger,
				pipeline.Collaborators{Scenes: scenes.New(a.logger)},
				pipeline.Options{SceneThreshold: threshold},
			)
			return p.DetectAll(cmd.Context(), targetDir(args))
		},
	}

	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "Scene change detection threshold, 0.0 to 1.0 (default from config)")
	return cmd
}

func newDescribeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [dir]",
		Short: "Generate AI descriptions for extracted frames",
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
			d := describer.New(model, a.logger, a.cfg.Pipeline.Workers, a.cfg.Pipeline.Interval)
			p := pipeline.New(
				artifact.NewFSStore(),
				a.logger,
				pipeline.Collaborators{Describer: d},
				pipeline.Options{Workers: a.cfg.Pipeline.Workers},
			)
			return p.DescribeAll(cmd.Context(), targetDir(args))
		},
	}
	return cmd
}

func newGroupCommand(a *app) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "group [dir]",
		Short: "Group similar frame descriptions into time ranges",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Pipeline.GroupThreshold
			}
			if threshold < 0 || threshold > 1 {
				return errors.New("threshold must be between 0.0 and 1.0")
			}
			p := pipeline.New(
				artifact.NewFSStore(),
				a.logger,
				pipeline.Collaborators{},
				pipeline.Options{GroupThreshold: threshold},
			)
			summary, err := p.GroupAll(targetDir(args))
			if err != nil {
				return err
			}
			a.logger.Info("grouping complete",
				"processed", summary.VideosSucceeded,
				"failed", len(summary.Failures),
			)
			return nil
		},
	}

	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "Similarity threshold for grouping, 0.0 to 1.0 (default from config)")
	return cmd
}
