package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/scene"
)

var sceneWait bool

func init() {
	sceneUploadCmd.Flags().BoolVarP(&sceneWait, "wait", "w", false,
		"block until reconstruction completes")

	sceneCmd.AddCommand(sceneUploadCmd, sceneStatusCmd)
}

var sceneCmd = &cobra.Command{
	Use:     "scene",
	GroupID: "analysis",
	Short:   "Upload and track 3D scene reconstruction",
}

var sceneUploadCmd = &cobra.Command{
	Use:   "upload <case> <video-file>",
	Short: "Upload scene footage for photogrammetry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := app.resolveCase(ctx, args[0])
		if err != nil {
			return err
		}

		video, err := os.Open(args[1])
		if err != nil {
			return errors.Wrap(err, "open video file")
		}
		defer func() { _ = video.Close() }()

		tracker := scene.NewTracker(app.client, app.logger)
		taskID, err := tracker.Upload(ctx, c.ID, filepath.Base(args[1]), video)
		if err != nil {
			return err
		}
		cmd.Printf("Upload accepted, task %s\n", taskID)

		if !sceneWait {
			return nil
		}
		status, err := tracker.Wait(ctx, c.ID)
		if err != nil {
			return err
		}
		cmd.Printf("Scene model ready: %s\n", status.ModelPath)
		return nil
	},
}

var sceneStatusCmd = &cobra.Command{
	Use:   "status <case>",
	Short: "Show reconstruction status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.resolveCase(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		tracker := scene.NewTracker(app.client, app.logger)
		status, err := tracker.Status(cmd.Context(), c.ID)
		if err != nil {
			return err
		}
		if status.ModelPath != "" {
			cmd.Printf("%s (%s)\n", status.Status, status.ModelPath)
			return nil
		}
		cmd.Println(status.Status)
		return nil
	},
}
