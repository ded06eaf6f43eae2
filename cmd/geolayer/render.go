package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var picking bool

var renderCmd = &cobra.Command{
	Use:   "render <scene.yaml>",
	Short: "Render a scene to PNG",
	Long: `Render loads every image referenced by the scene, draws the layers in
order and writes one PNG.

With --picking the picking pass is drawn instead: pickable layers come out
in the picking color and the rest are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&picking, "picking", false, "Draw the picking pass")
}

func runRender(cmd *cobra.Command, args []string) error {
	scenePath := args[0]
	scene, err := LoadScene(scenePath)
	if err != nil {
		return err
	}

	be, err := openBackend(backendName)
	if err != nil {
		return err
	}
	defer be.Close()

	r := newSceneRenderer(be, newLoader(scenePath, !quiet))
	defer r.Close()

	out := outputFor(scenePath)
	if err := renderScene(cmd.Context(), r, scene, out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d, %s backend)\n", out, scene.Width, scene.Height, be.Name())
	return nil
}

// renderScene applies scene to r, waits for its images and writes the
// frame to out.
func renderScene(ctx context.Context, r *sceneRenderer, scene *Scene, out string) error {
	if err := r.Apply(scene); err != nil {
		return err
	}
	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := r.Preload(loadCtx); err != nil {
		return fmt.Errorf("load images: %w", err)
	}

	bm, err := r.Render(picking)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := bm.SavePNG(out); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info("frame written", "path", out, "layers", len(r.order))
	return nil
}

func outputFor(scenePath string) string {
	if outputPath != "" {
		return outputPath
	}
	return strings.TrimSuffix(scenePath, filepath.Ext(scenePath)) + ".png"
}
