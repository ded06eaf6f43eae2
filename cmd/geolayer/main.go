// Command geolayer renders bitmap layer scenes to PNG.
//
// Usage:
//
//	geolayer render scene.yaml -o out.png
//	geolayer watch scene.yaml -o out.png
//	geolayer backends
//
// Scene files are YAML; see Scene for the format. Relative image paths are
// resolved against the scene file's directory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/geolayer"
	"github.com/gogpu/geolayer/backend"
	_ "github.com/gogpu/geolayer/backend/software"
	_ "github.com/gogpu/geolayer/backend/wgpu"
)

var (
	verbose     bool
	backendName string
	outputPath  string
	timeout     time.Duration
	maxSide     int
	quiet       bool

	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

var rootCmd = &cobra.Command{
	Use:   "geolayer",
	Short: "Render georeferenced bitmaps onto map viewports",
	Long: `geolayer draws images stretched over arbitrary quadrilaterals, the way a
map bitmap layer does, and writes the result as PNG.

Images may be local paths, file://, http(s):// or data: URLs. The GPU
backend is used when a Vulkan adapter is present; otherwise rendering
falls back to the software rasterizer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		geolayer.SetLogger(logger)
		return nil
	},
}

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List the registered render backends",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range backend.Available() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&backendName, "backend", "b", "", "Render backend (default: best available)")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "Output PNG (default: scene name with .png)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Image loading timeout")
	rootCmd.PersistentFlags().IntVar(&maxSide, "max-side", 4096, "Downscale images larger than this many pixels per side (0 disables)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Hide download progress")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(backendsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// openBackend initializes the named backend, or the best available one
// when name is empty.
func openBackend(name string) (backend.RenderBackend, error) {
	if name == "" {
		b, err := backend.InitDefault()
		if err != nil {
			return nil, fmt.Errorf("no usable backend: %w", err)
		}
		logger.Info("using backend", "backend", b.Name())
		return b, nil
	}
	b := backend.Get(name)
	if b == nil {
		return nil, fmt.Errorf("%w: %q (available: %s)", backend.ErrBackendNotAvailable,
			name, strings.Join(backend.Available(), ", "))
	}
	if err := b.Init(); err != nil {
		return nil, fmt.Errorf("init %s backend: %w", name, err)
	}
	return b, nil
}
