// Package geolayer renders image-mapped quadrilaterals onto map surfaces.
//
// # Overview
//
// The central type is [BitmapLayer]. It maps a bitmap onto an arbitrary
// four-corner quad (a trapezoid in projected space is fine) with bilinear
// corner interpolation, and can tint, desaturate and replace transparent
// pixels with a solid color. The layer itself never talks to a GPU API:
// it hands shader source, geometry and uniform values to a [Device] and
// lets a rendering library issue the draw call.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/geolayer"
//	    "github.com/gogpu/geolayer/backend"
//	    _ "github.com/gogpu/geolayer/backend/software"
//	    "github.com/gogpu/geolayer/imageload"
//	)
//
//	b := backend.MustDefault()
//	_ = b.Init()
//	defer b.Close()
//
//	layer := geolayer.NewBitmapLayer(geolayer.Props{
//	    Image:        geolayer.URL("https://example.com/overlay.png"),
//	    BitmapBounds: geolayer.Rect(-122.52, 37.70, -122.35, 37.82),
//	})
//	_ = layer.Initialize(geolayer.LayerContext{
//	    Device: b.Device(),
//	    Loader: imageload.New(),
//	})
//	defer layer.Finalize()
//
//	_ = layer.WaitForImage(context.Background())
//
//	vp := geolayer.Viewport{
//	    Width: 800, Height: 600,
//	    Longitude: -122.43, Latitude: 37.76, Zoom: 11,
//	    CoordinateSystem: geolayer.CoordinateLngLat,
//	}
//	frame, _ := b.RenderFrame(800, 600, func() error {
//	    return layer.Draw(geolayer.DrawParams{Uniforms: vp.Uniforms()})
//	})
//	_ = frame.SavePNG("out.png")
//
// # Bounds
//
// Bounds are given either as a rectangle (left, bottom, right, top) at
// z = 0 or as four corner points in the order bottom-left, bottom-right,
// top-right, top-left. See [Rect], [Quad] and [ParseBounds].
//
// # Images
//
// An [ImageSource] is one of [URL], [TextureHandle] or [BitmapImage].
// URLs are fetched asynchronously through the [ImageLoader] of the
// [LayerContext]; until the texture arrives the layer draws nothing.
// Handles are adopted as-is and never destroyed by the layer.
//
// # Backends
//
// The backend package holds a registry of rendering libraries. The
// software backend rasterizes on the CPU, the wgpu backend drives a
// Vulkan device through gogpu/wgpu.
package geolayer
