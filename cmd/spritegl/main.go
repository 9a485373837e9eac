package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"

	"spritegl/internal/config"
	"spritegl/internal/gpu"
	"spritegl/internal/gpu/glctx"
	"spritegl/internal/graphics"
	"spritegl/internal/graphics/renderables/cube"
	"spritegl/internal/graphics/renderables/overlay"
	renderer "spritegl/internal/graphics/renderer"
	"spritegl/internal/linalg"
	"spritegl/internal/profiling"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "spritegl.yaml", "path to the YAML or TOML settings file")
	watch := flag.Bool("watch", true, "reload the settings file when it changes")
	flag.Parse()

	err := config.Load(*configPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	settings := config.Get()

	logger := newLogger(settings.LogLevel)
	slog.SetDefault(logger)
	graphics.SetLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var updates <-chan config.Settings
	if *watch && err == nil {
		if updates, err = config.Watch(ctx, *configPath); err != nil {
			logger.Warn("settings will not be reloaded", "err", err)
		}
	}

	if err := run(settings, updates, logger); err != nil {
		logger.Error("spritegl stopped", "err", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// demo is the window plus the scene drawn into it.
type demo struct {
	window   *glfw.Window
	ctx      *glctx.Context
	renderer *renderer.Renderer
	spinner  *cube.Cube
	hud      *overlay.Overlay
	logger   *slog.Logger
	slow     time.Duration
}

func run(settings config.Settings, updates <-chan config.Settings, logger *slog.Logger) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	window, err := setupWindow(settings.Window)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	ctx, err := glctx.New(logger)
	if err != nil {
		return err
	}
	g, err := graphics.New(ctx, gpu.SurfaceFunc(window.GetFramebufferSize))
	if err != nil {
		return err
	}

	d := &demo{window: window, ctx: ctx, logger: logger}
	d.spinner = cube.NewCube(g)
	d.hud = overlay.NewOverlay(g, d.spinner, linalg.Rectangle{})
	d.renderer, err = renderer.NewRenderer(g, renderer.NewCamera(), d.spinner, d.hud)
	if err != nil {
		return err
	}
	d.apply(settings)

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		d.renderer.SetViewport(width, height)
	})

	// A signal only asks the loop to stop; GL teardown must stay on this thread.
	done := make(chan struct{})
	closer.Bind(func() {
		window.SetShouldClose(true)
		<-done
	})

	d.loop(updates)

	d.renderer.Dispose()
	if err := ctx.CheckError("dispose"); err != nil {
		logger.Warn("teardown left a GL error", "err", err)
	}
	close(done)
	return nil
}

// apply pushes the settings that can change at runtime into the scene.
func (d *demo) apply(s config.Settings) {
	camera := d.renderer.Camera()
	camera.FOV = s.Camera.FOV
	camera.Near = s.Camera.Near
	camera.Far = s.Camera.Far

	d.renderer.ClearColor = vec4(s.Render.ClearColor)
	d.spinner.Speed = s.Render.CubeSpeed
	d.spinner.OffscreenClear = vec4(s.Render.OffscreenClear)
	o := s.Render.Overlay
	d.hud.Dest = linalg.Rect(o[0], o[1], o[2], o[3])
	r := s.Render.OverlayImageRect
	d.hud.ImageDest = linalg.Rect(r[0], r[1], r[2], r[3])
	if err := d.hud.LoadImage(s.Render.OverlayImage); err != nil {
		d.logger.Warn("overlay image not loaded", "path", s.Render.OverlayImage, "err", err)
	}
	d.slow = time.Duration(s.Render.SlowFrameMs) * time.Millisecond
}

func vec4(c [4]float32) linalg.Vector4 { return linalg.Vec4(c[0], c[1], c[2], c[3]) }

func (d *demo) loop(updates <-chan config.Settings) {
	frames := 0
	lastFPSCheckTime := time.Now()
	lastTime := time.Now()

	for !d.window.ShouldClose() {
		profiling.ResetFrame()
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		select {
		case s, ok := <-updates:
			if ok {
				d.apply(s)
			}
		default:
		}

		d.renderer.Render(dt)
		if err := d.ctx.CheckError("frame"); err != nil {
			d.logger.Debug("frame error", "frame", d.renderer.Frame(), "err", err)
		}
		frames++

		func() {
			defer profiling.Track("glfw.SwapBuffers")()
			d.window.SwapBuffers()
		}()
		glfw.PollEvents()

		if elapsed := time.Since(now); elapsed > d.slow {
			d.logger.Info("slow frame",
				"frame", d.renderer.Frame(),
				"elapsed", elapsed,
				"top", profiling.TopN(3),
				"stats", profiling.Current())
		}

		if time.Since(lastFPSCheckTime) >= time.Second {
			d.hud.SetLabel(fmt.Sprintf("%d fps", frames))
			d.logger.Debug("fps", "fps", frames, "overlayDrawCalls", d.hud.DrawCalls())
			frames = 0
			lastFPSCheckTime = time.Now()
		}
	}
}
