package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camkit/go-viewfit/internal/config"
	"github.com/camkit/go-viewfit/internal/log"
	"github.com/camkit/go-viewfit/pkg/camera"
	"github.com/camkit/go-viewfit/pkg/capture"
	"github.com/camkit/go-viewfit/pkg/debug"
	"github.com/camkit/go-viewfit/pkg/display"
	"github.com/camkit/go-viewfit/pkg/preview"
	"github.com/camkit/go-viewfit/pkg/remote"
	"github.com/camkit/go-viewfit/pkg/web"
)

func main() {
	port := flag.String("port", config.Port(), "HTTP port to listen on")
	cameraURL := flag.String("camera-url", config.CameraURL(), "Remote camera host (empty = local device)")
	cameraIndex := flag.Int("camera", config.CameraIndex(), "Local capture device index")
	flag.BoolVar(&debug.Frames, "debug-frames", false, "Log every captured frame (very chatty)")
	flag.Parse()

	log.Init(config.LogLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	source, chars, err := openSource(*cameraURL, *cameraIndex)
	if err != nil {
		log.Error("failed to open camera", "error", err)
		os.Exit(1)
	}
	defer source.Close()

	log.Info("camera ready",
		"sensor_orientation", chars.SensorOrientation,
		"facing", chars.Facing.String(),
		"sizes", len(chars.SupportedSizes))

	mgr := camera.NewManager(chars)
	mgr.OnConfigChange = func(cfg camera.Config) error {
		return source.SetSize(preview.Size{Width: cfg.Width, Height: cfg.Height})
	}

	server := web.New(*port, mgr, display.NewViewport())

	go frameLoop(ctx, source, mgr, server)

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	if err := server.Start(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// openSource opens either the local capture device or a remote camera,
// and builds the device characteristics the fit pipeline selects against.
func openSource(cameraURL string, cameraIndex int) (capture.Source, camera.Characteristics, error) {
	if cameraURL != "" {
		cam := remote.NewCamera(cameraURL, config.CameraProducer())

		chars, err := cam.Characteristics()
		if err != nil {
			return nil, chars, err
		}
		if err := cam.Connect(); err != nil {
			return nil, chars, err
		}
		return cam, chars, nil
	}

	webcam, err := capture.OpenWebcam(cameraIndex, preview.Size{Width: 1280, Height: 720})
	if err != nil {
		return nil, camera.Characteristics{}, err
	}

	chars := camera.Characteristics{
		SensorOrientation: config.SensorOrientation(),
		Facing:            config.Facing(),
		SupportedSizes:    webcam.ProbeSizes(capture.CommonSizes),
	}
	if err := chars.Validate(); err != nil {
		webcam.Close()
		return nil, chars, err
	}
	return webcam, chars, nil
}

// frameLoop captures frames at the configured rate and broadcasts them to
// preview stream subscribers. Capture errors are logged and retried; a camera
// losing a frame is normal during reconfiguration.
func frameLoop(ctx context.Context, source capture.Source, mgr *camera.Manager, server *web.Server) {
	for {
		cfg := mgr.GetConfig()
		interval := time.Second / time.Duration(cfg.Framerate)

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		if server.FrameHub().ClientCount() == 0 {
			continue
		}

		frame, err := source.ReadJPEG(cfg.Quality)
		if err != nil {
			log.Debug("frame capture failed", "error", err)
			continue
		}
		server.FrameHub().BroadcastBinary(frame)
		debug.FrameLog("frame %dx%d %d bytes\n", source.Size().Width, source.Size().Height, len(frame))
	}
}
