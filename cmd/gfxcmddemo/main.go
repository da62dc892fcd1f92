// Command gfxcmddemo records a synthetic frame from several producers in
// parallel, submits it to a device and prints the serialized command buffer
// and, for the trace device, the executed call log.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gfxcmd"
	"github.com/gogpu/gfxcmd/backend/trace"
	"github.com/gogpu/gfxcmd/backend/wgpu"
	"github.com/gogpu/gfxcmd/frame"
	"github.com/gogpu/gfxcmd/submit"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		frames     = flag.Int("frames", 2, "number of frames to render")
		backend    = flag.String("backend", trace.Name, "device: trace or wgpu")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	gfxcmd.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*configPath, *backend, *frames); err != nil {
		log.Fatalf("gfxcmddemo: %v", err)
	}
}

func run(configPath, backend string, frames int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	shaders, err := compileShaders()
	if err != nil {
		return err
	}
	gfxcmd.Logger().Info("shaders compiled", "spirv_words", shaders.words())

	dev, err := submit.NewDevice(backend)
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, submit.Devices())
	}
	if gpu, ok := dev.(*wgpu.Device); ok {
		defer gpu.Close()
		if err := setupGPU(gpu, shaders); err != nil {
			return err
		}
	}

	f, err := frame.New(dev, cfg)
	if err != nil {
		return err
	}
	defer f.Close()

	producers := []struct {
		name string
		fn   frame.ProducerFunc
	}{
		{"cull", cull},
		{"shadows", shadows},
		{"opaque", opaque},
		{"debug", debugLines},
	}
	for _, p := range producers {
		if err := f.Add(p.name, p.fn); err != nil {
			return err
		}
	}

	tr, _ := dev.(*trace.Device)
	for i := range frames {
		if tr != nil {
			tr.Reset()
		}
		if err := f.Render(); err != nil {
			return err
		}
		fmt.Printf("== frame %d (%s)\n", i, f.Ring())
		if _, err := f.Merged().WriteTo(os.Stdout); err != nil {
			return err
		}
		if tr != nil {
			fmt.Printf("-- calls\n%s", tr.Log())
		}
	}

	records, draws := f.Executor().Stats()
	scratch := f.Executor().Scratch()
	gfxcmd.Logger().Info("done", "frames", f.Frames(), "records", records, "draws", draws,
		"scratch_cap", scratch.Cap(), "scratch_grows", scratch.Grows())
	return nil
}

func loadConfig(path string) (gfxcmd.Config, error) {
	if path == "" {
		return gfxcmd.DefaultConfig(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return gfxcmd.Config{}, err
	}
	defer file.Close()
	return gfxcmd.LoadConfig(file)
}
