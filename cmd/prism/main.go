// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:generate glslc ../../shaders/shader.vert -o ../../shaders/vert.spv
//go:generate glslc ../../shaders/shader.frag -o ../../shaders/frag.spv

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/gobuffalo/packr"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/prism/core"
	"github.com/devblok/prism/gfx/shader"
	"github.com/devblok/prism/gfx/vkr"
	"github.com/devblok/prism/window"
)

func init() {
	runtime.LockOSThread()
}

var envFile = flag.String("env", ".env", "Load configuration from this dotenv file")

// Profiling
var (
	cpuProfile   = flag.String("cpuprof", "", "Profile CPU usage to file")
	memProfile   = flag.String("memprof", "", "Profile memory usage into a file")
	traceProfile = flag.String("trace", "", "Trace output for profiling")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.WithError(err).Error("prism exited")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := core.LoadConfiguration(*envFile)
	if err != nil {
		return err
	}

	logger, err := core.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	log.SetLevel(logger.GetLevel())
	log.SetFormatter(logger.Formatter)
	vkr.SetLogger(logger)

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	if *traceProfile != "" {
		f, err := os.Create(*traceProfile)
		if err != nil {
			return err
		}
		if err := trace.Start(f); err != nil {
			return err
		}
		defer trace.Stop()
	}

	win, err := window.Open(cfg.Window.Backend, window.Options{
		Title:  core.WindowTitle,
		Width:  core.WindowWidth,
		Height: core.WindowHeight,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	drv, err := vkr.NewVulkanDriver(win.InstanceProcAddr())
	if err != nil {
		return err
	}
	cfg.Renderer.InstanceExtensions = win.InstanceExtensions()

	shaders, closeShaders, err := openShaders(cfg.Shaders)
	if err != nil {
		return err
	}
	defer closeShaders()

	graphics, err := vkr.NewGraphics(drv, win, shaders, cfg.Renderer)
	if err != nil {
		return err
	}
	defer graphics.Release()

	timeService := core.NewTime(cfg.Time)
	defer timeService.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	log.WithFields(log.Fields{
		"backend": cfg.Window.Backend,
		"device":  graphics.Device.Name,
		"fps":     timeService.Fps(),
	}).Info("rendering")

	if err := graphics.Run(ctx, win, timeService.Pace()); err != nil {
		return err
	}
	log.WithField("frames", graphics.Loop.Frames()).Info("window closed")

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return err
		}
	}
	return nil
}

func openShaders(cfg core.ShaderConfiguration) (vkr.ShaderSource, func(), error) {
	switch cfg.Source {
	case shader.KindBox:
		return shader.NewBoxSource(packr.NewBox("../../shaders")), func() {}, nil
	case shader.KindArchive:
		src, err := shader.OpenArchive(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return src, func() { src.Close() }, nil
	default:
		return shader.NewDirSource(cfg.Path), func() {}, nil
	}
}
