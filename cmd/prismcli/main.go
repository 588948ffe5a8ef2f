// Command prismcli prints, as JSON, how every physical device fares
// against the renderer's requirements.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/prism/core"
	"github.com/devblok/prism/gfx/vkr"
	"github.com/devblok/prism/window"
)

func init() {
	runtime.LockOSThread()
}

var (
	envFile = flag.String("env", ".env", "Load configuration from this dotenv file")
	indent  = flag.Bool("indent", true, "Indent the JSON report")
)

func main() {
	flag.Parse()

	reports, err := inspect()
	if err != nil {
		log.WithError(err).Error("device inspection failed")
		os.Exit(1)
	}

	var bytes []byte
	if *indent {
		bytes, err = json.MarshalIndent(reports, "", "  ")
	} else {
		bytes, err = json.Marshal(reports)
	}
	if err != nil {
		log.WithError(err).Error("encoding report")
		os.Exit(1)
	}
	fmt.Printf("%s\n", bytes)
}

func inspect() ([]vkr.DeviceReport, error) {
	cfg, err := core.LoadConfiguration(*envFile)
	if err != nil {
		return nil, err
	}
	logger, err := core.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	vkr.SetLogger(logger)

	win, err := window.Open(cfg.Window.Backend, window.Options{
		Title:  core.WindowTitle,
		Width:  core.WindowWidth,
		Height: core.WindowHeight,
		Hidden: true,
	})
	if err != nil {
		return nil, err
	}
	defer win.Close()

	drv, err := vkr.NewVulkanDriver(win.InstanceProcAddr())
	if err != nil {
		return nil, err
	}
	cfg.Renderer.InstanceExtensions = win.InstanceExtensions()

	instance, err := vkr.CreateInstance(drv, cfg.Renderer)
	if err != nil {
		return nil, err
	}
	defer drv.DestroyInstance(instance)

	surface, err := win.CreateSurface(instance)
	if err != nil {
		return nil, err
	}
	defer drv.DestroySurface(instance, surface)

	return vkr.InspectDevices(drv, instance, surface, cfg.Renderer.DeviceExtensions)
}
