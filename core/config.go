package core

import (
	"os"
	"strconv"
	"strings"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/devblok/prism/gfx/shader"
	"github.com/devblok/prism/gfx/vkr"
)

// Window title and size. These are not configurable.
const (
	WindowTitle  = "Vulkan"
	WindowWidth  = 720
	WindowHeight = 560
)

// Window backends
const (
	BackendSDL  = "sdl"
	BackendGLFW = "glfw"
)

// Configuration defines a global configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Renderer vkr.Configuration
	Window   WindowConfiguration
	Shaders  ShaderConfiguration
	Log      LogConfiguration
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int
}

// WindowConfiguration picks the windowing library.
type WindowConfiguration struct {
	Backend string
}

// ShaderConfiguration says where compiled shaders come from.
// Source is one of dir, box or kar, Path is the directory or archive.
type ShaderConfiguration struct {
	Source string
	Path   string
}

// LogConfiguration is used to configure logging
type LogConfiguration struct {
	Level  string
	Format string
}

// DefaultConfiguration returns the configuration used
// when the environment sets nothing.
func DefaultConfiguration() Configuration {
	return Configuration{
		Renderer: vkr.DefaultConfiguration(),
		Window: WindowConfiguration{
			Backend: BackendSDL,
		},
		Shaders: ShaderConfiguration{
			Source: shader.KindDir,
			Path:   "./shaders",
		},
		Log: LogConfiguration{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfiguration loads the given dotenv files into the environment,
// then reads every PRISM_ key on top of the defaults. Files that do not
// exist are skipped.
func LoadConfiguration(envFiles ...string) (Configuration, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return Configuration{}, errors.Wrapf(err, "godotenv.Load(%s)", file)
		}
	}
	envy.Reload()

	cfg := DefaultConfiguration()
	var err error

	if cfg.Time.FramesPerSecond, err = envInt("PRISM_FPS", cfg.Time.FramesPerSecond); err != nil {
		return Configuration{}, err
	}
	if cfg.Time.FramesPerSecond < 0 {
		return Configuration{}, errors.Errorf("PRISM_FPS: %d is negative", cfg.Time.FramesPerSecond)
	}

	swapchainSize, err := envInt("PRISM_SWAPCHAIN_SIZE", int(cfg.Renderer.SwapchainSize))
	if err != nil {
		return Configuration{}, err
	}
	if swapchainSize < 1 {
		return Configuration{}, errors.Errorf("PRISM_SWAPCHAIN_SIZE: %d is less than 1", swapchainSize)
	}
	cfg.Renderer.SwapchainSize = uint32(swapchainSize)

	if cfg.Renderer.PreferSRGB, err = envBool("PRISM_PREFER_SRGB", cfg.Renderer.PreferSRGB); err != nil {
		return Configuration{}, err
	}

	cfg.Renderer.VertexShader = envy.Get("PRISM_VERTEX_SHADER", cfg.Renderer.VertexShader)
	cfg.Renderer.FragmentShader = envy.Get("PRISM_FRAGMENT_SHADER", cfg.Renderer.FragmentShader)

	cfg.Window.Backend = strings.ToLower(envy.Get("PRISM_WINDOW_BACKEND", cfg.Window.Backend))
	switch cfg.Window.Backend {
	case BackendSDL, BackendGLFW:
	default:
		return Configuration{}, errors.Errorf("PRISM_WINDOW_BACKEND: unknown backend %q", cfg.Window.Backend)
	}

	cfg.Shaders.Source = strings.ToLower(envy.Get("PRISM_SHADER_SOURCE", cfg.Shaders.Source))
	switch cfg.Shaders.Source {
	case shader.KindDir, shader.KindBox, shader.KindArchive:
	default:
		return Configuration{}, errors.Errorf("PRISM_SHADER_SOURCE: unknown source %q", cfg.Shaders.Source)
	}
	cfg.Shaders.Path = envy.Get("PRISM_SHADER_PATH", cfg.Shaders.Path)

	cfg.Log.Level = envy.Get("PRISM_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(envy.Get("PRISM_LOG_FORMAT", cfg.Log.Format))

	return cfg, nil
}

func envInt(key string, fallback int) (int, error) {
	value := envy.Get(key, "")
	if value == "" {
		return fallback, nil
	}
	num, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrap(err, key)
	}
	return num, nil
}

func envBool(key string, fallback bool) (bool, error) {
	value := envy.Get(key, "")
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.Wrap(err, key)
	}
	return b, nil
}
