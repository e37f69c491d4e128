package main

import (
	"os"
	"strings"

	"github.com/Alia5/flightstick/internal/cmd"
	"github.com/Alia5/flightstick/internal/config"
	"github.com/Alia5/flightstick/internal/configpaths"
	"github.com/Alia5/flightstick/internal/log"

	_ "github.com/Alia5/flightstick/internal/registry" // Register all output backends

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("flightstick"),
		kong.Description("Turns a mouse into a virtual flight joystick"),
		kong.UsageOnError(),
		kong.Vars{"version": cmd.Version},
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	var frames log.MultiFrames
	if cli.Log.FrameFile != "" {
		f, err := os.OpenFile(cli.Log.FrameFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open frame log file", "file", cli.Log.FrameFile, "error", err)
		} else {
			frames = append(frames, log.NewFrameLogger(f))
			closeFiles = append(closeFiles, f)
		}
	}
	if sf := log.NewSlogFrames(logger); sf != nil {
		frames = append(frames, sf)
	}

	ctx.Bind(logger)
	ctx.Bind(frames)

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("FLIGHTSTICK_CONFIG"); v != "" {
		return v
	}
	return ""
}
