// fbxbridge is a CLI utility for inspecting and converting FBX scenes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/fbxbridge"
	"github.com/Faultbox/fbxbridge/internal/config"
	"github.com/Faultbox/fbxbridge/internal/logger"
	"github.com/Faultbox/fbxbridge/pkg/term"
)

func main() {
	// Parse global flags first; the command and its arguments follow them.
	config.ParseFlags()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "info":
		cmdInfo(args)
	case "dump":
		cmdDump(args)
	case "convert":
		cmdConvert(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`fbxbridge - FBX scene inspection and conversion utility

Usage:
  fbxbridge [global options] <command> [options]

Global options:
  -config <path>   Explicit config file
  -debug           Enable debug logging
  -rate <n>        Animation bake rate in samples per second
  -format <fmt>    Default output format: binary or ascii
  -strict          Fail on unresolved scene references

Commands:
  info <file.fbx>                 Show scene summary (counts, version)
  dump <file.fbx>                 Dump the extracted scene term
  convert <in.fbx> <out.fbx>      Re-encode a scene (-format binary|ascii)

Examples:
  fbxbridge info model.fbx
  fbxbridge -rate 60 dump model.fbx
  fbxbridge convert -format ascii model.fbx model_ascii.fbx`)
}

// loadConfig loads file/flag configuration and initializes logging.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// converterFrom builds a Converter carrying the configured options.
func converterFrom(cfg *config.Config) fbxbridge.Converter {
	return fbxbridge.Converter{
		SampleRate: cfg.Bake.SampleRate,
		Strict:     cfg.Write.Strict,
		Version:    cfg.Write.Version,
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: fbxbridge info <file.fbx>")
		os.Exit(1)
	}

	conv := converterFrom(loadConfig())
	scene, err := conv.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	version, _ := scene.String("version")
	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Version:   %s\n", version)
	fmt.Printf("Nodes:     %d\n", listLen(scene, "nodes"))
	fmt.Printf("Meshes:    %d\n", listLen(scene, "meshes"))
	fmt.Printf("Materials: %d\n", listLen(scene, "materials"))
	fmt.Printf("Textures:  %d\n", listLen(scene, "textures"))

	anims, _ := scene.Maps("animations")
	fmt.Printf("Animations: %d\n", len(anims))
	for _, a := range anims {
		name, _ := a.String("name")
		keys, _ := a.Maps("keyframes")
		fmt.Printf("  %-24s %d keyframes\n", name, len(keys))
	}
}

func listLen(m *term.Map, key string) int {
	entries, _ := m.Maps(key)
	return len(entries)
}

func cmdDump(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: fbxbridge dump <file.fbx>")
		os.Exit(1)
	}

	conv := converterFrom(loadConfig())
	scene, err := conv.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(scene.Dump())
}

func cmdConvert(args []string) {
	cfg := loadConfig()

	fs, format := convertFlagSet(cfg)
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: fbxbridge convert [-format binary|ascii] <in.fbx> <out.fbx>")
		os.Exit(1)
	}
	in, out := fs.Arg(0), fs.Arg(1)

	conv := converterFrom(cfg)

	scene, err := conv.Load(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	written, err := conv.Save(out, scene, fbxbridge.ParseFormat(*format))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", written)
}

// convertFlagSet builds convert's flag set; the configured write format is
// the -format default.
func convertFlagSet(cfg *config.Config) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	format := fs.String("format", cfg.Write.Format, "Output format: binary or ascii")
	return fs, format
}
