package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gopxl/beep/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"xtlz-piano/assets"
	"xtlz-piano/audio"
	"xtlz-piano/config"
	"xtlz-piano/debug"
	"xtlz-piano/engine"
	"xtlz-piano/midi"
	"xtlz-piano/pitch"
	"xtlz-piano/theme"
	"xtlz-piano/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/xtlz-piano/config.json)")
	assetDir := flag.String("assets", "", "directory holding the note files")
	stepMillis := flag.Int("step", 0, "auto-play milliseconds per notation symbol")
	prepare := flag.Bool("prepare", false, "generate missing piano notes, validate the set and exit")
	debugFlag := flag.Bool("debug", false, "write a debug log to "+debug.DefaultPath())
	noMIDI := flag.Bool("no-midi", false, "do not listen for MIDI keyboards")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal("config: %v", err)
	}
	if *assetDir != "" {
		cfg.AssetDir = *assetDir
	}
	if cfg.AssetDir == "" {
		cfg.AssetDir = executableDir()
	}
	if *stepMillis > 0 {
		cfg.StepMillis = *stepMillis
	}
	if *noMIDI {
		cfg.MIDI.Enabled = false
	}

	if *debugFlag || cfg.Debug {
		if err := debug.Enable(debug.DefaultPath()); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}
	debug.Log("main", "assets=%s step=%s midi=%v", cfg.AssetDir, cfg.Step(), cfg.MIDI.Enabled)

	res := &assets.Resolver{
		Dir:          cfg.AssetDir,
		ScaleFormat:  cfg.ScaleFormat,
		ChromaticDir: cfg.ChromaticDir,
		ChromaticExt: cfg.ChromaticExt,
	}

	if *prepare {
		os.Exit(runPrepare(cfg, res))
	}

	var notices []string
	if missing := res.MissingChromatic(); len(missing) > 0 {
		notices = append(notices, fmt.Sprintf("piano mode: %d of %d note files missing (%s), run with -prepare",
			len(missing), assets.ChromaticKeys, strings.Join(missing, " ")))
	}

	th, err := theme.Load(cfg.Palette)
	if err != nil {
		fatal("palette: %v", err)
	}

	spk, err := audio.OpenSpeaker(beep.SampleRate(cfg.SampleRate), cfg.Buffer())
	if err != nil {
		fatal("%v", err)
	}
	defer spk.Close()

	player := audio.NewPlayer(spk)
	reg := engine.New(engine.StarterFunc(func(path string) (engine.Voice, error) {
		v, err := player.Start(path)
		if err != nil {
			return nil, err
		}
		return v, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reg.Run(ctx)

	// Create MIDI device manager (handles hot-plug)
	var deviceMgr *midi.DeviceManager
	if cfg.MIDI.Enabled {
		deviceMgr = midi.NewDeviceManager(cfg.MIDI.PortFilter)
		go deviceMgr.Run(ctx)
	}

	m := tui.NewModel(tui.Options{
		Registry:     reg,
		Resolver:     res,
		DeviceMgr:    deviceMgr,
		Theme:        th,
		Step:         cfg.Step(),
		KeymapFile:   cfg.Path(cfg.KeymapFile),
		NotationFile: cfg.Path(cfg.NotationFile),
		Notices:      notices,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	reg.StopAll()
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// runPrepare fills in missing piano notes and reports the set; returns the exit code
func runPrepare(cfg *config.Config, res *assets.Resolver) int {
	rep, err := pitch.Prepare(pitch.Options{
		Base:     cfg.Path(cfg.BaseSample),
		BaseNote: cfg.BaseNote,
		Resolver: res,
	})
	fmt.Printf("prepare: %s\n", rep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "prepare: %v\n", err)
		return 1
	}

	check := pitch.Validate(res)
	fmt.Printf("validate: %s\n", check)
	if !check.OK() {
		return 1
	}
	return 0
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
