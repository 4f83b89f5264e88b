package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/asciimate/internal/codec"
	"github.com/san-kum/asciimate/internal/config"
	"github.com/san-kum/asciimate/internal/logx"
	"github.com/san-kum/asciimate/internal/storage"
	"github.com/san-kum/asciimate/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	colorFlag  string
	configFile string
	preset     string

	// conversion
	cols       int
	rampSyms   string
	rampPreset string
	invert     bool
	colorMode  string
	palette    []string
	fps        int
	threshold  float64
	fit        string
	grayscale  bool
	outFormat  string
	output     string
	save       bool
	name       string
	glob       string

	// demo
	pattern    string
	demoFrames int
	demoWidth  int
	demoHeight int
	playAfter  bool

	// playback
	plain bool
	speed float64
	loop  bool
	theme string

	// inspection and export
	dump       bool
	dumpFrames int
	sweep      []float64
	frameNum   int
	cellWidth  float64
	cellHeight float64
	chartPath  string

	// publish
	broker   string
	topic    string
	clientID string
	username string
	password string
	qos      int
	mode     string

	writePreset string
)

// main registers the commands and runs the root command. Without a
// subcommand the library browser opens.
func main() {
	rootCmd := &cobra.Command{
		Use:          "asciimate",
		Short:        "character animation encoder and player",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return viz.RunBrowser(storage.New(dataDir), viz.Options{
				Speed: cfg.Player.Speed,
				Loop:  cfg.Player.Loop,
				Theme: cfg.Player.Theme,
			})
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".asciimate", "library directory")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, notice, warn, error)")
	pf.StringVar(&colorFlag, "color-output", "auto", "terminal colour (auto, on, off)")
	pf.StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")

	encodeCmd := &cobra.Command{
		Use:   "encode [images...]",
		Short: "encode images or a GIF into an animation",
		RunE:  encodeFiles,
	}
	addConvertFlags(encodeCmd)
	addOutputFlags(encodeCmd)
	encodeCmd.Flags().StringVar(&glob, "glob", "", "frame file pattern when the input is a directory")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "encode a synthetic pattern",
		Args:  cobra.NoArgs,
		RunE:  encodeDemo,
	}
	addConvertFlags(demoCmd)
	addOutputFlags(demoCmd)
	demoCmd.Flags().StringVar(&pattern, "pattern", "sweep", "synthetic pattern (sweep, pulse, orbit, static)")
	demoCmd.Flags().IntVar(&demoFrames, "frames", 48, "frame count")
	demoCmd.Flags().IntVar(&demoWidth, "width", 160, "source width in pixels")
	demoCmd.Flags().IntVar(&demoHeight, "height", 90, "source height in pixels")
	demoCmd.Flags().BoolVar(&playAfter, "play", false, "play the result after encoding")

	previewCmd := &cobra.Command{
		Use:   "preview [images...]",
		Short: "convert and draw frames live without encoding",
		RunE:  previewFiles,
	}
	addConvertFlags(previewCmd)
	previewCmd.Flags().StringVar(&glob, "glob", "", "frame file pattern when the input is a directory")

	playCmd := &cobra.Command{
		Use:   "play [file|id]",
		Short: "play an animation",
		Args:  cobra.ExactArgs(1),
		RunE:  playAnimation,
	}
	addPlayFlags(playCmd)
	playCmd.Flags().BoolVar(&plain, "plain", false, "draw directly to the terminal without the interface")

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "pick and play animations from the library",
		Args:  cobra.NoArgs,
		RunE:  browseLibrary,
	}
	addPlayFlags(browseCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect [file|id]",
		Short: "print the header and record summary",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectAnimation,
	}
	inspectCmd.Flags().BoolVar(&dump, "dump", false, "dump decoded structures")
	inspectCmd.Flags().IntVar(&dumpFrames, "records", 3, "records to dump")

	statsCmd := &cobra.Command{
		Use:   "stats [file|id]",
		Short: "plot record sizes and changed cells",
		Args:  cobra.ExactArgs(1),
		RunE:  statsAnimation,
	}
	statsCmd.Flags().Float64SliceVar(&sweep, "sweep", nil, "re-encode at these thresholds and compare sizes")

	convertCmd := &cobra.Command{
		Use:   "convert-format [in] [out]",
		Short: "rewrite an animation in another container format",
		Args:  cobra.ExactArgs(2),
		RunE:  convertFormat,
	}
	convertCmd.Flags().StringVar(&outFormat, "format", "", "output format (binary, json, yaml); default from extension")

	svgCmd := &cobra.Command{
		Use:   "export-svg [file|id]",
		Short: "render one frame as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().IntVar(&frameNum, "frame", 0, "frame index")
	svgCmd.Flags().StringVarP(&output, "output", "o", "", "output path")
	svgCmd.Flags().Float64Var(&cellWidth, "cell-width", 0, "cell width in pixels")
	svgCmd.Flags().Float64Var(&cellHeight, "cell-height", 0, "cell height in pixels")
	svgCmd.Flags().StringVar(&chartPath, "chart", "", "also write the changed-cells chart here")

	txtCmd := &cobra.Command{
		Use:   "export-txt [file|id]",
		Short: "write frames as plain text",
		Args:  cobra.ExactArgs(1),
		RunE:  exportText,
	}
	txtCmd.Flags().IntVar(&frameNum, "frame", -1, "frame index; negative writes every frame")
	txtCmd.Flags().StringVarP(&output, "output", "o", "", "output path (default stdout)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved animations",
		Args:  cobra.NoArgs,
		RunE:  listAnimations,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "remove a saved animation",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteAnimation,
	}

	rampsCmd := &cobra.Command{
		Use:   "ramps",
		Short: "list ramp presets",
		Args:  cobra.NoArgs,
		RunE:  listRamps,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}
	presetsCmd.Flags().StringVar(&writePreset, "write", "", "write the selected --preset to this config file")

	publishCmd := &cobra.Command{
		Use:   "publish [file|id]",
		Short: "stream an animation over MQTT",
		Args:  cobra.ExactArgs(1),
		RunE:  publishAnimation,
	}
	publishCmd.Flags().StringVar(&broker, "broker", config.DefaultBroker, "broker URL")
	publishCmd.Flags().StringVar(&topic, "topic", config.DefaultTopic, "frame topic")
	publishCmd.Flags().StringVar(&clientID, "client-id", "asciimate", "MQTT client id")
	publishCmd.Flags().StringVar(&username, "username", "", "broker username")
	publishCmd.Flags().StringVar(&password, "password", "", "broker password")
	publishCmd.Flags().IntVar(&qos, "qos", 0, "quality of service (0-2)")
	publishCmd.Flags().StringVar(&mode, "mode", "text", "payload mode (text, record)")
	publishCmd.Flags().BoolVar(&loop, "loop", false, "repeat until interrupted")
	publishCmd.Flags().Float64Var(&speed, "speed", 1, "playback speed")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run the jobs of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	rootCmd.AddCommand(encodeCmd, demoCmd, previewCmd, playCmd, browseCmd, inspectCmd,
		statsCmd, convertCmd, svgCmd, txtCmd, listCmd, deleteCmd, rampsCmd, presetsCmd,
		publishCmd, batchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConvertFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&cols, "cols", config.DefaultCols, "grid width in characters")
	f.StringVar(&rampSyms, "ramp", "", "custom ramp, darkest symbol first")
	f.StringVar(&rampPreset, "ramp-preset", "standard", "named ramp")
	f.BoolVar(&invert, "invert", false, "reverse the ramp")
	f.StringVar(&colorMode, "color", "mono", "colour mode (mono, rgb, palette)")
	f.StringSliceVar(&palette, "palette", nil, "palette colours as #rrggbb")
	f.IntVar(&fps, "fps", config.DefaultFPS, "frames per second")
	f.Float64Var(&threshold, "threshold", codec.DefaultThreshold, "changed-cell ratio above which a full frame is stored")
	f.StringVar(&fit, "fit", "", "bound source images to WxH pixels")
	f.BoolVar(&grayscale, "grayscale", false, "desaturate sources before conversion")
}

func addOutputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&outFormat, "format", "", "output format (binary, json, yaml)")
	f.StringVarP(&output, "output", "o", "", "output path")
	f.BoolVar(&save, "save", false, "save into the library")
	f.StringVar(&name, "name", "", "library name")
}

func addPlayFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&speed, "speed", 1, "playback speed")
	f.BoolVar(&loop, "loop", true, "loop playback")
	f.StringVar(&theme, "theme", "default", "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
}

func logger() *logx.Logger {
	lvl, err := logx.ParseLevel(logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return logx.New(os.Stderr, lvl, useColor())
}

func useColor() logx.UseColor {
	c, err := logx.ParseColor(colorFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return c
}

// loadConfig layers a preset or config file under the flags the user set
// explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	f := cmd.Flags()
	if f.Changed("cols") {
		cfg.Cols = cols
	}
	if f.Changed("ramp") {
		cfg.Ramp = rampSyms
	}
	if f.Changed("ramp-preset") {
		cfg.RampPreset = rampPreset
		cfg.Ramp = ""
	}
	if f.Changed("invert") {
		cfg.Invert = invert
	}
	if f.Changed("color") {
		cfg.ColorMode = colorMode
	}
	if f.Changed("palette") {
		cfg.Palette = palette
	}
	if f.Changed("fps") {
		cfg.FPS = fps
	}
	if f.Changed("threshold") {
		cfg.Threshold = threshold
	}
	if f.Changed("fit") {
		w, h, err := parseSize(fit)
		if err != nil {
			return nil, err
		}
		cfg.Fit = config.FitConfig{Width: w, Height: h}
	}
	if f.Changed("grayscale") {
		cfg.Grayscale = grayscale
	}
	if f.Changed("format") {
		cfg.Format = outFormat
	}
	if f.Changed("speed") {
		cfg.Player.Speed = speed
	}
	if f.Changed("loop") {
		cfg.Player.Loop = loop
	}
	if f.Changed("theme") {
		cfg.Player.Theme = theme
	}
	if f.Changed("broker") {
		cfg.MQTT.Broker = broker
	}
	if f.Changed("topic") {
		cfg.MQTT.Topic = topic
	}
	if f.Changed("client-id") {
		cfg.MQTT.ClientID = clientID
	}
	if f.Changed("username") {
		cfg.MQTT.Username = username
	}
	if f.Changed("password") {
		cfg.MQTT.Password = password
	}
	if f.Changed("qos") {
		cfg.MQTT.QoS = qos
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: want WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	if w < 0 || h < 0 {
		return 0, 0, fmt.Errorf("size %q: negative", s)
	}
	return w, h, nil
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func baseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}
