package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/batch"
	"github.com/san-kum/asciimate/internal/config"
	"github.com/san-kum/asciimate/internal/convert"
	"github.com/san-kum/asciimate/internal/format"
	"github.com/san-kum/asciimate/internal/logx"
	"github.com/san-kum/asciimate/internal/metrics"
	"github.com/san-kum/asciimate/internal/pipeline"
	"github.com/san-kum/asciimate/internal/raster"
	"github.com/san-kum/asciimate/internal/storage"
	"github.com/san-kum/asciimate/internal/tui"
	"github.com/san-kum/asciimate/internal/viz"
)

func encodeFiles(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no inputs given")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	src, srcFPS, err := raster.Open(args, glob, cfg.LoadOptions())
	if err != nil {
		return err
	}
	// GIF timing wins unless a rate was asked for.
	if srcFPS > 0 && !cmd.Flags().Changed("fps") && configFile == "" {
		cfg.FPS = min(srcFPS, 255)
	}

	label := name
	if label == "" {
		label = baseName(args[0])
	}
	_, err = encode(cmd, cfg, src, label, args[0])
	return err
}

func encodeDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	src, err := raster.NewSynthetic(pattern, demoWidth, demoHeight, demoFrames)
	if err != nil {
		return err
	}

	label := name
	if label == "" {
		label = pattern
	}
	a, err := encode(cmd, cfg, src, label, "pattern:"+pattern)
	if err != nil {
		return err
	}
	if !playAfter {
		return nil
	}
	return viz.Run(a, viz.Options{
		Name:     label,
		Speed:    cfg.Player.Speed,
		Loop:     cfg.Player.Loop,
		Theme:    cfg.Player.Theme,
		Autoplay: true,
	})
}

// encode runs the pipeline over src and writes the result to the output
// file, the library, or both. Without either it writes <label>.<ext>.
func encode(cmd *cobra.Command, cfg *config.Config, src raster.Source, label, source string) (*anim.Animation, error) {
	pc, err := cfg.Pipeline()
	if err != nil {
		return nil, err
	}
	p, err := pipeline.New(pc)
	if err != nil {
		return nil, err
	}
	log := logger()
	p.SetLogger(log)
	for _, m := range metrics.Default(pc.Converter.ColorMode.HasColor()) {
		p.AddMetric(m)
	}

	ctx, stop := interruptContext()
	defer stop()

	res, err := p.Run(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("encode failed: %w", err)
	}
	a := res.Animation

	f, err := cfg.OutputFormat()
	if err != nil {
		return nil, err
	}
	out := output
	if out != "" && !cmd.Flags().Changed("format") {
		if ext, err := format.FormatFromPath(out); err == nil {
			f = ext
		}
	}
	if out == "" && !save {
		out = label + f.Ext()
	}
	if out != "" {
		if err := format.Save(out, f, a); err != nil {
			return nil, err
		}
		log.Section("encode").Infof("wrote %s (%s)", out, f)
	}
	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return nil, err
		}
		id, err := st.Save(label, source, a, res.Metrics)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Saved: %s\n", id)
	}

	m := a.Meta
	fmt.Printf("Grid: %dx%d  Frames: %d  FPS: %d  Duration: %.2fs  Color: %s\n",
		m.Cols, m.Rows, m.FrameCount, m.FPS, m.Duration(), m.ColorMode)
	printMetrics(res.Metrics)
	fmt.Printf("Elapsed: %v\n", res.Elapsed)
	return a, nil
}

func printMetrics(ms map[string]float64) {
	names := make([]string, 0, len(ms))
	for n := range ms {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %-16s %.4f\n", n, ms[n])
	}
}

// previewFiles converts sources at the configured rate and draws them as
// they finish. Nothing is encoded or written.
func previewFiles(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no inputs given")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	src, _, err := raster.Open(args, glob, cfg.LoadOptions())
	if err != nil {
		return err
	}
	pc, err := cfg.Pipeline()
	if err != nil {
		return err
	}
	p, err := pipeline.New(pc)
	if err != nil {
		return err
	}
	log := logger()
	p.SetLogger(log)

	w, color := logx.Terminal(os.Stdout, useColor())

	var r *tui.LiveRenderer
	ctx, stop := interruptContext()
	defer stop()

	dropped, err := p.Preview(ctx, src, func(res convert.Result) {
		if r == nil {
			meta := anim.Meta{
				Version:    anim.Version,
				Cols:       uint16(pc.Converter.Cols),
				Rows:       uint16(res.Rows),
				FPS:        uint8(pc.FPS),
				FrameCount: uint16(min(src.Len(), 65535)),
				ColorMode:  pc.Converter.ColorMode,
			}
			r = tui.NewLiveRenderer(w, baseName(args[0]), meta, color)
			r.Start()
		}
		r.Render(int(res.Seq)-1, res.Grid)
	})
	if r != nil {
		r.Stop()
		fmt.Fprintln(os.Stdout)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Section("preview").Infof("%d frames drawn, %d dropped", src.Len()-int(dropped), dropped)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := batch.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := interruptContext()
	defer stop()

	runner := &batch.Runner{Store: storage.New(dataDir), Log: logger()}
	results, err := runner.Run(ctx, sc)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tFRAMES\tBYTES\tKEYFRAMES\tDELTA RATIO\tOUTPUT\tID\tELAPSED")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.0f\t%.3f\t%s\t%s\t%v\n",
			r.Name, r.Frames, r.Bytes, r.Metrics["keyframes"], r.Metrics["delta_ratio"],
			r.Output, r.ID, r.Elapsed.Round(time.Millisecond))
	}
	tw.Flush()

	for _, r := range results {
		if best, ok := batch.Best(r.Sweep); ok {
			fmt.Printf("%s: smallest at threshold %.2f (%d bytes)\n", r.Name, best.Threshold, best.Bytes)
		}
	}
	return err
}
