package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/asciimate/internal/batch"
	"github.com/san-kum/asciimate/internal/config"
	"github.com/san-kum/asciimate/internal/decoder"
	"github.com/san-kum/asciimate/internal/export"
	"github.com/san-kum/asciimate/internal/format"
	"github.com/san-kum/asciimate/internal/metrics"
	"github.com/san-kum/asciimate/internal/ramp"
	"github.com/san-kum/asciimate/internal/storage"
)

func inspectAnimation(cmd *cobra.Command, args []string) error {
	a, label, err := storage.New(dataDir).Open(args[0])
	if err != nil {
		return err
	}
	m := a.Meta
	series, ms := metrics.Analyze(a)

	fmt.Printf("Name:     %s\n", label)
	fmt.Printf("Version:  %d\n", m.Version)
	fmt.Printf("Grid:     %dx%d (%d cells)\n", m.Cols, m.Rows, m.Cells())
	fmt.Printf("FPS:      %d\n", m.FPS)
	fmt.Printf("Frames:   %d (%.2fs)\n", m.FrameCount, m.Duration())
	fmt.Printf("Color:    %s\n", m.ColorMode)
	fmt.Printf("Ramp:     %q (%d levels)\n", ramp.Ramp(m.Ramp).String(), len(m.Ramp))
	if len(m.Palette) > 0 {
		hex := make([]string, len(m.Palette))
		for i, c := range m.Palette {
			hex[i] = c.String()
		}
		fmt.Printf("Palette:  %s\n", strings.Join(hex, " "))
	}
	fmt.Printf("Records:  %d bytes + %d header\n", series.TotalBytes(), format.HeaderSize)
	printMetrics(ms)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\n#\tTYPE\tCHANGES\tBYTES")
	for i := 0; i < series.Len(); i++ {
		fmt.Fprintf(tw, "%d\t%s\t%.0f\t%.0f\n", i, series.Kinds[i], series.Changes[i], series.Sizes[i])
	}
	tw.Flush()

	if dump {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
		fmt.Println("\nMeta:")
		cfg.Dump(m)
		for i := 0; i < dumpFrames && i < len(a.Frames); i++ {
			fmt.Printf("\nRecord %d:\n", i)
			cfg.Dump(a.Frames[i])
		}
	}
	return nil
}

func statsAnimation(cmd *cobra.Command, args []string) error {
	a, label, err := storage.New(dataDir).Open(args[0])
	if err != nil {
		return err
	}
	series, ms := metrics.Analyze(a)

	if series.Len() > 1 {
		fmt.Println(asciigraph.Plot(series.Sizes,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(label+" record bytes")))
		fmt.Println()
		fmt.Println(asciigraph.Plot(series.Changes,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(label+" changed cells")))
		fmt.Println()
	}
	printMetrics(ms)

	if len(sweep) == 0 {
		return nil
	}
	results, err := batch.Sweep(a, sweep)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nTHRESHOLD\tBYTES\tKEYFRAMES\tDELTA RATIO")
	for _, r := range results {
		fmt.Fprintf(tw, "%.2f\t%d\t%d\t%.3f\n", r.Threshold, r.Bytes, r.Keyframes, r.DeltaRatio)
	}
	tw.Flush()
	if best, ok := batch.Best(results); ok {
		fmt.Printf("Smallest: threshold %.2f (%d bytes)\n", best.Threshold, best.Bytes)
	}
	return nil
}

func convertFormat(cmd *cobra.Command, args []string) error {
	a, in, err := format.Load(args[0])
	if err != nil {
		return err
	}
	out := format.Unknown
	if outFormat != "" {
		if out, err = format.ParseFormat(outFormat); err != nil {
			return err
		}
	} else if out, err = format.FormatFromPath(args[1]); err != nil {
		return err
	}
	if err := format.Save(args[1], out, a); err != nil {
		return err
	}
	fmt.Printf("Converted %s (%s) -> %s (%s)\n", args[0], in, args[1], out)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	a, label, err := storage.New(dataDir).Open(args[0])
	if err != nil {
		return err
	}
	res, err := decoder.ResolveAnimation(a)
	if err != nil {
		return err
	}

	out := output
	if out == "" {
		out = fmt.Sprintf("%s_%03d.svg", baseName(label), frameNum)
	}
	opts := export.SVGOptions{CellWidth: cellWidth, CellHeight: cellHeight}
	if err := export.SaveFrame(out, res, frameNum, true, opts); err != nil {
		return err
	}
	fmt.Printf("Exported frame %d to %s\n", frameNum, out)

	if chartPath != "" {
		series, _ := metrics.Analyze(a)
		svg := export.SeriesToSVG(series.Changes, 800, 200, "#00ff00")
		if svg == "" {
			return fmt.Errorf("chart needs at least two frames")
		}
		if err := os.WriteFile(chartPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("Exported chart to %s\n", chartPath)
	}
	return nil
}

func exportText(cmd *cobra.Command, args []string) error {
	a, _, err := storage.New(dataDir).Open(args[0])
	if err != nil {
		return err
	}
	res, err := decoder.ResolveAnimation(a)
	if err != nil {
		return err
	}

	if frameNum >= 0 {
		if output != "" {
			return export.SaveFrame(output, res, frameNum, false, export.SVGOptions{})
		}
		g, err := export.Frame(res, frameNum)
		if err != nil {
			return err
		}
		fmt.Print(export.GridToText(g, res.Meta))
		return nil
	}

	if output == "" {
		return export.WriteText(os.Stdout, res)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteText(f, res)
}

func listAnimations(cmd *cobra.Command, args []string) error {
	entries, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No saved animations")
		return nil
	}
	return storage.WriteTable(os.Stdout, entries)
}

func deleteAnimation(cmd *cobra.Command, args []string) error {
	if err := storage.New(dataDir).Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func listRamps(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLEVELS\tSYMBOLS")
	for _, n := range ramp.PresetNames() {
		r, err := ramp.Preset(n)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", n, len(r), r)
	}
	return tw.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	if writePreset != "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := config.Save(writePreset, cfg); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", writePreset)
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCOLS\tRAMP\tCOLOR\tFPS\tTHRESHOLD\tFIT")
	for _, n := range config.ListPresets() {
		c := config.GetPreset(n)
		fit := "-"
		if c.Fit.Width > 0 || c.Fit.Height > 0 {
			fit = fmt.Sprintf("%dx%d", c.Fit.Width, c.Fit.Height)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%.2f\t%s\n", n, c.Cols, c.RampPreset, c.ColorMode, c.FPS, c.Threshold, fit)
	}
	return tw.Flush()
}
