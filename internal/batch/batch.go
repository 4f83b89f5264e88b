// Package batch runs scripted encode jobs described in YAML.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/asciimate/internal/config"
	"github.com/san-kum/asciimate/internal/format"
	"github.com/san-kum/asciimate/internal/logx"
	"github.com/san-kum/asciimate/internal/metrics"
	"github.com/san-kum/asciimate/internal/pipeline"
	"github.com/san-kum/asciimate/internal/raster"
	"github.com/san-kum/asciimate/internal/storage"
)

const (
	defaultSynthWidth  = 160
	defaultSynthHeight = 90
	defaultSynthFrames = 24
)

// Scenario is a named list of jobs sharing base settings.
type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Preset      string    `yaml:"preset"`
	Settings    yaml.Node `yaml:"settings"`
	Jobs        []Job     `yaml:"jobs"`

	dir string
}

// Job encodes one source. Exactly one of Inputs or Pattern selects the
// frames. Settings are decoded over the scenario's configuration.
type Job struct {
	Name     string    `yaml:"name"`
	Inputs   []string  `yaml:"inputs"`
	Glob     string    `yaml:"glob"`
	Pattern  string    `yaml:"pattern"`
	Frames   int       `yaml:"frames"`
	Width    int       `yaml:"width"`
	Height   int       `yaml:"height"`
	Preset   string    `yaml:"preset"`
	Settings yaml.Node `yaml:"settings"`
	Output   string    `yaml:"output"`
	Save     bool      `yaml:"save"`
	Sweep    []float64 `yaml:"sweep"`
}

type JobResult struct {
	Name    string
	Frames  int
	Bytes   int
	Output  string
	ID      string
	Metrics map[string]float64
	Sweep   []SweepResult
	Elapsed time.Duration
}

// LoadScenario loads a scenario from a YAML file. Relative job paths are
// resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	sc.dir = filepath.Dir(path)
	return sc, nil
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if len(sc.Jobs) == 0 {
		return nil, fmt.Errorf("scenario %q has no jobs", sc.Name)
	}
	for i, j := range sc.Jobs {
		if (len(j.Inputs) == 0) == (j.Pattern == "") {
			return nil, fmt.Errorf("job %d (%s): set exactly one of inputs or pattern", i+1, j.Name)
		}
	}
	return &sc, nil
}

// Runner executes scenarios. Store may be nil when no job saves.
type Runner struct {
	Store *storage.Store
	Log   *logx.Logger
}

// Run executes every job in order and stops at the first failure,
// returning the results of the jobs that completed.
func (r *Runner) Run(ctx context.Context, sc *Scenario) ([]JobResult, error) {
	log := r.logger().Section("batch")
	results := make([]JobResult, 0, len(sc.Jobs))

	for i, job := range sc.Jobs {
		log.Infof("job %d/%d: %s", i+1, len(sc.Jobs), job.Name)
		res, err := r.runJob(ctx, sc, job)
		if err != nil {
			return results, fmt.Errorf("job %d (%s): %w", i+1, job.Name, err)
		}
		results = append(results, *res)
	}
	log.Noticef("scenario %s: %d jobs done", sc.Name, len(results))
	return results, nil
}

func (r *Runner) logger() *logx.Logger {
	if r.Log == nil {
		return logx.Discard()
	}
	return r.Log
}

func (r *Runner) runJob(ctx context.Context, sc *Scenario, job Job) (*JobResult, error) {
	cfg, err := jobConfig(sc, job)
	if err != nil {
		return nil, err
	}

	src, srcFPS, err := r.openSource(sc, job, cfg)
	if err != nil {
		return nil, err
	}
	if srcFPS > 0 && !setsKey(&sc.Settings, "fps") && !setsKey(&job.Settings, "fps") {
		cfg.FPS = srcFPS
	}

	pc, err := cfg.Pipeline()
	if err != nil {
		return nil, err
	}
	p, err := pipeline.New(pc)
	if err != nil {
		return nil, err
	}
	p.SetLogger(r.logger())
	for _, m := range metrics.Default(pc.Converter.ColorMode.HasColor()) {
		p.AddMetric(m)
	}

	run, err := p.Run(ctx, src)
	if err != nil {
		return nil, err
	}
	data, err := format.Marshal(run.Animation)
	if err != nil {
		return nil, err
	}

	res := &JobResult{
		Name:    job.Name,
		Frames:  len(run.Animation.Frames),
		Bytes:   len(data),
		Metrics: run.Metrics,
		Elapsed: run.Elapsed,
	}

	if job.Output != "" {
		out := sc.resolve(job.Output)
		f, err := format.FormatFromPath(out)
		if err != nil {
			if f, err = cfg.OutputFormat(); err != nil {
				return nil, err
			}
		}
		if err := format.Save(out, f, run.Animation); err != nil {
			return nil, err
		}
		res.Output = out
	}
	if job.Save {
		if r.Store == nil {
			return nil, fmt.Errorf("save requested without a library")
		}
		if err := r.Store.Init(); err != nil {
			return nil, err
		}
		source := job.Pattern
		if source == "" {
			source = job.Inputs[0]
		}
		if res.ID, err = r.Store.Save(job.Name, source, run.Animation, run.Metrics); err != nil {
			return nil, err
		}
	}
	if len(job.Sweep) > 0 {
		if res.Sweep, err = Sweep(run.Animation, job.Sweep); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (r *Runner) openSource(sc *Scenario, job Job, cfg *config.Config) (raster.Source, int, error) {
	if job.Pattern != "" {
		w, h, n := job.Width, job.Height, job.Frames
		if w == 0 {
			w = defaultSynthWidth
		}
		if h == 0 {
			h = defaultSynthHeight
		}
		if n == 0 {
			n = defaultSynthFrames
		}
		src, err := raster.NewSynthetic(job.Pattern, w, h, n)
		return src, 0, err
	}
	inputs := make([]string, len(job.Inputs))
	for i, in := range job.Inputs {
		inputs[i] = sc.resolve(in)
	}
	return raster.Open(inputs, job.Glob, cfg.LoadOptions())
}

// jobConfig layers defaults, the scenario preset and settings, then the
// job preset and settings.
func jobConfig(sc *Scenario, job Job) (*config.Config, error) {
	cfg := config.DefaultConfig()
	for _, name := range []string{sc.Preset, job.Preset} {
		if name == "" {
			continue
		}
		p := config.GetPreset(name)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %v)", name, config.ListPresets())
		}
		cfg = p
	}
	for _, n := range []*yaml.Node{&sc.Settings, &job.Settings} {
		if n.Kind == 0 {
			continue
		}
		if err := n.Decode(cfg); err != nil {
			return nil, fmt.Errorf("settings: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setsKey(n *yaml.Node, key string) bool {
	if n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

func (sc *Scenario) resolve(path string) string {
	if sc.dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(sc.dir, path)
}
