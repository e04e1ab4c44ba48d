package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/pthm/hxel"
	"github.com/pthm/hxel/examples/components"
	"github.com/pthm/hxel/lib/generator"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

const (
	configKey    = "config"
	attrKey      = "attr"
	setKey       = "set"
	statsKey     = "stats"
	restoreKey   = "restore"
	sensitiveKey = "sensitive"
	dryRunKey    = "dry-run"
)

var stdout io.Writer = os.Stdout

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "hxel",
		Usage: "Render and inspect reactive custom elements",
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "Mount an element, apply attributes and properties, print its HTML",
				ArgsUsage: "<tag>",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringSliceFlag{Name: attrKey, Usage: "host attribute as name=value (repeatable)"},
					&cli.StringSliceFlag{Name: setKey, Usage: "property assignment as name=value (repeatable)"},
					&cli.StringFlag{Name: restoreKey, Usage: "snapshot to restore before rendering"},
					&cli.BoolFlag{Name: sensitiveKey, Usage: "the snapshot is encrypted"},
					&cli.BoolFlag{Name: statsKey, Usage: "print render statistics to stderr"},
				},
				Action: runRender,
			},
			{
				Name:      "describe",
				Usage:     "Print the property table of defined elements",
				ArgsUsage: "[tag...]",
				Flags:     []cli.Flag{configFlag()},
				Action:    runDescribe,
			},
			{
				Name:      "snapshot",
				Usage:     "Mount an element and print a signed or encrypted snapshot of its state",
				ArgsUsage: "<tag>",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringSliceFlag{Name: attrKey, Usage: "host attribute as name=value (repeatable)"},
					&cli.StringSliceFlag{Name: setKey, Usage: "property assignment as name=value (repeatable)"},
					&cli.BoolFlag{Name: sensitiveKey, Usage: "encrypt instead of sign"},
				},
				Action: runSnapshot,
			},
			{
				Name:      "generate",
				Usage:     "Generate constructors and typed accessors (*_hx.go) for components",
				ArgsUsage: "[packages]",
				Flags:     []cli.Flag{dryRunFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return generator.New(generator.Options{DryRun: cmd.Bool(dryRunKey)}).Generate(patterns(cmd)...)
				},
			},
			{
				Name:      "clean",
				Usage:     "Remove generated files (*_hx.go)",
				ArgsUsage: "[packages]",
				Flags:     []cli.Flag{dryRunFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return generator.New(generator.Options{DryRun: cmd.Bool(dryRunKey)}).Clean(patterns(cmd)...)
				},
			},
			{
				Name:  "version",
				Usage: "Print version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(stdout, "hxel version %s\n", version)
					return nil
				},
			},
		},
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{Name: configKey, Usage: "path to a YAML config file"}
}

func dryRunFlag() cli.Flag {
	return &cli.BoolFlag{Name: dryRunKey, Usage: "show what would change without writing files"}
}

// patterns defaults to every package below the working directory.
func patterns(cmd *cli.Command) []string {
	if args := cmd.Args().Slice(); len(args) > 0 {
		return args
	}
	return []string{"./..."}
}

func loadConfig(cmd *cli.Command) (hxel.Config, error) {
	if path := cmd.String(configKey); path != "" {
		return hxel.LoadConfig(path)
	}
	return hxel.DefaultConfig(), nil
}

// session is one mounted element plus the collaborators built from config.
type session struct {
	cfg     hxel.Config
	reg     *hxel.Registry
	prom    *prometheus.Registry
	fixture *hxel.Fixture
}

func mount(cmd *cli.Command) (*session, error) {
	tag := cmd.Args().First()
	if tag == "" {
		return nil, errors.New("missing element tag")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, reg: hxel.NewRegistry()}
	if err := components.Register(s.reg); err != nil {
		return nil, err
	}

	var metrics *hxel.Metrics
	if cfg.Metrics {
		s.prom = prometheus.NewRegistry()
		metrics = hxel.NewMetrics(s.prom)
	}

	attrs, err := parsePairs(cmd.StringSlice(attrKey))
	if err != nil {
		return nil, err
	}
	s.fixture, err = hxel.MountTag(s.reg, tag, attrs, cfg.Options(cfg.Logger(os.Stderr), metrics)...)
	if err != nil {
		return nil, err
	}

	sets, err := parsePairs(cmd.StringSlice(setKey))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.fixture.Set(name, sets[name]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *session) flush() error {
	s.fixture.Flush()
	return errors.Join(s.fixture.Errors...)
}

func runRender(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	s, err := mount(cmd)
	if err != nil {
		return err
	}

	if snap := cmd.String(restoreKey); snap != "" {
		enc, err := s.cfg.Encoder()
		if err != nil {
			return err
		}
		if err := s.fixture.Element().Restore(enc, snap, cmd.Bool(sensitiveKey)); err != nil {
			return err
		}
	}
	if err := s.flush(); err != nil {
		return err
	}

	out := s.fixture.OuterHTML()
	fmt.Fprintln(stdout, out)

	if cmd.Bool(statsKey) {
		fmt.Fprintf(os.Stderr, "renders: %d  html: %s  elapsed: %s\n",
			s.fixture.RenderCount(), humanize.Bytes(uint64(len(out))), time.Since(start).Round(time.Microsecond))
		if s.prom != nil {
			families, err := s.prom.Gather()
			if err != nil {
				return err
			}
			for _, mf := range families {
				for _, m := range mf.GetMetric() {
					if c := m.GetCounter(); c != nil {
						fmt.Fprintf(os.Stderr, "%s%s %s\n", mf.GetName(), labels(m.GetLabel()), humanize.Comma(int64(c.GetValue())))
					}
				}
			}
		}
	}
	return nil
}

func runSnapshot(ctx context.Context, cmd *cli.Command) error {
	s, err := mount(cmd)
	if err != nil {
		return err
	}
	enc, err := s.cfg.Encoder()
	if err != nil {
		return err
	}
	snap, err := s.fixture.Element().Snapshot(enc, cmd.Bool(sensitiveKey))
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, snap)
	return nil
}

func runDescribe(ctx context.Context, cmd *cli.Command) error {
	reg := hxel.NewRegistry()
	if err := components.Register(reg); err != nil {
		return err
	}
	tags := cmd.Args().Slice()
	if len(tags) == 0 {
		tags = reg.Tags()
	}
	return describe(stdout, reg, tags)
}

func describe(w io.Writer, reg *hxel.Registry, tags []string) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Tag", "Class", "Property", "Kind", "Attribute", "Default", "Computed From"})
	for _, tag := range tags {
		class, ok := reg.ElementClass(tag)
		if !ok {
			return fmt.Errorf("%w: %q", hxel.ErrUnknownElement, tag)
		}
		for _, name := range class.Properties() {
			decl, err := class.Resolve(name)
			if err != nil {
				return err
			}
			def := ""
			if decl.Default != nil {
				def = fmt.Sprint(decl.Default)
			}
			t.AppendRow(table.Row{tag, class.Name(), name, decl.Kind.Name(), decl.Attribute, def, strings.Join(decl.ComputeFrom, ", ")})
		}
	}
	t.Render()
	return nil
}

func labels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// parsePairs splits name=value arguments.
func parsePairs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=value, got %q", arg)
		}
		out[name] = value
	}
	return out, nil
}
