// Command smrender loads an OSM-shaped data stream and an OSM-shaped
// rule set, runs the rule engine's version-ordered passes over the
// data, and writes the resulting store to an output stream (and, for
// -format svg, an SVG chart).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/smrender/smrender/pkg/action"
	"github.com/smrender/smrender/pkg/canvas"
	"github.com/smrender/smrender/pkg/config"
	"github.com/smrender/smrender/pkg/engine"
	"github.com/smrender/smrender/pkg/geo"
	"github.com/smrender/smrender/pkg/grid"
	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/smio"
	"github.com/smrender/smrender/pkg/trie"
)

const version = "1.0.0"

const (
	exitNoRulesMatched = 128
	exitNoData         = 129
)
var (
	rulesPath  = flag.String("rules", "", "Path to the rule dataset (OSM-shaped JSON, required)")
	configPath = flag.String("config", "", "Path to YAML configuration file (required)")
	inPath     = flag.String("in", "", "Path to the input data stream (OSM-shaped JSON, required)")
	outPath    = flag.String("out", "", "Path to write the resulting data stream (OSM-shaped JSON)")
	format     = flag.String("format", "json", "Output format: json or svg")
	verbose    = flag.Bool("verbose", false, "Enable verbose output")
	versionF   = flag.Bool("version", false, "Print version and exit")
	help       = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *versionF {
		fmt.Printf("smrender version %s\n", version)
		os.Exit(0)
	}
	if *help {
		printHelp()
		os.Exit(0)
	}

	if *configPath == "" || *rulesPath == "" || *inPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config, -rules, and -in are all required")
		printUsage()
		os.Exit(1)
	}
	if *format != "json" && *format != "svg" {
		fmt.Fprintf(os.Stderr, "Error: invalid format %q, must be one of: json, svg\n", *format)
		os.Exit(1)
	}

	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if code == 0 {
			code = 1
		}
		os.Exit(code)
	}
	os.Exit(code)
}

// run wires every component together and returns the exit code
// alongside any error, so main has a single exit call site.
func run() (int, error) {
	if *verbose {
		fmt.Printf("Loading configuration from %s\n", *configPath)
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return 1, fmt.Errorf("loading config: %w", err)
	}

	win, err := cfg.ResolvedWindow()
	if err != nil {
		return 1, fmt.Errorf("resolving window: %w", err)
	}
	page, err := cfg.ResolvedPage()
	if err != nil {
		return 1, fmt.Errorf("resolving page: %w", err)
	}
	proj, err := cfg.ResolvedProjection()
	if err != nil {
		return 1, fmt.Errorf("resolving projection: %w", err)
	}
	frame, err := geo.NewFrame(win, page, proj)
	if err != nil {
		return 1, fmt.Errorf("building frame: %w", err)
	}

	if *verbose {
		fmt.Printf("Page: %.0fx%.0fmm at %d dpi, projection=%s\n", page.WidthMM, page.HeightMM, page.DPI, cfg.Projection)
	}

	dataStore, err := loadJSONStore(*inPath)
	if err != nil {
		return 1, fmt.Errorf("loading data: %w", err)
	}
	if dataStore.Nodes.Len() == 0 && dataStore.Ways.Len() == 0 && dataStore.Relations.Len() == 0 {
		return exitNoData, fmt.Errorf("input dataset %s contains no objects", *inPath)
	}

	ruleStore, err := loadJSONStore(*rulesPath)
	if err != nil {
		return 1, fmt.Errorf("loading rules: %w", err)
	}

	// A config-level grid string synthesizes the border, graticule,
	// and ruler up front, whether or not the rule set carries its own
	// grid rule.
	if cfg.Grid != "" {
		rg, err := cfg.ResolvedGrid()
		if err != nil {
			return 1, fmt.Errorf("resolving grid: %w", err)
		}
		spec := grid.Spec{
			GraticuleStepDeg: rg.GraticuleStepDeg,
			RulerSectionKM:   rg.RulerSectionKM,
			RulerSections:    rg.RulerSections,
			NauticalMiles:    true,
		}
		for _, obj := range grid.Generate(frame, spec, dataStore.IDs) {
			switch o := obj.(type) {
			case *osm.Node:
				dataStore.PutNode(o)
			case *osm.Way:
				dataStore.PutWay(o)
			}
		}
	}

	var sink *smio.JSONSink
	var outFile *os.File
	if *outPath != "" {
		outFile, err = os.Create(*outPath)
		if err != nil {
			return 1, fmt.Errorf("creating output file: %w", err)
		}
		defer outFile.Close()
		sink = smio.NewJSONSink(outFile)
	}

	env := &action.Env{
		Store:       dataStore,
		Frame:       frame,
		Sink:        sinkAdapter{sink: sink, roleName: dataStore.Roles.String},
		RandomSeed:  cfg.Seed,
		ConfigHash:  cfg.Hash(),
		MergeParams: cfg.ActionParams,
	}

	rules, subroutines, err := engine.LoadRules(ruleStore, env)
	if err != nil {
		return 1, fmt.Errorf("loading rule set: %w", err)
	}
	if len(rules) == 0 {
		return exitNoRulesMatched, fmt.Errorf("rule dataset %s defines no top-level rules", *rulesPath)
	}

	if *verbose {
		fmt.Printf("Loaded %d rules (%d subroutines)\n", len(rules), len(subroutines))
	}

	ctx := &engine.Context{
		Store:  dataStore,
		Frame:  frame,
		Logger: engine.NewStdLogger(nil),
		Config: engine.Config{
			Threads:        cfg.Threads,
			RenderAllNodes: cfg.RenderAllNodes,
			ForceIndex:     cfg.NeedIndexOverride,
		},
	}
	eng := engine.NewEngine(ctx)
	for _, r := range rules {
		eng.AddRule(r)
	}
	for name, r := range subroutines {
		eng.AddSubroutine(name, r)
	}

	start := time.Now()
	if *verbose {
		fmt.Println("Running rule engine...")
	}
	if err := eng.Run(); err != nil {
		return 1, fmt.Errorf("engine run: %w", err)
	}
	if *verbose {
		fmt.Printf("Engine run completed in %v\n", time.Since(start))
	}

	if sink != nil {
		if err := writeStore(sink, dataStore); err != nil {
			return 1, fmt.Errorf("writing output: %w", err)
		}
		if err := sink.Close(); err != nil {
			return 1, fmt.Errorf("closing output: %w", err)
		}
	}

	if *format == "svg" {
		if err := renderSVG(dataStore, frame, page); err != nil {
			// A missing output surface is non-fatal as long as the
			// in-memory store was already written to -out.
			fmt.Fprintf(os.Stderr, "Warning: svg rendering failed: %v\n", err)
		}
	}

	fmt.Printf("Successfully ran %d rules over %d objects\n", len(rules), dataStore.Nodes.Len()+dataStore.Ways.Len()+dataStore.Relations.Len())
	return 0, nil
}

// loadJSONStore reads a newline-delimited JSON OSM dataset into a
// fresh trie.Store.
func loadJSONStore(path string) (*trie.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	store := trie.NewStore()
	src := smio.NewJSONSource(f)
	for {
		w, ok, err := src.Next()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if !ok {
			break
		}
		obj := w.ToOSM(store.Roles.Intern)
		switch o := obj.(type) {
		case *osm.Node:
			store.PutNode(o)
		case *osm.Way:
			store.PutWay(o)
		case *osm.Relation:
			store.PutRelation(o)
		}
	}
	return store, nil
}

// writeStore streams every object currently in store to sink, in
// node/way/relation order.
func writeStore(sink *smio.JSONSink, store *trie.Store) error {
	var putErr error
	store.Nodes.Traverse(func(_ int64, n *osm.Node) int {
		if err := sink.Put(smio.FromOSM(n, store.Roles.String)); err != nil {
			putErr = err
			return -1
		}
		return 0
	})
	if putErr != nil {
		return putErr
	}
	store.Ways.Traverse(func(_ int64, w *osm.Way) int {
		if err := sink.Put(smio.FromOSM(w, store.Roles.String)); err != nil {
			putErr = err
			return -1
		}
		return 0
	})
	if putErr != nil {
		return putErr
	}
	store.Relations.Traverse(func(_ int64, r *osm.Relation) int {
		if err := sink.Put(smio.FromOSM(r, store.Roles.String)); err != nil {
			putErr = err
			return -1
		}
		return 0
	})
	return putErr
}

// renderSVG draws every visible way and node in store onto an SVG
// canvas sized to frame's rotated page, writing alongside -out with a
// ".svg" suffix.
func renderSVG(store *trie.Store, frame *geo.Frame, page geo.Page) error {
	svgPath := *outPath
	if svgPath == "" {
		svgPath = "smrender-output"
	}
	svgPath += ".svg"

	f, err := os.Create(svgPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", svgPath, err)
	}
	defer f.Close()

	w, h, _ := page.RotatedPixelSize()
	c := canvas.New(f, frame, int(w), int(h))
	defer c.Close()
	c.Background("white")

	store.Ways.Traverse(func(_ int64, way *osm.Way) int {
		if !way.IsVisible() {
			return 0
		}
		c.Way(way, store.GetNode, canvas.Style{Stroke: "black", StrokeWidth: 1})
		return 0
	})
	store.Nodes.Traverse(func(_ int64, n *osm.Node) int {
		if !n.IsVisible() {
			return 0
		}
		c.Node(n, 1.5, canvas.Style{Fill: "black"})
		return 0
	})

	if *verbose {
		fmt.Printf("Wrote SVG chart to %s\n", svgPath)
	}
	return nil
}

// sinkAdapter lets the "out" leaf action (which writes osm.Object
// values) drive the same smio.JSONSink the top-level writeStore call
// uses, converting through smio.FromOSM.
type sinkAdapter struct {
	sink     *smio.JSONSink
	roleName func(osm.RoleCode) string
}

func (s sinkAdapter) Put(o osm.Object) error {
	if s.sink == nil {
		return nil
	}
	return s.sink.Put(smio.FromOSM(o, s.roleName))
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: smrender -config <file> -rules <file> -in <file> [-out <file>] [-format json|svg]")
	fmt.Fprintln(os.Stderr, "Run 'smrender -help' for more information.")
}

func printHelp() {
	fmt.Println("smrender - rule-driven OSM transformation and rendering engine")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
