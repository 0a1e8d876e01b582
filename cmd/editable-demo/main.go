package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AnatoleLucet/editable"
	"github.com/AnatoleLucet/editable/internal/schedule"
	"github.com/AnatoleLucet/editable/memhost"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML widget configuration (defaults to attribute IsLocked)")
		toggles    = flag.Int("toggle", 1, "Number of times the condition is flipped")
		entity     = flag.String("entity", "Order", "Entity of the demo record")
	)

	flag.Parse()

	cfg := editable.DefaultConfig()
	cfg.ConditionAttribute = "IsLocked"
	cfg.ButtonClass = "lockable"
	if *configPath != "" {
		loaded, err := editable.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	attr := cfg.ConditionAttribute
	if attr == "" {
		attr = "IsLocked"
	}

	store := memhost.NewStore()
	checks := memhost.NewChecks(store)
	if cfg.ConditionCheck != "" {
		checks.Register(cfg.ConditionCheck, func(rec *memhost.Record) (bool, error) {
			v, _ := rec.Get(attr)
			locked, _ := v.(bool)
			return !locked, nil
		})
	}

	form := memhost.NewForm(attr, cfg.ButtonClass)
	editor := form.Body.AttachEditor()
	clock := schedule.NewManualClock()
	rec := store.Create(*entity, map[string]any{attr: false})

	w := editable.New(cfg, editable.Host{Data: store, Checks: checks, Anchor: form.Anchor},
		editable.WithClock(clock))
	defer w.Dispose()

	w.Update(rec)
	settle(clock, cfg)
	dump(os.Stdout, "initial", form)

	locked := false
	for i := 1; i <= *toggles; i++ {
		locked = !locked
		if err := rec.Set(attr, locked); err != nil {
			log.Fatalf("set %s: %v", attr, err)
		}
		settle(clock, cfg)
		dump(os.Stdout, fmt.Sprintf("toggle %d (%s=%t)", i, attr, locked), form)
	}

	stats := w.Stats()
	fmt.Fprintf(os.Stdout, "Source: %s\nPasses: %d\nMatched: %d\nEditor calls: %d\n",
		w.Source(), stats.Passes, stats.LastMatched, editor.Calls())
}

func settle(clock *schedule.ManualClock, cfg editable.Config) {
	clock.Advance(max(cfg.EditorDelay, cfg.SliderDelay) + time.Millisecond)
}

func dump(out *os.File, title string, form *memhost.Form) {
	data, err := yaml.Marshal(map[string]any{title: form.View.Snapshot()})
	if err != nil {
		log.Fatalf("encode state: %v", err)
	}
	fmt.Fprintf(out, "%s\n", data)
}
