// cmd/autobrake/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// autobrake runs autobrake scenarios in closed loop and reports how each
// one ended.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/apenwarr/fixconsole"
	"github.com/goforj/godump"
	"github.com/iancoleman/orderedmap"

	"github.com/mmp/autobrake/config"
	"github.com/mmp/autobrake/log"
	"github.com/mmp/autobrake/scenario"
)

var (
	logLevel    = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir      = flag.String("logdir", "", "log file directory")
	console     = flag.Bool("console", false, "log to the console rather than to a file")
	calibration = flag.String("calibration", "", "calibration file to use for all scenarios")
	traceDir    = flag.String("trace", "", "directory to write a bus trace of each run to")
	traceEvery  = flag.Int("trace-every", 1, "record the bus every n ticks when tracing")
	dump        = flag.Bool("dump", false, "dump the final system status of each run")
	jsonOutput  = flag.Bool("json", false, "print a JSON summary of the runs")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] scenario.yaml...\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if err := fixconsole.FixConsoleIfNeeded(); err != nil {
		fmt.Printf("FixConsole: %v\n", err)
	}

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	lg := log.New(*logLevel, *logDir, *console)

	var scs []*scenario.Scenario
	for _, fn := range flag.Args() {
		sc, err := scenario.Load(fn)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if *calibration != "" {
			// Relative to the working directory, not the scenario.
			sc.Calibration = *calibration
			sc.Path = ""
		}
		scs = append(scs, sc)
	}

	opts := scenario.Options{
		Loader: config.NewLoader(),
		Logger: lg,
	}
	if *traceDir != "" {
		opts.TraceEvery = max(1, *traceEvery)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	results, err := scenario.RunAll(ctx, scs, opts)
	if err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	failed := false
	for _, r := range results {
		if *traceDir != "" && r.Trace != nil {
			if fn, err := r.Trace.SaveFile(*traceDir); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", r.Name, err)
				failed = true
			} else {
				lg.Infof("%s: wrote trace to %s", r.Name, fn)
			}
		}
		if *dump {
			godump.Dump(r.Status)
		}
		if err := r.Err(); err != nil {
			failed = true
		}
	}

	if *jsonOutput {
		if err := printJSON(results); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	} else {
		printSummary(results)
	}

	if failed {
		os.Exit(1)
	}
}

func printSummary(results []*scenario.Result) {
	for _, r := range results {
		status := "ok"
		if len(r.Failures) > 0 {
			status = "FAIL"
		}
		fmt.Printf("%-24s %-4s mode %-6s BTV %-16s %7.1f m %6.1fs stopped %v\n", r.Name, status,
			r.Status.Mode, r.Status.BTV.State, r.Distance, r.Elapsed.Seconds(), r.Stopped)
		for _, f := range r.Failures {
			fmt.Printf("    %s\n", f)
		}
	}
}

// printJSON writes one object per run with the fields in a fixed order so
// that the output can be diffed between calibrations.
func printJSON(results []*scenario.Result) error {
	var runs []*orderedmap.OrderedMap
	for _, r := range results {
		m := orderedmap.New()
		m.Set("name", r.Name)
		m.Set("passed", len(r.Failures) == 0)
		m.Set("mode", r.Status.Mode)
		m.Set("btv_state", r.Status.BTV.State)
		m.Set("stopped", r.Stopped)
		m.Set("distance_m", r.Distance)
		m.Set("ground_speed_ms", r.GroundSpeed)
		m.Set("elapsed_s", r.Elapsed.Seconds())
		m.Set("ticks", r.Ticks)
		m.Set("decel_light_seen", r.DecelLightSeen)
		if len(r.Failures) > 0 {
			m.Set("failures", r.Failures)
		}
		runs = append(runs, m)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(runs)
}
