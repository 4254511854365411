package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"gsweb/internal/editor"
	"gsweb/internal/models"
	"gsweb/internal/monitor"
	"gsweb/internal/partition"

	"github.com/spf13/cast"
)

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

type command struct {
	name    string
	args    string
	help    string
	minArgs int
	maxArgs int // -1 for no limit
	run     func(ctx context.Context, e *env, args []string) error
}

func (c command) acceptsArgs(n int) bool {
	return n >= c.minArgs && (c.maxArgs < 0 || n <= c.maxArgs)
}

var commandList = []command{
	{name: "show", help: "Print the current profile table.", run: runShow},
	{name: "split", args: "<segment>", help: "Split a segment in two.", minArgs: 1, maxArgs: 1, run: runSplit},
	{name: "merge", args: "<segment>", help: "Merge a segment into its neighbour.", minArgs: 1, maxArgs: 1, run: runMerge},
	{name: "drag", args: "<boundary> <fraction>", help: "Move the boundary after a segment to a 0..1 axis position.", minArgs: 2, maxArgs: 2, run: runDrag},
	{name: "set", args: "<segment> key=value...", help: "Change parameters of a segment.", minArgs: 2, maxArgs: -1, run: runSet},
	{name: "reset", help: "Replace the table with the default ladder (needs --yes).", run: runReset},
	{name: "watch", help: "Print the table and report connectivity changes until interrupted.", run: runWatch},
}

var commands = func() map[string]command {
	m := make(map[string]command, len(commandList))
	for _, c := range commandList {
		m[c.name] = c
	}
	return m
}()

func runShow(ctx context.Context, e *env, _ []string) error {
	if err := e.editor.Load(ctx); err != nil {
		return err
	}
	return printTable(e, e.editor.Snapshot())
}

func runSplit(ctx context.Context, e *env, args []string) error {
	i, err := segmentArg(args[0])
	if err != nil {
		return err
	}
	return edit(ctx, e, i, func(ed *editor.Editor) error {
		if !ed.Split() {
			return fmt.Errorf("segment %d is too narrow to split (needs a span of at least %d)", i, 2*ed.Axis().Step)
		}
		return nil
	})
}

func runMerge(ctx context.Context, e *env, args []string) error {
	i, err := segmentArg(args[0])
	if err != nil {
		return err
	}
	return edit(ctx, e, i, func(ed *editor.Editor) error {
		if !ed.Merge() {
			return errors.New("cannot merge the only segment")
		}
		return nil
	})
}

func runDrag(ctx context.Context, e *env, args []string) error {
	b, err := segmentArg(args[0])
	if err != nil {
		return err
	}
	fraction, err := cast.ToFloat64E(args[1])
	if err != nil {
		return usageError{fmt.Sprintf("invalid fraction %q", args[1])}
	}
	return edit(ctx, e, b, func(ed *editor.Editor) error {
		if !ed.BeginDrag(b) {
			return fmt.Errorf("no boundary after segment %d", b)
		}
		defer ed.EndDrag()
		if !ed.DragTo(fraction) {
			return errors.New("boundary did not move")
		}
		return nil
	})
}

func runSet(ctx context.Context, e *env, args []string) error {
	i, err := segmentArg(args[0])
	if err != nil {
		return err
	}

	type setting struct{ key, value string }
	settings := make([]setting, 0, len(args)-1)
	var scratch models.TxProfile
	for _, arg := range args[1:] {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return usageError{fmt.Sprintf("expected key=value, got %q", arg)}
		}
		if err := setField(&scratch, key, value); err != nil {
			return usageError{err.Error()}
		}
		settings = append(settings, setting{key, value})
	}

	return edit(ctx, e, i, func(ed *editor.Editor) error {
		return ed.UpdateSelected(func(p *models.TxProfile) {
			for _, s := range settings {
				// Already parsed once above.
				_ = setField(p, s.key, s.value)
			}
		})
	})
}

func runReset(ctx context.Context, e *env, _ []string) error {
	if err := e.editor.Load(ctx); err != nil {
		return err
	}
	if !e.editor.ResetToDefaults(func() bool { return e.yes }) {
		if !e.yes {
			return usageError{"reset replaces every profile; pass --yes to confirm"}
		}
		return errors.New("profiles are not editable")
	}
	return finish(ctx, e)
}

func runWatch(ctx context.Context, e *env, _ []string) error {
	if err := e.editor.Load(ctx); err != nil {
		return err
	}
	if err := printTable(e, e.editor.Snapshot()); err != nil {
		return err
	}

	changes := make(chan bool, 1)
	m := monitor.New(e.client, e.cfg.Client.HeartbeatInterval, e.log, func(up bool) {
		select {
		case changes <- up:
		default:
			// Drop a stale transition so the newest state wins.
			select {
			case <-changes:
			default:
			}
			changes <- up
		}
	})
	m.Start()
	defer m.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case up := <-changes:
			if !up {
				e.editor.SetUnavailable()
				fmt.Fprintln(e.out, "Profile API unavailable")
				continue
			}
			if err := e.editor.Load(ctx); err != nil {
				fmt.Fprintf(e.out, "Reload failed: %v\n", err)
				continue
			}
			if err := printTable(e, e.editor.Snapshot()); err != nil {
				return err
			}
		}
	}
}

// edit loads the table, selects segment i, applies fn and saves.
func edit(ctx context.Context, e *env, i int, fn func(ed *editor.Editor) error) error {
	if err := e.editor.Load(ctx); err != nil {
		return err
	}
	n := len(e.editor.Snapshot().Partition)
	if !e.editor.Select(i) {
		return fmt.Errorf("segment %d out of range, table has %d segments", i, n)
	}
	if err := fn(e.editor); err != nil {
		return err
	}
	return finish(ctx, e)
}

func finish(ctx context.Context, e *env) error {
	if !e.dryRun && e.editor.Dirty() {
		if err := e.editor.Save(ctx); err != nil {
			return err
		}
	}
	return printTable(e, e.editor.Snapshot())
}

// decimal reads s as a base 10 integer. cast treats a leading zero as an
// octal prefix, so leading zeros are stripped first.
func decimal(s string) (int, error) {
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	if trimmed := strings.TrimLeft(s, "0"); trimmed != s {
		if trimmed == "" {
			trimmed = "0"
		}
		s = trimmed
	}
	return cast.ToIntE(sign + s)
}

func segmentArg(s string) (int, error) {
	i, err := decimal(s)
	if err != nil || i < 0 {
		return 0, usageError{fmt.Sprintf("invalid segment index %q", s)}
	}
	return i, nil
}

func printTable(e *env, s editor.Snapshot) error {
	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tRANGE\tWIDTH\tGI\tMCS\tFEC\tBITRATE\tGOP\tPWR\tROI_QP\tBW\tQP_DELTA")
	for i, p := range s.Partition {
		fmt.Fprintf(w, "%d\t%d-%d\t%s\t%s\t%d\t%d/%d\t%d\t%d\t%d\t%s\t%d\t%d\n",
			i, p.RangeStart, p.RangeEnd, width(e.editor.Axis(), p),
			p.GI, p.MCS, p.FecK, p.FecN, p.Bitrate, p.Gop, p.Pwr, p.RoiQP, p.Bandwidth, p.QpDelta)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	switch {
	case s.Dirty && e.dryRun:
		fmt.Fprintln(e.out, "(dry run, not saved)")
	case s.Dirty:
		fmt.Fprintln(e.out, "(unsaved)")
	}
	return nil
}

// width renders a segment's share of the axis as a percentage.
func width(a partition.Axis, p models.TxProfile) string {
	return fmt.Sprintf("%.1f%%", (a.Fraction(p.RangeEnd)-a.Fraction(p.RangeStart))*100)
}

// setField assigns one parameter by its JSON name. Ranges are not settable.
func setField(p *models.TxProfile, key, value string) error {
	if key == "gi" {
		p.GI = value
		return nil
	}
	if key == "roi_qp" {
		p.RoiQP = value
		return nil
	}

	var dst *int
	switch key {
	case "mcs":
		dst = &p.MCS
	case "fec_k":
		dst = &p.FecK
	case "fec_n":
		dst = &p.FecN
	case "bitrate":
		dst = &p.Bitrate
	case "gop":
		dst = &p.Gop
	case "pwr":
		dst = &p.Pwr
	case "bandwidth":
		dst = &p.Bandwidth
	case "qp_delta":
		dst = &p.QpDelta
	default:
		return fmt.Errorf("unknown or read-only field %q", key)
	}

	n, err := decimal(value)
	if err != nil {
		return fmt.Errorf("invalid %s value %q", key, value)
	}
	*dst = n
	return nil
}
