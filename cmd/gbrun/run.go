package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/proj-gbcore/gbcore/internal/emu"
)

type runOptions struct {
	bootROM   string
	maxFrames int
	passMark  string
	failMark  string
	timeout   time.Duration
	quiet     bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <rom>",
		Short: "Run a ROM until it reports pass/fail over serial, or a frame/time budget is exhausted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runROM(args[0], opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.bootROM, "bootrom", "", "optional DMG boot ROM")
	flags.IntVar(&opts.maxFrames, "max-frames", 1800, "stop after this many frames with no verdict")
	flags.StringVar(&opts.passMark, "pass", "Passed", "serial substring (case-insensitive) that means success")
	flags.StringVar(&opts.failMark, "fail", "Failed", "serial substring (case-insensitive) that means failure")
	flags.DurationVar(&opts.timeout, "timeout", 0, "wall-clock budget; 0 disables")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress the serial transcript on stdout")
	return cmd
}

func runROM(romPath string, opts *runOptions) error {
	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("read rom: %w", err)
	}

	m := emu.New(emu.Config{})
	if opts.bootROM != "" {
		boot, err := os.ReadFile(opts.bootROM)
		if err != nil {
			return fmt.Errorf("read bootrom: %w", err)
		}
		if err := m.SetBootROM(boot); err != nil {
			return fmt.Errorf("boot rom: %w", err)
		}
	}
	if err := m.LoadROM(rom); err != nil {
		return fmt.Errorf("load rom: %w", err)
	}

	var buf bytes.Buffer
	m.SetSerialWriter(&buf)

	deadline := time.Time{}
	if opts.timeout > 0 {
		deadline = time.Now().Add(opts.timeout)
	}

	for frame := 0; frame < opts.maxFrames; frame++ {
		m.StepFrameNoRender()
		out := buf.String()
		lower := strings.ToLower(out)
		if opts.passMark != "" && strings.Contains(lower, strings.ToLower(opts.passMark)) {
			report(opts, out, "PASS")
			return nil
		}
		if opts.failMark != "" && strings.Contains(lower, strings.ToLower(opts.failMark)) {
			report(opts, out, "FAIL")
			return fmt.Errorf("%s reported failure over serial", romPath)
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			report(opts, out, "TIMEOUT")
			return fmt.Errorf("%s timed out after %s", romPath, opts.timeout)
		}
	}
	report(opts, buf.String(), "NO VERDICT")
	return fmt.Errorf("%s produced no pass/fail marker within %d frames", romPath, opts.maxFrames)
}

func report(opts *runOptions, serial, verdict string) {
	if !opts.quiet {
		fmt.Println(serial)
	}
	fmt.Println(verdict)
}
