// twin64sim is a line-mode driver for the twin64 core: load a flat memory
// image, then reset/step/run/disas it, printing state the way the teacher's
// pdp11 driver does.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	twin64 "github.com/HFF-Git/Twin64"
)

const (
	ramBase    = twin64.Word(0)
	consoleHpa = twin64.Word(1 << 20)
)

func main() {
	var cli struct {
		Run   runCmd   `cmd:"" default:"1" help:"load an image and run it with no step limit (traps are delivered, not fatal)"`
		Step  stepCmd  `cmd:"" help:"load an image and single-step N instructions, tracing each"`
		Disas disasCmd `cmd:"" help:"disassemble a raw image without executing it"`
	}

	ctx := kong.Parse(&cli)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// machine builds the System+RAM+Console+Processor wiring common to every
// subcommand, per SPEC_FULL §4.9-4.11.
func machine(ramSize int, startAddr uint64) (*twin64.Processor, *twin64.Ram) {
	sys := twin64.NewSystem()
	ram := twin64.NewRam(0, ramBase, ramSize)
	con := twin64.NewConsole(1, consoleHpa)
	proc := twin64.NewProcessor(2, twin64.AdrRange{}, sys, 64, 64, 64, 64)

	must(sys.AddModule(ram))
	must(sys.AddModule(con))
	must(sys.AddModule(proc))

	cpu := proc.GetCpu()
	cpu.PhysRange = twin64.AdrRange{Lo: ramBase, Hi: ramBase + twin64.Word(ramSize)}
	cpu.Reset()
	cpu.Psr.SetIA(twin64.Word(startAddr))
	cpu.Psr.SetMode(true)
	cpu.Psr.SetX(true)
	return proc, ram
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "twin64sim:", err)
		os.Exit(1)
	}
}

func loadImage(path string) []byte {
	f, err := os.Open(path)
	must(err)
	defer f.Close()
	img, err := io.ReadAll(f)
	must(err)
	return img
}

type runCmd struct {
	Image     string `arg:"" type:"existingfile" help:"flat memory image to load at address 0"`
	StartAddr uint64 `name:"startaddr" default:"0"`
	RamSize   int    `name:"ramsize" default:"1048576"`
	Trace     bool   `name:"trace" help:"print one line per executed instruction"`
}

func (r *runCmd) Run(ctx *kong.Context) error {
	proc, ram := machine(r.RamSize, r.StartAddr)
	ram.LoadImage(loadImage(r.Image))
	if r.Trace {
		proc.GetCpu().Trace = os.Stdout
	}
	return withRawMode(os.Stdin.Fd(), func() error {
		return proc.Run()
	})
}

type stepCmd struct {
	Image     string `arg:"" type:"existingfile" help:"flat memory image to load at address 0"`
	StartAddr uint64 `name:"startaddr" default:"0"`
	RamSize   int    `name:"ramsize" default:"1048576"`
	Count     int    `name:"count" default:"1" help:"number of instructions to step"`
}

func (s *stepCmd) Run(ctx *kong.Context) error {
	proc, ram := machine(s.RamSize, s.StartAddr)
	ram.LoadImage(loadImage(s.Image))
	proc.GetCpu().Trace = os.Stdout
	for i := 0; i < s.Count; i++ {
		if err := proc.Step(); err != nil {
			return err
		}
	}
	return nil
}

type disasCmd struct {
	Image string `arg:"" type:"existingfile" help:"flat memory image to disassemble"`
	Addr  uint64 `name:"addr" default:"0" help:"starting byte offset into the image"`
	Count int    `name:"count" default:"16" help:"number of instructions to print"`
}

func (d *disasCmd) Run(ctx *kong.Context) error {
	img := loadImage(d.Image)
	for i := 0; i < d.Count; i++ {
		off := int(d.Addr) + i*4
		if off+4 > len(img) {
			break
		}
		w := twin64.DecodeInstruction(img[off : off+4])
		fmt.Printf("%08x: %s\n", off, twin64.FormatInstr(w))
	}
	return nil
}
