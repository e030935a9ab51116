package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mosbit/m6502/cpu"
	"github.com/mosbit/m6502/emulator"
)

// parseAddr accepts $FFFC, 0xFFFC and plain decimal.
func parseAddr(str string) (uint16, error) {
	if rest, ok := strings.CutPrefix(str, "$"); ok {
		str = "0x" + rest
	}
	value, err := strconv.ParseUint(str, 0, 16)
	if err != nil {
		return 0, err
	}
	return uint16(value), nil
}

func main() {
	var source string
	var binary string
	var loadAt string
	var mhz float64
	var original bool
	var ticks int
	var dump bool
	var verbose bool

	flag.StringVar(&source, "c", "", "assembly source to compile and run ('-' for stdin)")
	flag.StringVar(&binary, "b", "", "raw binary image to load")
	flag.StringVar(&loadAt, "a", "$0200", "load address for -b images")
	flag.Float64Var(&mhz, "mhz", emulator.DefaultMhz, "clock rate in MHz")
	flag.BoolVar(&original, "original", false, "cycle-accurate stepping (one cycle per tick)")
	flag.IntVar(&ticks, "t", 0, "tick budget before giving up (0 for default)")
	flag.BoolVar(&dump, "d", false, "print the register snapshot after the run")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}
	if source == "" && binary == "" {
		log.Fatalf("%v: Nothing to run; use -c or -b", os.Args[0])
	}

	emu, err := emulator.New(mhz)
	if err != nil {
		log.Fatal(err)
	}
	emu.Verbose = verbose
	emu.TickLimit = ticks
	if original {
		emu.Cpu.Mode = cpu.Original
	}

	if source != "" {
		inf := os.Stdin
		if source != "-" {
			inf, err = os.Open(source)
			if err != nil {
				log.Fatalf("%v: %v", source, err)
			}
			defer inf.Close()
		}

		prog, err := emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", source, err)
		}

		err = emu.LoadProgram(prog)
		if err != nil {
			log.Fatalf("%v: %v", source, err)
		}
	}

	if binary != "" {
		addr, err := parseAddr(loadAt)
		if err != nil {
			log.Fatalf("%v: %v", loadAt, err)
		}

		data, err := os.ReadFile(binary)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}

		err = emu.Load(addr, data)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}

		// A raw image has no entry convention; point the reset
		// vector at the load address unless the image covers it.
		if addr+uint16(len(data)) < cpu.ResetVector || addr > cpu.ResetVector+1 {
			err = emu.Load(cpu.ResetVector, []byte{byte(addr), byte(addr >> 8)})
			if err != nil {
				log.Fatalf("%v: %v", binary, err)
			}
		}
	}

	err = emu.RunUntilNop()
	if err != nil {
		log.Fatal(err)
	}

	if dump {
		snap, err := emu.Cpu.Snapshot()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(snap)
	}
}
