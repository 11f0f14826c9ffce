// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command spoofreplay feeds a CSV capture through the detector filter
// chain outside of any live transport, for testing prefix files and
// thresholds against a recorded flow.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jaroslavh/Nemea-Modules/internal/clock"
	"github.com/jaroslavh/Nemea-Modules/internal/detect"
	"github.com/jaroslavh/Nemea-Modules/internal/ipaddr"
	"github.com/jaroslavh/Nemea-Modules/internal/newflow"
	"github.com/jaroslavh/Nemea-Modules/internal/prefix"
	"github.com/jaroslavh/Nemea-Modules/internal/replay"
	"github.com/jaroslavh/Nemea-Modules/internal/symmetry"
)

func main() {
	bogonFile := flag.String("b", "", "bogon prefix file (required)")
	specificFile := flag.String("c", "", "specific-networks prefix file")
	rewriteWindow := flag.Int("s", 45, "symmetry rewrite window, seconds")
	threshold := flag.Uint64("t", 1000, "new-flow threshold")
	captureFile := flag.String("i", "", "CSV capture file to replay (required)")
	flag.Parse()

	if *bogonFile == "" || *captureFile == "" {
		fmt.Fprintln(os.Stderr, "usage: spoofreplay -b <bogon file> -i <capture.csv> [-c <specific file>] [-s seconds] [-t threshold]")
		os.Exit(2)
	}

	masks := ipaddr.NewMaskTable()
	opsV4 := ipaddr.NewOps(ipaddr.V4, masks)
	opsV6 := ipaddr.NewOps(ipaddr.V6, masks)

	bogonV4, bogonV6, err := prefix.LoadFile(*bogonFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load bogon file: %v\n", err)
		os.Exit(1)
	}

	var specV4, specV6 []prefix.Entry
	if *specificFile != "" {
		specV4, specV6, err = prefix.LoadFile(*specificFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load specific-networks file: %v\n", err)
			os.Exit(1)
		}
	}
	watchedV4 := prefix.New(opsV4, masks, specV4)
	watchedV6 := prefix.New(opsV6, masks, specV6)

	bogon := detect.NewBogon(
		prefix.New(opsV4, masks, bogonV4),
		prefix.New(opsV6, masks, bogonV6),
		watchedV4, watchedV6,
	)

	sym := detect.NewSymmetric(symmetry.New(opsV4, nil), symmetry.New(opsV6, nil), uint32(*rewriteWindow), true)

	tableV4 := newflow.NewTable(watchedV4.Len(), *threshold, newflow.DefaultSwapInterval)
	tableV6 := newflow.NewTable(watchedV6.Len(), *threshold, newflow.DefaultSwapInterval)
	nf := detect.NewNewFlow(watchedV4, watchedV6, tableV4, tableV6, opsV4, opsV6, &clock.Logical{})

	sink := &printSink{}
	pipeline := detect.NewPipeline(bogon, sym, nf, sink)

	f, err := os.Open(*captureFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open capture file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	records, err := replay.Read(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse capture file: %v\n", err)
		os.Exit(1)
	}

	for _, r := range records {
		pipeline.Process(r)
	}

	fmt.Printf("%d records replayed, %d flagged\n", len(records), sink.count)
}

type printSink struct{ count int }

func (s *printSink) Emit(r detect.Record) error {
	s.count++
	fmt.Printf("FLAGGED src=%s dst=%s link=%#x dir=%d\n", r.SrcAddr, r.DstAddr, r.LinkBitfield, r.DirBitfield)
	return nil
}
