// Command coretabled drives a coretable pipeline end to end from the
// shell: it loads a schema, streams an NDJSON (optionally zstd-
// compressed) source through the orchestrator, and prints a summary
// of the final store state. It exists mainly as a smoke-test harness
// for the library packages, not as a production ingest daemon.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sneller-labs/coretable/consumerstore"
	"github.com/sneller-labs/coretable/coretable"
	"github.com/sneller-labs/coretable/orchestrator"
	"github.com/sneller-labs/coretable/units"
)

func exitf(format string, args ...any) {
	log.Printf(format, args...)
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	var (
		schemaPath     = flag.String("schema", "", "path to a JSON schema file (required)")
		sourcePath     = flag.String("source", "", "path to an NDJSON source file, optionally .zst-compressed (required)")
		batchRows      = flag.Int("batch-rows", 256, "rows per ingest batch")
		charWidthHint  = flag.Float64("char-width", 8, "pixel width hint per character for layout sizing")
		rowHeightHint  = flag.Uint("row-height", 20, "pixel row height for layout sizing")
		viewportHeight = flag.Uint("viewport-height", 480, "pixel viewport height for layout sizing")
		windowRows     = flag.Uint("window-rows", 100, "row count of the final window to print a summary for")
		checksumSeed   = flag.Uint64("checksum-seed", 0, "non-zero siphash-2-4 seed to attach a checksum to every packed window")
	)
	flag.Parse()

	if *schemaPath == "" || *sourcePath == "" {
		flag.Usage()
		exitf("coretabled: -schema and -source are required")
	}

	schema, err := loadSchema(*schemaPath)
	if err != nil {
		exitf("%s", err)
	}

	src, err := openNDJSONSource(*sourcePath, *batchRows)
	if err != nil {
		exitf("%s", err)
	}

	cmdCh := make(chan orchestrator.Command)
	evCh := make(chan orchestrator.Event, 64)
	worker := orchestrator.NewWorker(cmdCh, evCh)
	go worker.Run()

	store := consumerstore.New()
	specs := coretable.ToColumnSpecs(schema)
	pump := orchestrator.NewPump(cmdCh, evCh, specs, src)
	pump.OnEvent = store.Dispatch
	go pump.Dispatch()

	cmdCh <- orchestrator.InitCmd{
		Schema:         schema,
		CharWidthHint:  *charWidthHint,
		RowHeightHint:  units.PixelSize(*rowHeightHint),
		ViewportHeight: units.PixelSize(*viewportHeight),
		ChecksumSeed:   *checksumSeed,
	}

	if err := pump.Run(); err != nil {
		exitf("coretabled: ingest failed: %s", err)
	}

	windowReady := make(chan struct{})
	unsub := store.Subscribe(func(s *consumerstore.State) {
		if s.Window != nil {
			select {
			case <-windowReady:
			default:
				close(windowReady)
			}
		}
	})
	cmdCh <- orchestrator.SetWindowCmd{StartRow: 0, RowCount: uint32(*windowRows)}
	select {
	case <-windowReady:
	case <-time.After(2 * time.Second):
		log.Print("coretabled: timed out waiting for the final window")
	}
	unsub()
	pump.Terminate()

	state := store.GetState()
	fmt.Printf("status=%s totalRows=%d\n", state.Status, state.TotalRows)
	if state.Layout != nil {
		fmt.Printf("layout: %d columns, rowHeight=%d, totalHeight=%d, viewportRows=%d\n",
			len(state.Layout.Columns), state.Layout.RowHeight, state.Layout.TotalHeight, state.Layout.ViewportRows)
	}
	if state.Window != nil {
		fmt.Printf("window: seq=%d startRow=%d rowCount=%d bytes=%d checksum=%#x\n",
			state.Window.Seq, state.Window.StartRow, state.Window.RowCount, len(state.Window.Buffer), state.Window.Checksum)
	}
	if state.Err != nil {
		fmt.Printf("last error: %s\n", state.Err)
	}
}
