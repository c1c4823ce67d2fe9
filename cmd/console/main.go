package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/golang/glog"

	"hackasm/pkg/cpu"
	"hackasm/pkg/utils"
)

// stepsPerSlice bounds how long the runner holds the machine lock.
const stepsPerSlice = 10000

type machine struct {
	mu sync.Mutex
	vm *cpu.CPU
}

type options struct {
	program   string
	snapshot  string
	resume    bool
	interval  time.Duration
	maxCycles uint64
}

// startSnapshotter hibernates the machine to path every interval while stop
// is open.
func startSnapshotter(m *machine, path string, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := m.snapshot(path); err != nil {
				glog.Warningf("snapshot failed: %v", err)
			}
		case <-stop:
			return
		}
	}
}

func (m *machine) snapshot(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.vm.HibernateToFile(path); err != nil {
		return err
	}
	glog.V(1).Infof("snapshot written to %s at cycle %d", path, m.vm.Cycles)
	return nil
}

// run steps the machine until it halts, the cycle budget is spent or ctx is
// cancelled. It reports whether the machine halted.
func (m *machine) run(ctx context.Context, maxCycles uint64) bool {
	for {
		if ctx.Err() != nil {
			return false
		}
		m.mu.Lock()
		for i := 0; i < stepsPerSlice && !m.vm.Halted; i++ {
			if maxCycles > 0 && m.vm.Cycles >= maxCycles {
				break
			}
			m.vm.Step()
		}
		halted := m.vm.Halted
		limited := maxCycles > 0 && m.vm.Cycles >= maxCycles
		m.mu.Unlock()
		if halted {
			return true
		}
		if limited {
			return false
		}
	}
}

func newMachine(opts options) (*machine, error) {
	vm := cpu.NewCPU()

	if opts.resume && opts.snapshot != "" {
		err := vm.RestoreFromFile(opts.snapshot)
		if err == nil {
			glog.Infof("resumed from %s at PC=%d cycle %d", opts.snapshot, vm.PC, vm.Cycles)
			return &machine{vm: vm}, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		glog.Infof("no snapshot at %s, starting fresh", opts.snapshot)
	}

	if opts.program == "" {
		return nil, fmt.Errorf("no program given and nothing to resume")
	}
	words, err := utils.LoadProgram(opts.program)
	if err != nil {
		return nil, err
	}
	if err := vm.LoadProgram(words); err != nil {
		return nil, err
	}
	return &machine{vm: vm}, nil
}

func runConsole(ctx context.Context, stdout io.Writer, opts options) error {
	m, err := newMachine(opts)
	if err != nil {
		return err
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	if opts.snapshot != "" && opts.interval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			startSnapshotter(m, opts.snapshot, opts.interval, stop)
		}()
	}

	halted := m.run(ctx, opts.maxCycles)

	close(stop)
	wg.Wait()
	if opts.snapshot != "" {
		if err := m.snapshot(opts.snapshot); err != nil {
			return fmt.Errorf("final snapshot: %w", err)
		}
	}

	vm := m.vm
	fmt.Fprintf(stdout, "PC=%d A=%d D=%d cycles=%d halted=%t\n", vm.PC, vm.A, vm.D, vm.Cycles, halted)
	return nil
}

func main() {
	var opts options
	flag.StringVar(&opts.snapshot, "snapshot", "", "hibernate the machine to this zip file")
	flag.BoolVar(&opts.resume, "resume", false, "continue from -snapshot if it exists")
	flag.DurationVar(&opts.interval, "interval", 3*time.Second, "time between snapshots")
	flag.Uint64Var(&opts.maxCycles, "max-cycles", 0, "stop after this many instructions (0 = no limit)")
	_ = flag.Set("logtostderr", "true")
	flag.Parse()
	opts.program = flag.Arg(0)
	defer glog.Flush()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := runConsole(ctx, os.Stdout, opts); err != nil {
		glog.Errorf("%v", err)
		glog.Flush()
		os.Exit(1)
	}
}
