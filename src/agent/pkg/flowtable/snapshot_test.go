// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package flowtable

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSnapshot_ConcurrentReadDeterminism tests that concurrent
// classification on a frozen snapshot agrees with a single-threaded run
func TestSnapshot_ConcurrentReadDeterminism(t *testing.T) {
	tbl := NewTable()
	mustInsert(t, tbl,
		Rule{
			Src:     Prefix{Addr: ip("10.0.0.0"), Len: 24},
			Dst:     Prefix{Addr: ip("20.0.0.0"), Len: 24},
			DstPort: 80,
			Action:  Allow("web"),
		},
		Rule{
			Src:    Prefix{Len: 0},
			Dst:    Prefix{Len: 0},
			Action: Deny(),
		},
	)
	snap := tbl.Freeze()

	packets := []Packet{
		{SrcAddr: ip("10.0.0.1"), DstAddr: ip("20.0.0.1"), SrcPort: 555, DstPort: 80},
		{SrcAddr: ip("10.0.0.1"), DstAddr: ip("20.0.0.1"), SrcPort: 555, DstPort: 81},
		{SrcAddr: ip("99.0.0.1"), DstAddr: ip("98.0.0.1"), SrcPort: 1, DstPort: 2},
	}

	// Single-threaded reference results.
	type result struct {
		action Action
		ok     bool
	}
	want := make([]result, len(packets))
	for i, pkt := range packets {
		want[i].action, want[i].ok = snap.Classify(pkt)
	}

	const workers = 16
	const rounds = 500

	var wg sync.WaitGroup
	errs := make(chan string, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				for i, pkt := range packets {
					action, ok := snap.Classify(pkt)
					if ok != want[i].ok || action != want[i].action {
						select {
						case errs <- "divergent classification result":
						default:
						}
						return
					}
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
}

// TestHandle_Swap tests copy-on-write table replacement through the
// shared handle
func TestHandle_Swap(t *testing.T) {
	first := NewTable()
	mustInsert(t, first, Rule{
		Src:    Prefix{Len: 0},
		Dst:    Prefix{Len: 0},
		Action: Deny(),
	})

	handle := NewHandle(first.Freeze())

	pkt := Packet{SrcAddr: ip("10.0.0.1"), DstAddr: ip("20.0.0.1")}

	action, ok := handle.Load().Classify(pkt)
	require.True(t, ok)
	assert.Equal(t, Deny(), action)

	// Build a replacement table and swap it in; the old snapshot stays
	// usable for readers that already hold it.
	old := handle.Load()

	second := NewTable()
	mustInsert(t, second, Rule{
		Src:    Prefix{Len: 0},
		Dst:    Prefix{Len: 0},
		Action: Allow("open"),
	})
	prev := handle.Swap(second.Freeze())
	assert.Same(t, old, prev)

	action, ok = handle.Load().Classify(pkt)
	require.True(t, ok)
	assert.Equal(t, Allow("open"), action)

	action, ok = old.Classify(pkt)
	require.True(t, ok)
	assert.Equal(t, Deny(), action)
}

// TestSnapshot_SwapUnderReaders tests handle swapping while readers are
// classifying
func TestSnapshot_SwapUnderReaders(t *testing.T) {
	build := func(label string) *Snapshot {
		tbl := NewTable()
		mustInsert(t, tbl, Rule{
			Src:    Prefix{Len: 0},
			Dst:    Prefix{Len: 0},
			Action: Allow(label),
		})
		return tbl.Freeze()
	}

	handle := NewHandle(build("gen0"))
	pkt := Packet{SrcAddr: ip("1.1.1.1"), DstAddr: ip("2.2.2.2")}

	done := make(chan struct{})
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				action, ok := handle.Load().Classify(pkt)
				if !ok || action.Kind != ActionAllow {
					select {
					case <-done:
					default:
						t.Error("reader observed an unserved table state")
					}
					return
				}
			}
		}()
	}

	for gen := 1; gen <= 50; gen++ {
		handle.Swap(build("gen"))
	}
	close(done)
	wg.Wait()
}
