/*
NAME
  parallel.go

DESCRIPTION
  parallel.go provides RecoverParallel, a fan-out variant of Recover:
  bit recovery is a pure function of one line and the config, so batches
  of lines are recovered concurrently across a fixed worker pool and
  drained in capture order.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Lab (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pipeline

import (
	"sync"

	"github.com/bbjunkie/vhs-teletext/seq"
	"github.com/bbjunkie/vhs-teletext/teletext/packet"
	"github.com/bbjunkie/vhs-teletext/vbi/line"
)

// batchPerWorker is the number of lines pulled per worker per batch.
const batchPerWorker = 4

// RecoverParallel is Recover with bit recovery fanned out across a
// fixed pool of workers goroutines. Lines are pulled upstream in
// batches from a single goroutine; within a batch each worker takes a
// strided share, writing into a per-slot result, and the batch is
// joined before any result is yielded. Results drain in slot order, so
// downstream stages observe packets in capture order. workers <= 1
// falls back to the inline Recover.
func RecoverParallel(lines seq.Seq[*line.Line], method Method, mags, rows []int, workers int) seq.Seq[*packet.Packet] {
	if workers <= 1 {
		return Recover(lines, method, mags, rows)
	}

	var (
		batch   []*line.Line
		results []*packet.Packet
		idx     int
		done    bool
	)

	return seq.Func[*packet.Packet](func() (*packet.Packet, bool) {
		for {
			for idx < len(results) {
				p := results[idx]
				idx++
				if p != nil {
					return p, true
				}
			}
			if done {
				return nil, false
			}

			batch = batch[:0]
			for len(batch) < workers*batchPerWorker {
				l, ok := lines.Next()
				if !ok {
					done = true
					break
				}
				batch = append(batch, l)
			}
			if len(batch) == 0 {
				continue
			}

			results = make([]*packet.Packet, len(batch))
			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for i := w; i < len(batch); i += workers {
						results[i] = recoverOne(batch[i], method, mags, rows)
					}
				}(w)
			}
			wg.Wait()
			idx = 0
		}
	})
}

// recoverOne applies method to one line, returning nil for a rejected
// line or a filtered-out packet.
func recoverOne(l *line.Line, method Method, mags, rows []int) *packet.Packet {
	if !l.IsTeletext() {
		return nil
	}
	var p *packet.Packet
	var ok bool
	if method == MethodSlice {
		p, ok = l.Slice(mags, rows)
	} else {
		p, ok = l.Deconvolve(mags, rows)
	}
	if !ok {
		return nil
	}
	return p
}
