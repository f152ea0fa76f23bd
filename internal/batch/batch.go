// Package batch fans frame decoding out over a bounded worker pool while
// keeping the output in frame order.
package batch

import (
	"runtime"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"

	"github.com/asada-m/read-digits/internal/display"
	"github.com/asada-m/read-digits/internal/record"
)

// Item is one frame handed to the pool. The pool takes ownership of the
// Mat and closes it after decoding.
type Item struct {
	Index int
	Mat   gocv.Mat
	Meta  record.Record
}

// Fetch acquires the i-th frame. Fetches run sequentially on a single
// goroutine, so video captures and other stateful sources need no locking.
type Fetch func(i int) (Item, error)

// Decode turns one frame into per-region values.
type Decode func(frame gocv.Mat) ([]display.Value, error)

// Progress is called after each frame completes. It may be called from
// several goroutines at once.
type Progress func(done, total int)

// Run decodes total frames with up to GOMAXPROCS workers. Records come
// back ordered by frame index regardless of completion order; a frame
// whose fetch or decode fails is marked Failed and does not abort the
// batch.
func Run(total int, fetch Fetch, decode Decode, progress Progress) []record.Record {
	records := make([]record.Record, total)
	if total == 0 {
		return records
	}

	var done atomic.Int64
	step := func() {
		if progress != nil {
			progress(int(done.Add(1)), total)
		}
	}

	work := make(chan Item, 1)
	go func() {
		defer close(work)
		for i := 0; i < total; i++ {
			it, err := fetch(i)
			if err != nil {
				it.Meta.Failed = true
				records[i] = it.Meta
				step()
				continue
			}
			it.Index = i
			work <- it
		}
	}()

	workers := runtime.GOMAXPROCS(0)
	if workers > total {
		workers = total
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range work {
				rec := it.Meta
				values, err := decode(it.Mat)
				it.Mat.Close()
				if err != nil {
					rec.Failed = true
				} else {
					rec.Values = values
				}
				records[it.Index] = rec
				step()
			}
		}()
	}
	wg.Wait()

	return records
}
