// Command readdigits runs a digit-reading job over an image directory or a
// video sequence and writes the decoded values as CSV.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gocv.io/x/gocv"

	"github.com/asada-m/read-digits/internal/batch"
	"github.com/asada-m/read-digits/internal/display"
	"github.com/asada-m/read-digits/internal/frame"
	"github.com/asada-m/read-digits/internal/glyph"
	"github.com/asada-m/read-digits/internal/job"
	"github.com/asada-m/read-digits/internal/marker"
	"github.com/asada-m/read-digits/internal/reader"
	"github.com/asada-m/read-digits/internal/record"
	"github.com/asada-m/read-digits/internal/rectify"
	"github.com/asada-m/read-digits/internal/skew"
	"github.com/asada-m/read-digits/internal/version"
	"github.com/asada-m/read-digits/pkg/geometry"
)

func main() {
	jobPath := flag.String("job", "", "Path to job file (.rdjob)")
	initJob := flag.Bool("init", false, "Write a template job file at -job and exit")
	check := flag.Bool("check", false, "Decode one frame and print the result instead of running the batch")
	at := flag.Float64("at", 0, "Frame to check: image index, or seconds into the video")
	save := flag.Bool("save", false, "Write skew-corrected region quads back to the job file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *jobPath == "" {
		fmt.Println("Usage: readdigits -job <path> [-init] [-check [-at n]] [-save]")
		os.Exit(1)
	}

	if *initJob {
		j := job.New(filepath.Base(*jobPath))
		if err := j.Save(*jobPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write job template: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote job template to %s\n", *jobPath)
		return
	}

	j, err := job.Load(*jobPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load job: %v\n", err)
		os.Exit(1)
	}

	src, err := openSource(j)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open frame source: %v\n", err)
		os.Exit(1)
	}
	defer src.close()

	fmt.Printf("[job] %s: %d frames, %d regions\n", j.Name, src.total, len(j.Regions))

	rd := reader.New(glyph.DefaultParams())

	var mk *marker.Tracker
	if j.UseMarkers {
		mk = marker.NewTracker(j.MarkerIDs)
	}

	// The first frame whose display region resolves becomes the reference:
	// it fixes the working-frame size and, with auto angle enabled, the
	// skew-corrected quads used for the whole batch. Frames without
	// readable markers are skipped, not fatal.
	var (
		quads        []geometry.Quad
		workW, workH int
	)
	found := false
	for i := 0; i < src.total && !found; i++ {
		ref, err := src.fetch(i)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read frame %d: %v\n", i, err)
			continue
		}
		quads, workW, workH, err = regionQuads(j, rd, ref.Mat, mk)
		ref.Mat.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Frame %d unusable as reference: %v\n", i, err)
			continue
		}
		found = true
	}
	if !found {
		fmt.Fprintln(os.Stderr, "No frame yields a readable display region")
		os.Exit(1)
	}
	if mk != nil {
		if q, ok := mk.Current(); ok {
			fmt.Printf("[markers] display quad %v\n", q.Corners())
		}
	}

	if *save {
		saveQuads(j, *jobPath, quads, workW, workH)
	}

	decode := func(m gocv.Mat) ([]display.Value, error) {
		return decodeFrame(j, rd, m, mk, quads)
	}

	if *check {
		checkFrame(j, rd, src, mk, quads, *at)
		return
	}

	records := batch.Run(src.total, src.fetch, decode, func(done, total int) {
		fmt.Printf("\r[batch] %d/%d", done, total)
	})
	fmt.Println()

	failed := 0
	for _, r := range records {
		if r.Failed {
			failed++
		}
	}
	if failed > 0 {
		fmt.Printf("[batch] %d of %d frames failed\n", failed, len(records))
	}

	out := j.GetOutputCSV(*jobPath)
	if err := record.WriteCSV(out, j.Fields, j.Regions, records); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[batch] wrote %d records to %s\n", len(records), out)
}

// source abstracts the two frame origins behind batch.Fetch.
type source struct {
	total int
	fetch batch.Fetch
	close func()
}

func openSource(j *job.File) (*source, error) {
	switch j.Source {
	case job.SourceImages:
		paths, err := frame.ListImages(j.ImageDir)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no images in %s", j.ImageDir)
		}
		return &source{
			total: len(paths),
			fetch: func(i int) (batch.Item, error) {
				it := batch.Item{Meta: record.Record{
					Number:   i,
					Filename: filepath.Base(paths[i]),
				}}
				if info, err := os.Stat(paths[i]); err == nil {
					// Birth time is not portable; modification time
					// stands in for both.
					t := info.ModTime().Format("2006-01-02 15:04:05")
					it.Meta.CreatedTime = t
					it.Meta.ModifiedTime = t
				}
				m, err := frame.LoadImage(paths[i])
				if err != nil {
					return it, err
				}
				it.Mat = rotated(m, j.Rotation)
				return it, nil
			},
			close: func() {},
		}, nil

	case job.SourceVideo:
		seq, err := frame.OpenVideos(j.VideoFiles)
		if err != nil {
			return nil, err
		}
		total := int(seq.Duration()/j.IntervalSec) + 1
		return &source{
			total: total,
			fetch: func(i int) (batch.Item, error) {
				sec := float64(i) * j.IntervalSec
				it := batch.Item{Meta: record.Record{
					Number:    i,
					VideoTime: strconv.FormatFloat(sec, 'f', -1, 64),
				}}
				if ts, ok := seq.TimestampAt(sec); ok {
					it.Meta.VideoFileTime = ts.Format("2006-01-02 15:04:05")
				}
				m, ok := seq.FrameAt(sec)
				if !ok {
					return it, fmt.Errorf("no frame at %gs", sec)
				}
				it.Mat = rotated(m, j.Rotation)
				return it, nil
			},
			close: seq.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown source %q", j.Source)
}

// rotated applies the job rotation, closing the input when a new Mat is
// produced.
func rotated(m gocv.Mat, degrees int) gocv.Mat {
	if degrees == 0 {
		return m
	}
	r := rectify.Rotate(m, degrees)
	m.Close()
	return r
}

// regionQuads resolves each region to an absolute quad in working-frame
// coordinates, running the skew search for numeric and exponent regions
// when the job asks for it.
func regionQuads(j *job.File, rd *reader.Reader, ref gocv.Mat, mk *marker.Tracker) ([]geometry.Quad, int, int, error) {
	work, err := workingFrame(ref, mk)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("reference frame: %w", err)
	}
	defer work.Close()

	quads := make([]geometry.Quad, len(j.Regions))
	for i, reg := range j.Regions {
		q := reg.QuadFor(work.Cols(), work.Rows())
		if j.AutoAngle && (reg.Mode == display.ModeNumeric || reg.Mode == display.ModeExponent) {
			q = skew.FindBestAngle(work, q, reg.Mode == display.ModeNumeric, rd, skew.DefaultParams())
			fmt.Printf("[skew] region %d corrected to %v\n", i, q.Corners())
		}
		quads[i] = q
	}
	return quads, work.Cols(), work.Rows(), nil
}

// workingFrame returns the frame the regions are read from: the raw frame,
// or its rectification to the marker quad detected in this frame. The
// caller closes the result; the input frame stays open.
func workingFrame(m gocv.Mat, mk *marker.Tracker) (gocv.Mat, error) {
	if mk == nil {
		return m.Clone(), nil
	}
	q, err := mk.Quad(m)
	if err != nil {
		return gocv.Mat{}, err
	}
	return rectify.WarpMat(m, q)
}

func decodeFrame(j *job.File, rd *reader.Reader, m gocv.Mat, mk *marker.Tracker, quads []geometry.Quad) ([]display.Value, error) {
	work, err := workingFrame(m, mk)
	if err != nil {
		return nil, err
	}
	defer work.Close()

	values := make([]display.Value, len(j.Regions))
	for i, reg := range j.Regions {
		if reg.Mode == display.ModeUnused {
			values[i] = display.Value{Num: math.NaN()}
			continue
		}
		text, _, err := rd.Read(work, quads[i])
		if err != nil {
			return nil, err
		}
		values[i] = reg.Interpret(text)
	}
	return values, nil
}

// checkFrame decodes a single frame verbosely: per-region text, value and
// glyph boxes.
func checkFrame(j *job.File, rd *reader.Reader, src *source, mk *marker.Tracker, quads []geometry.Quad, at float64) {
	idx := int(at)
	if j.Source == job.SourceVideo && j.IntervalSec > 0 {
		idx = int(at / j.IntervalSec)
	}
	if idx < 0 || idx >= src.total {
		fmt.Fprintf(os.Stderr, "Frame %d out of range (0-%d)\n", idx, src.total-1)
		os.Exit(1)
	}

	it, err := src.fetch(idx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch frame %d: %v\n", idx, err)
		os.Exit(1)
	}
	defer it.Mat.Close()

	work, err := workingFrame(it.Mat, mk)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to rectify frame: %v\n", err)
		os.Exit(1)
	}
	defer work.Close()

	fmt.Printf("Frame %d (%dx%d)\n", idx, work.Cols(), work.Rows())
	for i, reg := range j.Regions {
		if reg.Mode == display.ModeUnused {
			fmt.Printf("  region %d: unused\n", i)
			continue
		}
		text, glyphs, err := rd.Read(work, quads[i])
		if err != nil {
			fmt.Printf("  region %d: error: %v\n", i, err)
			continue
		}
		v := reg.Interpret(text)
		fmt.Printf("  region %d (%s, %s): %q", i, reg.Name, reg.Mode, text)
		if reg.Mode != display.ModeString {
			fmt.Printf(" -> %g", v.Num)
		}
		fmt.Println()
		for gi, g := range glyphs {
			fmt.Printf("    glyph %d: (%d,%d)-(%d,%d) %dx%d\n",
				gi, g.Left, g.Top, g.Right, g.Bottom, g.Width(), g.Height())
		}
	}
}

// saveQuads persists the corrected region quads back into the job file as
// ratios of the working frame.
func saveQuads(j *job.File, jobPath string, quads []geometry.Quad, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	for i := range j.Regions {
		j.Regions[i].Quad = quads[i].Ratio(w, h)
	}
	if err := j.Save(jobPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save job: %v\n", err)
		return
	}
	fmt.Printf("[job] saved corrected regions to %s\n", jobPath)
}
