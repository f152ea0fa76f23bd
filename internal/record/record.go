// Package record assembles decoded readings into rows and persists them as
// delimited text.
package record

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/asada-m/read-digits/internal/display"
)

// Fields selects the optional metadata columns written per record. Region
// value columns are always written for every configured region.
type Fields struct {
	Number        bool `json:"number"`
	Filename      bool `json:"filename"`
	CreatedTime   bool `json:"created_time"`
	ModifiedTime  bool `json:"modified_time"`
	VideoTime     bool `json:"video_time"`
	VideoFileTime bool `json:"video_file_time"`
	// Combined adds a column multiplying the first numeric region by ten
	// to the power of the exponent region, when both are configured.
	Combined bool `json:"combined"`
}

// Record is one decoded frame: metadata plus one value per region.
type Record struct {
	Number        int
	Filename      string
	CreatedTime   string
	ModifiedTime  string
	VideoTime     string
	VideoFileTime string

	Values []display.Value // one per configured region, in region order

	// Failed marks frames whose geometry or acquisition failed entirely;
	// their value columns are written empty/NaN.
	Failed bool
}

// Combined computes value x 10^exponent from the first numeric and first
// exponent region, NaN when either is missing or NaN.
func (r Record) Combined(regions []display.Region) float64 {
	num, exp := math.NaN(), math.NaN()
	for i, reg := range regions {
		if i >= len(r.Values) {
			break
		}
		switch reg.Mode {
		case display.ModeNumeric:
			if math.IsNaN(num) {
				num = r.Values[i].Num
			}
		case display.ModeExponent:
			if math.IsNaN(exp) {
				exp = r.Values[i].Num
			}
		}
	}
	if math.IsNaN(num) || math.IsNaN(exp) {
		return math.NaN()
	}
	return num * math.Pow(10, exp)
}

// Header returns the CSV header row for the enabled fields and regions.
func Header(f Fields, regions []display.Region) []string {
	var h []string
	if f.Number {
		h = append(h, "number")
	}
	if f.Filename {
		h = append(h, "filename")
	}
	if f.CreatedTime {
		h = append(h, "created_time")
	}
	if f.ModifiedTime {
		h = append(h, "modified_time")
	}
	if f.VideoTime {
		h = append(h, "videotime")
	}
	if f.VideoFileTime {
		h = append(h, "videofiletime")
	}
	for i, reg := range regions {
		name := reg.Name
		if name == "" {
			name = fmt.Sprintf("value%d", i)
		}
		h = append(h, name)
	}
	if f.Combined {
		h = append(h, "combined")
	}
	return h
}

// Row renders one record against the enabled fields.
func Row(r Record, f Fields, regions []display.Region) []string {
	var row []string
	if f.Number {
		row = append(row, strconv.Itoa(r.Number))
	}
	if f.Filename {
		row = append(row, r.Filename)
	}
	if f.CreatedTime {
		row = append(row, r.CreatedTime)
	}
	if f.ModifiedTime {
		row = append(row, r.ModifiedTime)
	}
	if f.VideoTime {
		row = append(row, r.VideoTime)
	}
	if f.VideoFileTime {
		row = append(row, r.VideoFileTime)
	}
	for i, reg := range regions {
		// Failed frames carry no values; render them as NaN.
		v := display.Value{Num: math.NaN()}
		if i < len(r.Values) {
			v = r.Values[i]
		}
		row = append(row, formatValue(reg, v))
	}
	if f.Combined {
		row = append(row, formatFloat(r.Combined(regions)))
	}
	return row
}

// WriteCSV writes the records with a header matching only the enabled
// fields.
func WriteCSV(path string, f Fields, regions []display.Region, records []Record) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(Header(f, regions)); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write(Row(r, f, regions)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatValue(reg display.Region, v display.Value) string {
	if reg.Mode == display.ModeString {
		return v.Text
	}
	return formatFloat(v.Num)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
