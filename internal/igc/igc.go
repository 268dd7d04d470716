// Package igc reads FAI IGC flight logs, as uploaded to the contest
// server, into kurbeln tracks.
package igc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/banshee-data/kurbeln/internal/fsutil"
	"github.com/banshee-data/kurbeln/internal/kurbeln"
)

// ErrMalformedRecord is wrapped by every parse error for a bad line.
var ErrMalformedRecord = errors.New("malformed record")

// ErrNoFixes is returned for logs without a single B record.
var ErrNoFixes = errors.New("no fixes in flight log")

// Fix is one B record.
type Fix struct {
	Seconds     int64 // since midnight UTC of the flight date, past 86400 after a rollover
	Lat, Lon    float64
	Valid       bool // 'A' (3D) fix validity
	PressureAlt int  // metres
	GPSAlt      int  // metres
}

// Flight is a parsed IGC file.
type Flight struct {
	Date     time.Time // UTC midnight of the HFDTE date; zero if the header is missing
	Pilot    string
	Glider   string
	GliderID string
	Fixes    []Fix
}

// Time returns the absolute time of a fix, or the offset from the zero
// time when the log carried no date.
func (f *Flight) Time(fx Fix) time.Time {
	return f.Date.Add(time.Duration(fx.Seconds) * time.Second)
}

// Track converts the fixes into a kurbeln.Track. Times are Unix seconds
// when the date is known, seconds of day otherwise. GPS altitude is used
// unless the logger recorded it as zero.
func (f *Flight) Track() kurbeln.Track {
	var base int64
	if !f.Date.IsZero() {
		base = f.Date.Unix()
	}
	t := make(kurbeln.Track, len(f.Fixes))
	for i, fx := range f.Fixes {
		alt := fx.GPSAlt
		if alt == 0 {
			alt = fx.PressureAlt
		}
		t[i] = kurbeln.Sample{Time: base + fx.Seconds, Lat: fx.Lat, Lon: fx.Lon, Alt: float64(alt)}
	}
	return t
}

// Parse reads an uncompressed IGC log.
func Parse(r io.Reader) (*Flight, error) {
	f := &Flight{}
	var (
		lineNo  int
		dayBase int64
		prevSOD int64 = -1
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line == "" {
			continue
		}

		switch line[0] {
		case 'B':
			fx, sod, err := parseB(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			// Loggers write time of day only; a large step backwards is midnight.
			if prevSOD >= 0 && sod+43200 < prevSOD {
				dayBase += 86400
			}
			prevSOD = sod
			fx.Seconds = dayBase + sod
			f.Fixes = append(f.Fixes, fx)

		case 'H':
			if err := f.parseHeader(line); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading flight log: %w", err)
	}
	if len(f.Fixes) == 0 {
		return nil, ErrNoFixes
	}
	return f, nil
}

func (f *Flight) parseHeader(line string) error {
	if len(line) < 5 {
		return nil
	}
	value := ""
	if i := strings.IndexByte(line, ':'); i >= 0 {
		value = strings.TrimSpace(line[i+1:])
	}

	switch line[2:5] {
	case "DTE":
		// HFDTE280622 or HFDTEDATE:280622,01
		digits := line[5:]
		if value != "" {
			digits = value
		}
		if len(digits) < 6 {
			return fmt.Errorf("%w: short date header %q", ErrMalformedRecord, line)
		}
		d, err := time.Parse("020106", digits[:6])
		if err != nil {
			return fmt.Errorf("%w: date header %q: %v", ErrMalformedRecord, line, err)
		}
		f.Date = d.UTC()
	case "PLT":
		f.Pilot = value
	case "GTY":
		f.Glider = value
	case "GID":
		f.GliderID = value
	}
	return nil
}

// parseB decodes B HHMMSS DDMMmmmN DDDMMmmmE V PPPPP GGGGG.
func parseB(line string) (Fix, int64, error) {
	if len(line) < 35 {
		return Fix{}, 0, fmt.Errorf("%w: B record too short (%d bytes)", ErrMalformedRecord, len(line))
	}

	hh, err1 := strconv.Atoi(line[1:3])
	mm, err2 := strconv.Atoi(line[3:5])
	ss, err3 := strconv.Atoi(line[5:7])
	if err := errors.Join(err1, err2, err3); err != nil || hh > 23 || mm > 59 || ss > 59 {
		return Fix{}, 0, fmt.Errorf("%w: bad time %q", ErrMalformedRecord, line[1:7])
	}

	lat, err := coord(line[7:14], line[14], 2, 'N', 'S')
	if err != nil {
		return Fix{}, 0, err
	}
	lon, err := coord(line[15:23], line[23], 3, 'E', 'W')
	if err != nil {
		return Fix{}, 0, err
	}

	palt, err := strconv.Atoi(line[25:30])
	if err != nil {
		return Fix{}, 0, fmt.Errorf("%w: pressure altitude %q", ErrMalformedRecord, line[25:30])
	}
	galt, err := strconv.Atoi(line[30:35])
	if err != nil {
		return Fix{}, 0, fmt.Errorf("%w: gps altitude %q", ErrMalformedRecord, line[30:35])
	}

	fx := Fix{
		Lat:         lat,
		Lon:         lon,
		Valid:       line[24] == 'A',
		PressureAlt: palt,
		GPSAlt:      galt,
	}
	return fx, int64(hh*3600 + mm*60 + ss), nil
}

// coord decodes DDMMmmm / DDDMMmmm with its hemisphere letter.
func coord(s string, hemi byte, degDigits int, pos, neg byte) (float64, error) {
	deg, err := strconv.Atoi(s[:degDigits])
	if err != nil {
		return 0, fmt.Errorf("%w: coordinate %q", ErrMalformedRecord, s)
	}
	milliMin, err := strconv.Atoi(s[degDigits:])
	if err != nil {
		return 0, fmt.Errorf("%w: coordinate %q", ErrMalformedRecord, s)
	}
	v := float64(deg) + float64(milliMin)/60000
	switch hemi {
	case pos:
		return v, nil
	case neg:
		return -v, nil
	}
	return 0, fmt.Errorf("%w: hemisphere %q", ErrMalformedRecord, hemi)
}

var gzipMagic = []byte{0x1f, 0x8b}

// Load reads a flight log from fsys, gunzipping it if it starts with the
// gzip magic bytes (the archive stores .igc.gz).
func Load(fsys fsutil.FileSystem, name string) (*Flight, error) {
	file, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open flight log: %w", err)
	}
	defer file.Close()

	br := bufio.NewReader(file)
	var r io.Reader = br
	if magic, err := br.Peek(2); err == nil && bytes.Equal(magic, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", name, err)
		}
		defer zr.Close()
		r = zr
	}

	f, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// Open is Load on the local filesystem.
func Open(name string) (*Flight, error) {
	return Load(fsutil.OSFileSystem{}, name)
}
