package motec

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

var (
	// ErrBadMarker is returned when a file does not start with the .ld marker.
	ErrBadMarker = errors.New("not a MoTeC ld file")
	// ErrCorrupt is returned when a pointer or count in the file points
	// outside it or the channel list loops.
	ErrCorrupt = errors.New("corrupt ld file")
)

// Decode reads a complete .ld file of the given size. Channel values are
// converted to physical units using each channel's shift, multiplier,
// scale and decimal places.
func Decode(r io.ReaderAt, size int64) (*Log, error) {
	if size < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, size)
	}
	hdr := make([]byte, headerSize)
	if _, err := r.ReadAt(hdr, 0); err != nil {
		return nil, fmt.Errorf("read ld header: %w", err)
	}
	if le.Uint32(hdr[hdrMarker:]) != ldMarker {
		return nil, ErrBadMarker
	}

	l := &Log{
		Date:         getString(hdr[hdrDate : hdrDate+16]),
		Time:         getString(hdr[hdrTime : hdrTime+16]),
		Driver:       getString(hdr[hdrDriver : hdrDriver+64]),
		Vehicle:      getString(hdr[hdrVehicle : hdrVehicle+64]),
		Venue:        getString(hdr[hdrVenue : hdrVenue+64]),
		ShortComment: getString(hdr[hdrShortComment : hdrShortComment+64]),
	}

	if ptr := int64(le.Uint32(hdr[hdrEventPtr:])); ptr > 0 {
		if err := l.readEvent(r, ptr); err != nil {
			return nil, err
		}
	}

	numChans := int64(le.Uint32(hdr[hdrNumChans:]))
	if numChans*chanMetaSize > size {
		return nil, fmt.Errorf("%w: header lists %d channels", ErrCorrupt, numChans)
	}
	seen := make(map[int64]bool, numChans)
	ptr := int64(le.Uint32(hdr[hdrMetaPtr:]))
	for i := int64(0); i < numChans && ptr != 0; i++ {
		if seen[ptr] {
			return nil, fmt.Errorf("%w: channel list revisits offset %d", ErrCorrupt, ptr)
		}
		seen[ptr] = true
		ch, next, err := readChannel(r, ptr, size)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		l.Channels = append(l.Channels, ch)
		ptr = next
	}
	if int64(len(l.Channels)) != numChans {
		return nil, fmt.Errorf("header lists %d channels, found %d", numChans, len(l.Channels))
	}
	return l, nil
}

// ReadFile decodes the .ld file at path.
func ReadFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return Decode(f, st.Size())
}

func (l *Log) readEvent(r io.ReaderAt, ptr int64) error {
	b := make([]byte, eventSize)
	if _, err := r.ReadAt(b, ptr); err != nil {
		return fmt.Errorf("read event: %w", err)
	}
	l.Event = Event{
		Name:    getString(b[0:64]),
		Session: getString(b[64:128]),
		Comment: getString(b[128:1152]),
	}

	venuePtr := int64(le.Uint16(b[1152:]))
	if venuePtr == 0 {
		return nil
	}
	v := make([]byte, venueSize)
	if _, err := r.ReadAt(v, venuePtr); err != nil {
		return fmt.Errorf("read venue: %w", err)
	}

	vehiclePtr := int64(le.Uint16(v[1098:]))
	if vehiclePtr == 0 {
		return nil
	}
	vb := make([]byte, vehicleSize)
	if _, err := r.ReadAt(vb, vehiclePtr); err != nil {
		return fmt.Errorf("read vehicle: %w", err)
	}
	l.VehicleWeight = le.Uint32(vb[192:])
	l.VehicleType = getString(vb[196:228])
	l.VehicleComment = getString(vb[228:260])
	return nil
}

func readChannel(r io.ReaderAt, ptr, size int64) (*Channel, int64, error) {
	if ptr+chanMetaSize > size {
		return nil, 0, fmt.Errorf("%w: metadata at %d past end of file", ErrCorrupt, ptr)
	}
	b := make([]byte, chanMetaSize)
	if _, err := r.ReadAt(b, ptr); err != nil {
		return nil, 0, fmt.Errorf("read metadata: %w", err)
	}
	next := int64(le.Uint32(b[4:]))
	dataPtr := int64(le.Uint32(b[8:]))
	n := int64(le.Uint32(b[12:]))
	dtypeA := le.Uint16(b[18:])
	width := int(le.Uint16(b[20:]))

	shift := float64(int16(le.Uint16(b[24:])))
	mul := float64(int16(le.Uint16(b[26:])))
	scale := float64(int16(le.Uint16(b[28:])))
	dec := float64(int16(le.Uint16(b[30:])))
	if scale == 0 {
		scale = 1
	}

	ch := &Channel{
		FrequencyHz: le.Uint16(b[22:]),
		Name:        getString(b[32:64]),
		ShortName:   getString(b[64:72]),
		Unit:        getString(b[72:84]),
	}

	decode, err := sampleDecoder(dtypeA, width)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", ch.Name, err)
	}
	if dataPtr > size || n*int64(width) > size-dataPtr {
		return nil, 0, fmt.Errorf("%w: %s has %d samples past end of file", ErrCorrupt, ch.Name, n)
	}
	raw := make([]byte, n*int64(width))
	if n > 0 {
		if _, err := r.ReadAt(raw, dataPtr); err != nil {
			return nil, 0, fmt.Errorf("read %s samples: %w", ch.Name, err)
		}
	}
	ch.Samples = make([]float32, n)
	for i := range ch.Samples {
		v := decode(raw[i*width:])
		ch.Samples[i] = float32((v/scale*math.Pow(10, -dec) + shift) * mul)
	}
	return ch, next, nil
}

func sampleDecoder(dtypeA uint16, width int) (func([]byte) float64, error) {
	switch {
	case dtypeA == dtypeFloat && width == 4:
		return func(b []byte) float64 { return float64(math.Float32frombits(le.Uint32(b))) }, nil
	case (dtypeA == dtypeInt16 || dtypeA == dtypeIntAlt) && width == 2:
		return func(b []byte) float64 { return float64(int16(le.Uint16(b))) }, nil
	case (dtypeA == dtypeInt32 || dtypeA == dtypeIntAlt) && width == 4:
		return func(b []byte) float64 { return float64(int32(le.Uint32(b))) }, nil
	}
	return nil, fmt.Errorf("unsupported sample type 0x%02x/%d", dtypeA, width)
}
