package motec

import (
	"encoding/binary"
	"math"
)

// Block sizes of the .ld container.
const (
	headerSize   = 1762
	eventSize    = 1154
	venueSize    = 1100
	vehicleSize  = 260
	chanMetaSize = 124

	eventPtr = headerSize
)

// Header field offsets.
const (
	hdrMarker       = 0
	hdrMetaPtr      = 8
	hdrDataPtr      = 12
	hdrEventPtr     = 36
	hdrStatic       = 64
	hdrDeviceSerial = 70
	hdrDeviceType   = 74
	hdrDeviceVer    = 82
	hdrStatic2      = 84
	hdrNumChans     = 86
	hdrDate         = 94
	hdrTime         = 126
	hdrDriver       = 158
	hdrVehicle      = 222
	hdrVenue        = 350
	hdrProLogging   = 1502
	hdrShortComment = 1572
)

// Magic values written by ADL-family loggers; i2 checks the marker only.
const (
	ldMarker     = 0x40
	deviceSerial = 0x1f44
	deviceType   = "ADL"
	deviceVer    = 420
	proLogging   = 0xc81a4
	chanIDBase   = 0x2ee1
)

// Channel data types. Integer channels may also be tagged 0x00.
const (
	dtypeIntAlt = 0x00
	dtypeInt16  = 0x03
	dtypeInt32  = 0x05
	dtypeFloat  = 0x07
)

var le = binary.LittleEndian

type layout struct {
	venuePtr   int
	vehiclePtr int
	metaStart  int
	dataStart  int
	chanData   []int
	size       int
}

func (l *Log) layout() layout {
	lay := layout{venuePtr: eventPtr + eventSize}
	lay.vehiclePtr = lay.venuePtr + venueSize
	lay.metaStart = lay.vehiclePtr + vehicleSize
	lay.dataStart = lay.metaStart + len(l.Channels)*chanMetaSize

	off := lay.dataStart
	lay.chanData = make([]int, len(l.Channels))
	for i, ch := range l.Channels {
		lay.chanData[i] = off
		off += 4 * len(ch.Samples)
	}
	lay.size = off
	return lay
}

func (lay layout) metaPtr(i int) int {
	return lay.metaStart + i*chanMetaSize
}

func (l *Log) putHeader(b []byte, lay layout) {
	le.PutUint32(b[hdrMarker:], ldMarker)
	le.PutUint32(b[hdrMetaPtr:], uint32(lay.metaStart))
	le.PutUint32(b[hdrDataPtr:], uint32(lay.dataStart))
	le.PutUint32(b[hdrEventPtr:], eventPtr)
	le.PutUint16(b[hdrStatic:], 1)
	le.PutUint16(b[hdrStatic+2:], 0x4240)
	le.PutUint16(b[hdrStatic+4:], 0xf)
	le.PutUint32(b[hdrDeviceSerial:], deviceSerial)
	putString(b[hdrDeviceType:hdrDeviceType+8], deviceType)
	le.PutUint16(b[hdrDeviceVer:], deviceVer)
	le.PutUint16(b[hdrStatic2:], 0xadb0)
	le.PutUint32(b[hdrNumChans:], uint32(len(l.Channels)))
	putString(b[hdrDate:hdrDate+16], l.Date)
	putString(b[hdrTime:hdrTime+16], l.Time)
	putString(b[hdrDriver:hdrDriver+64], l.Driver)
	putString(b[hdrVehicle:hdrVehicle+64], l.Vehicle)
	putString(b[hdrVenue:hdrVenue+64], l.Venue)
	le.PutUint32(b[hdrProLogging:], proLogging)
	putString(b[hdrShortComment:hdrShortComment+64], l.ShortComment)
}

func (l *Log) putEvent(b []byte, lay layout) {
	putString(b[0:64], l.Event.Name)
	putString(b[64:128], l.Event.Session)
	putString(b[128:1152], l.Event.Comment)
	le.PutUint16(b[1152:], uint16(lay.venuePtr))
}

func (l *Log) putVenue(b []byte, lay layout) {
	putString(b[0:64], l.Venue)
	le.PutUint16(b[1098:], uint16(lay.vehiclePtr))
}

func (l *Log) putVehicle(b []byte) {
	putString(b[0:64], l.Vehicle)
	le.PutUint32(b[192:], l.VehicleWeight)
	putString(b[196:228], l.VehicleType)
	putString(b[228:260], l.VehicleComment)
}

func putChannel(b []byte, ch *Channel, i int, lay layout) {
	var prev, next uint32
	if i > 0 {
		prev = uint32(lay.metaPtr(i - 1))
	}
	if i < len(lay.chanData)-1 {
		next = uint32(lay.metaPtr(i + 1))
	}
	le.PutUint32(b[0:], prev)
	le.PutUint32(b[4:], next)
	le.PutUint32(b[8:], uint32(lay.chanData[i]))
	le.PutUint32(b[12:], uint32(len(ch.Samples)))
	le.PutUint16(b[16:], uint16(chanIDBase+i))
	le.PutUint16(b[18:], dtypeFloat)
	le.PutUint16(b[20:], 4)
	le.PutUint16(b[22:], ch.FrequencyHz)
	le.PutUint16(b[24:], 0) // shift
	le.PutUint16(b[26:], 1) // mul
	le.PutUint16(b[28:], 1) // scale
	le.PutUint16(b[30:], 0) // decimal places
	putString(b[32:64], ch.Name)
	putString(b[64:72], ch.ShortName)
	putString(b[72:84], ch.Unit)
}

func putSamples(b []byte, samples []float32) {
	for i, v := range samples {
		le.PutUint32(b[i*4:], math.Float32bits(v))
	}
}

// putString copies s into a fixed-width, NUL-padded field, truncating on
// a rune boundary when it does not fit.
func putString(dst []byte, s string) {
	if len(s) > len(dst) {
		n := len(dst)
		for n > 0 && !runeStart(s[n]) {
			n--
		}
		s = s[:n]
	}
	copy(dst, s)
}

func runeStart(b byte) bool {
	return b&0xc0 != 0x80
}

// getString reads a NUL-padded field.
func getString(src []byte) string {
	for i, c := range src {
		if c == 0 {
			return string(src[:i])
		}
	}
	return string(src)
}
