package hi229

import (
	"encoding/binary"
	log "github.com/sirupsen/logrus"
	"math"
)

const (
	ChSync1   = 0x5A // CHAOHE message sync code 1
	ChSync2   = 0xA5 // CHAOHE message sync code 2
	ChHdrSize = 0x06 // CHAOHE protocol header size

	MaxRawLen = 512 // max raw frame long

	// data items
	kItemID           = 0x90
	kItemAccRaw       = 0xA0
	kItemGyrRaw       = 0xB0
	kItemMagRaw       = 0xC0
	kItemRotationEul  = 0xD0
	kItemRotationQuat = 0xD1
	kItemPressure     = 0xF0
	KItemIMUSOL       = 0x91

	imuSolLen = 76
)

// frame is one decoded CHAOHE packet. Acc is in G, Gyro in deg/s, Mag in uT,
// Euler in degrees and Quat is ordered w, x, y, z.
type frame struct {
	ID        uint32
	Acc       [3]float32
	Gyro      [3]float32
	Mag       [3]float32
	Euler     [3]float32
	Quat      [4]float32
	Pressure  float32
	Timestamp uint32

	hasAcc  bool
	hasMag  bool
	hasQuat bool
}

// decoder accumulates serial bytes until a full frame passes its checksum.
type decoder struct {
	nByte int
	len   int
	buf   [MaxRawLen]uint8
	frame frame
}

// input feeds one byte. It returns 1 when d.frame holds a new frame, -1 on a
// rejected frame and 0 while more bytes are needed.
func (d *decoder) input(data uint8) int {
	if d.nByte == 0 {
		d.buf[0] = d.buf[1]
		d.buf[1] = data
		if d.buf[0] != ChSync1 || d.buf[1] != ChSync2 {
			return 0
		}
		d.nByte = 2
		return 0
	}

	d.buf[d.nByte] = data
	d.nByte++

	if d.nByte == ChHdrSize {
		if d.len = int(binary.LittleEndian.Uint16(d.buf[2:])); d.len > (MaxRawLen - ChHdrSize) {
			d.nByte = 0
			return -1
		}
	}

	if d.nByte < ChHdrSize || d.nByte < (d.len+ChHdrSize) {
		return 0
	}

	d.nByte = 0
	return d.decode()
}

func (d *decoder) decode() int {
	var crc uint16 = 0

	crc = crc16Update(crc, d.buf[:4])
	crc = crc16Update(crc, d.buf[ChHdrSize:d.len+ChHdrSize])

	if expect := binary.LittleEndian.Uint16(d.buf[4:6]); crc != expect {
		log.Debugf("ch checksum error: frame:0x%X calculate:0x%X, len:%d", expect, crc, d.len)
		return -1
	}

	return d.parse(d.buf[ChHdrSize : d.len+ChHdrSize])
}

func (d *decoder) parse(p []uint8) int {
	f := &d.frame
	*f = frame{}

	for ofs := 0; ofs < len(p); {
		var need int
		switch p[ofs] {
		case kItemID:
			need = 2
		case kItemAccRaw, kItemGyrRaw, kItemMagRaw, kItemRotationEul:
			need = 7
		case kItemRotationQuat:
			need = 17
		case kItemPressure:
			need = 5
		case KItemIMUSOL:
			need = imuSolLen
		default:
			ofs++
			continue
		}
		if ofs+need > len(p) {
			return -1
		}
		item := p[ofs : ofs+need]

		switch item[0] {
		case kItemID:
			f.ID = uint32(item[1])
		case kItemAccRaw:
			readI16(f.Acc[:], item[1:], 1000)
			f.hasAcc = true
		case kItemGyrRaw:
			readI16(f.Gyro[:], item[1:], 10)
		case kItemMagRaw:
			readI16(f.Mag[:], item[1:], 10)
			f.hasMag = true
		case kItemRotationEul:
			readI16(f.Euler[:2], item[1:], 100)
			readI16(f.Euler[2:], item[5:], 10)
		case kItemRotationQuat:
			readR4(f.Quat[:], item[1:])
			f.hasQuat = true
		case kItemPressure:
			f.Pressure = r4(item[1:])
		case KItemIMUSOL:
			f.ID = uint32(item[1])
			f.Pressure = r4(item[4:])
			f.Timestamp = binary.LittleEndian.Uint32(item[8:])
			readR4(f.Acc[:], item[12:])
			readR4(f.Gyro[:], item[24:])
			readR4(f.Mag[:], item[36:])
			readR4(f.Euler[:], item[48:])
			readR4(f.Quat[:], item[60:])
			f.hasAcc, f.hasMag, f.hasQuat = true, true, true
		}
		ofs += need
	}

	return 1
}

// crc16Update is CRC16-CCITT (poly 0x1021) without final xor.
func crc16Update(crc uint16, src []uint8) uint16 {
	for _, b := range src {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func r4(p []uint8) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(p))
}

func readR4(dst []float32, p []uint8) {
	for i := range dst {
		dst[i] = r4(p[4*i:])
	}
}

func readI16(dst []float32, p []uint8, scale float32) {
	for i := range dst {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(p[2*i:]))) / scale
	}
}
