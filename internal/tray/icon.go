package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
)

const iconSize = 32

var (
	iconBackground = color.NRGBA{R: 0x2b, G: 0x6c, B: 0xb0, A: 0xff}
	iconForeground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// IconPNG draws the tray icon: a rounded square with a speaker wave.
func IconPNG() ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			if inRoundedSquare(x, y) {
				img.SetNRGBA(x, y, iconBackground)
			}
		}
	}

	// speaker body
	for y := 12; y < 20; y++ {
		for x := 7; x < 12; x++ {
			img.SetNRGBA(x, y, iconForeground)
		}
	}
	// cone
	for x := 12; x < 17; x++ {
		spread := x - 12
		for y := 12 - spread; y < 20+spread; y++ {
			img.SetNRGBA(x, y, iconForeground)
		}
	}
	// waves
	for _, r := range []int{4, 8} {
		for y := 16 - r; y <= 16+r; y++ {
			d := y - 16
			if d < 0 {
				d = -d
			}
			x := 19 + r - d/2
			if x < iconSize-3 {
				img.SetNRGBA(x, y, iconForeground)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inRoundedSquare(x, y int) bool {
	const r = 6
	cx, cy := x, y
	switch {
	case x < r:
		cx = r
	case x >= iconSize-r:
		cx = iconSize - r - 1
	}
	switch {
	case y < r:
		cy = r
	case y >= iconSize-r:
		cy = iconSize - r - 1
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

// iconBytes returns the icon in the format the platform tray expects. Windows
// wants an ICO container; a PNG payload inside it is accepted.
func iconBytes() ([]byte, error) {
	data, err := IconPNG()
	if err != nil || runtime.GOOS != "windows" {
		return data, err
	}
	return wrapICO(data, iconSize), nil
}

func wrapICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer
	// ICONDIR
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	buf.WriteByte(byte(size))
	buf.WriteByte(byte(size))
	buf.WriteByte(0) // palette
	buf.WriteByte(0) // reserved
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	_ = binary.Write(&buf, binary.LittleEndian, uint16(32)) // bits per pixel
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pngData)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(6+16))
	buf.Write(pngData)
	return buf.Bytes()
}
