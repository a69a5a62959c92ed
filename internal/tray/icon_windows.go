//go:build windows

package tray

import (
	"bytes"
	"encoding/binary"
)

// platformIcon wraps PNG bytes in a single-entry ICO container. LoadImage
// with IMAGE_ICON only accepts ICO, which may embed PNG data directly.
func platformIcon(png []byte) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint16(0)) // reserved
	binary.Write(buf, binary.LittleEndian, uint16(1)) // type: icon
	binary.Write(buf, binary.LittleEndian, uint16(1)) // image count

	buf.WriteByte(0) // width (0 = 256)
	buf.WriteByte(0) // height (0 = 256)
	buf.WriteByte(0) // palette size
	buf.WriteByte(0) // reserved
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(32))
	binary.Write(buf, binary.LittleEndian, uint32(len(png)))
	binary.Write(buf, binary.LittleEndian, uint32(6+16))

	buf.Write(png)
	return buf.Bytes()
}
