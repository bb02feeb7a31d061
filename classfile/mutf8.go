package classfile

import "unicode/utf8"

// decodeModifiedUtf8 decodes the class-file string encoding: NUL is stored
// as 0xC0 0x80 and supplementary characters as a pair of three-byte
// surrogates. Malformed bytes decode to utf8.RuneError.
func decodeModifiedUtf8(data []byte) string {
	runes := make([]rune, 0, len(data))
	i := 0
	for i < len(data) {
		b := data[i]
		switch {
		case b&0x80 == 0:
			runes = append(runes, rune(b))
			i++
		case b&0xE0 == 0xC0:
			if i+1 >= len(data) {
				runes = append(runes, utf8.RuneError)
				i = len(data)
				continue
			}
			runes = append(runes, rune(b&0x1F)<<6|rune(data[i+1]&0x3F))
			i += 2
		case b&0xF0 == 0xE0:
			if i+2 >= len(data) {
				runes = append(runes, utf8.RuneError)
				i = len(data)
				continue
			}
			r := decodeThree(data[i:])
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(data) && data[i+3]&0xF0 == 0xE0 {
				low := decodeThree(data[i+3:])
				if low >= 0xDC00 && low <= 0xDFFF {
					runes = append(runes, 0x10000+(r-0xD800)<<10+(low-0xDC00))
					i += 6
					continue
				}
			}
			runes = append(runes, r)
			i += 3
		default:
			runes = append(runes, utf8.RuneError)
			i++
		}
	}
	return string(runes)
}

func decodeThree(b []byte) rune {
	return rune(b[0]&0x0F)<<12 | rune(b[1]&0x3F)<<6 | rune(b[2]&0x3F)
}
