package disk

import "strings"

// ensoniqChars maps the Ensoniq display character set onto ASCII. Digits and
// the dash live at odd positions; everything else is plain ASCII.
var ensoniqChars = map[byte]byte{
	0x00: '-',
	0x21: '0',
	0x23: '1',
	0x25: '2',
	0x28: '3',
	0x29: '4',
	0x3a: '5',
	0x3b: '6',
	0x5b: '7',
	0x5c: '8',
	0x5d: '9',
}

// ToASCII converts a name from the Ensoniq character set
func ToASCII(b []byte) string {
	var s strings.Builder
	s.Grow(len(b))
	for _, c := range b {
		if m, ok := ensoniqChars[c]; ok {
			c = m
		}
		s.WriteByte(c)
	}
	return s.String()
}

// FromASCII is the inverse of ToASCII
func FromASCII(s string) []byte {
	out := []byte(s)
	for i, c := range out {
		for k, v := range ensoniqChars {
			if v == c {
				out[i] = k
				break
			}
		}
	}
	return out
}
