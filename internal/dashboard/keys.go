package dashboard

import "unicode/utf8"

const (
	byteCtrlC     = 0x03
	byteBackspace = 0x08
	byteLF        = '\n'
	byteCR        = '\r'
	byteEsc       = 0x1b
	byteDelete    = 0x7f
)

// escapeSequences maps the CSI and SS3 sequences sent by common terminals
// (without the leading ESC) to keys.
var escapeSequences = map[string]KeyCode{
	"[A":  KeyUp,
	"[B":  KeyDown,
	"[H":  KeyHome,
	"[F":  KeyEnd,
	"[1~": KeyHome,
	"[4~": KeyEnd,
	"[7~": KeyHome,
	"[8~": KeyEnd,
	"OA":  KeyUp,
	"OB":  KeyDown,
	"OH":  KeyHome,
	"OF":  KeyEnd,
}

// DecodeKeys splits raw terminal input into key presses. A lone ESC at the
// end of buf is the Esc key; ESC followed by an unrecognised sequence is
// reported as KeyUnknown.
func DecodeKeys(buf []byte) []Key {
	var keys []Key
	for len(buf) > 0 {
		k, n := decodeKey(buf)
		keys = append(keys, k)
		buf = buf[n:]
	}
	return keys
}

func decodeKey(buf []byte) (Key, int) {
	switch b := buf[0]; {
	case b == byteEsc:
		return decodeEscape(buf)
	case b == byteCtrlC:
		return Special(KeyCtrlC), 1
	case b == byteCR || b == byteLF:
		return Special(KeyEnter), 1
	case b == byteBackspace || b == byteDelete:
		return Special(KeyBackspace), 1
	case b < 0x20:
		return Special(KeyUnknown), 1
	}

	r, n := utf8.DecodeRune(buf)
	if r == utf8.RuneError {
		return Special(KeyUnknown), max(n, 1)
	}
	return Rune(r), n
}

func decodeEscape(buf []byte) (Key, int) {
	if len(buf) == 1 {
		return Special(KeyEsc), 1
	}
	if buf[1] != '[' && buf[1] != 'O' {
		return Special(KeyUnknown), 2
	}

	// A sequence ends at the first byte in the final range 0x40..0x7e.
	for i := 2; i < len(buf); i++ {
		if buf[i] >= 0x40 && buf[i] <= 0x7e {
			if code, ok := escapeSequences[string(buf[1:i+1])]; ok {
				return Special(code), i + 1
			}
			return Special(KeyUnknown), i + 1
		}
	}
	return Special(KeyUnknown), len(buf)
}
