package hexconv

// Halfbyte maps an ASCII character to the value of the hex digit it stands
// for. Entries holding 0xFF mark characters that are not hex digits.
var Halfbyte = func() (lut [256]byte) {
	for i := range lut {
		lut[i] = 0xFF
	}

	for c := byte('0'); c <= '9'; c++ {
		lut[c] = c - '0'
	}

	for c := byte('a'); c <= 'f'; c++ {
		lut[c] = 10 + c - 'a'
	}

	for c := byte('A'); c <= 'F'; c++ {
		lut[c] = 10 + c - 'A'
	}

	return lut
}()
