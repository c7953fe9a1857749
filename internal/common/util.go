package common

// WipeByteArray zeroes the buffer in place. Nil-safe. Used to clear
// password bytes once they have been handed to the backend.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
