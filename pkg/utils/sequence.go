package utils

//PadSequence makes sure given sequence has the wanted length. In case it's shorter, it's padded with fill.
//In case it's longer it's returned as is, callers must size the wanted length themselves.
func PadSequence[T any](seq []T, length int, fill T) []T {
	padded := make([]T, 0, max(length, len(seq)))
	padded = append(padded, seq...)
	for i := len(seq); i < length; i++ {
		padded = append(padded, fill)
	}

	return padded
}
