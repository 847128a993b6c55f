package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

var (
	NanoidSize     = 8
	nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NanoID returns a random identifier component. Case records are reachable
// by anyone with contents-API read access, so ids must not be enumerable.
func NanoID() string {
	return NanoIDSize(NanoidSize)
}

func NanoIDSize(size int) string {
	if size == 0 {
		size = NanoidSize
	}

	return gonanoid.MustGenerate(nanoidAlphabet, size)
}
