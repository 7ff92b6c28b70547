package utils

import (
	"github.com/twmb/murmur3"
)

func HashString(s string) uint64 {
	hash := murmur3.New64()
	_, err := hash.Write([]byte(s))
	if err != nil {
		panic(err)
	}
	return hash.Sum64()
}

func HashStrings(ss []string) []uint64 {
	hash := murmur3.New64()

	hashes := make([]uint64, len(ss))
	for i, s := range ss {
		hash.Reset()
		_, err := hash.Write([]byte(s))
		if err != nil {
			panic(err)
		}
		hashes[i] = hash.Sum64()
	}

	return hashes
}
