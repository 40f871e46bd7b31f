package util

import (
	"log"
	"sort"

	"golang.org/x/exp/constraints"
)

func MapsKeysSorted[M ~map[K]V, K constraints.Ordered, V any](m M) []K {
	if m == nil {
		return nil
	}
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Expect returns obj or terminates the process with msg and err.
func Expect[T any](obj T, err error, msg string) T {
	if err != nil {
		log.Fatalln(msg + `: ` + err.Error())
	}
	return obj
}
