package operations

import "github.com/prysmaticlabs/go-ssz"

func sszHashTreeRoot(v interface{}) ([32]byte, error) {
	return ssz.HashTreeRoot(v)
}
