package lib

import (
	"crypto/rand"

	"github.com/ethereum/go-ethereum/common"
)

// GetRandomAddr returns a random 20-byte address, used for test actors and
// generated identities.
func GetRandomAddr() common.Address {
	b := make([]byte, common.AddressLength)
	_, _ = rand.Read(b)
	return common.BytesToAddress(b)
}

// AddrShort renders an address in the 0xab..cd form used in logs.
func AddrShort(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:4] + ".." + addr[len(addr)-4:]
}
