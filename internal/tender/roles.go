package tender

import "github.com/ethereum/go-ethereum/common"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleVerifier Role = "verifier"
	RoleBidder   Role = "bidder"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleVerifier, RoleBidder:
		return true
	}
	return false
}

// Actor is the capability a caller presents to the engine. Every
// state-mutating operation validates the role (and for bidder operations the
// address) before touching any record.
type Actor struct {
	Address common.Address
	Role    Role
}
