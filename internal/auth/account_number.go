package auth

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// accountNumberMod keeps account numbers at twelve digits or fewer.
const accountNumberMod = 1_000_000_000_000

// AccountNumber derives a stable account number from the owner's
// identifier: the high and low halves of the UUID are each reduced to
// twelve digits and summed, modulo the same bound.
func AccountNumber(id uuid.UUID) int64 {
	high := binary.BigEndian.Uint64(id[0:8])
	low := binary.BigEndian.Uint64(id[8:16])

	first := high % accountNumberMod
	second := low % accountNumberMod
	return int64((first + second) % accountNumberMod)
}
