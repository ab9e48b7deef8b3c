package handlers

import (
	"github.com/gagliardetto/solana-go"
)

// isValidTokenAddress validates a Solana mint address. Addresses are
// base58 encoded, 32-44 characters, and must decode to a 32-byte key.
func isValidTokenAddress(address string) bool {
	if len(address) < 32 || len(address) > 44 {
		return false
	}

	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}
