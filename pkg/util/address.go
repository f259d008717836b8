package util

import "fmt"

// MaskAddress shortens a wallet address for display (0x31a7...9f2c).
// Short inputs, including already-masked strings, are returned unchanged,
// which makes masking idempotent.
func MaskAddress(address string) string {
	if len(address) < 10 {
		return address
	}
	return fmt.Sprintf("%s...%s", address[:6], address[len(address)-4:])
}
