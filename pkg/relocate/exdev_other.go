//go:build !unix

package relocate

// cross-device detection is unix only; elsewhere the rename error surfaces as is
func isEXDEV(err error) bool {
	return false
}
