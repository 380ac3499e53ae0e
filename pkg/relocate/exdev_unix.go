//go:build unix

package relocate

import (
	"os"
	"syscall"

	"gitlab.com/tozd/go/errors"
)

func isEXDEV(err error) bool {
	if errors.Is(err, syscall.EXDEV) {
		return true
	}
	var le *os.LinkError
	return errors.As(err, &le) && errors.Is(le.Err, syscall.EXDEV)
}
