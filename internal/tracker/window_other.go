//go:build !linux && !darwin && !windows

package tracker

func platformReader() (WindowReader, error) {
	return nil, ErrNoWindowReader
}
