//go:build !linux

package camera

func listDevices() ([]VideoDevice, error) {
	return nil, ErrUnsupported
}
