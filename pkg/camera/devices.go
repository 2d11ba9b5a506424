package camera

// VideoDevice describes a capture device found on the system.
type VideoDevice struct {
	Index   int      `json:"index"`
	Path    string   `json:"path"`
	Formats []string `json:"formats,omitempty"`
	Err     string   `json:"error,omitempty"`
}

// ListDevices enumerates capture devices. It returns ErrUnsupported on
// platforms where enumeration is not implemented.
func ListDevices() ([]VideoDevice, error) {
	return listDevices()
}
