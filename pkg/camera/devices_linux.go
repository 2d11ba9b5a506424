//go:build linux

package camera

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/blackjack/webcam"
)

const videoDevGlob = "/dev/video*"

func listDevices() ([]VideoDevice, error) {
	paths, err := filepath.Glob(videoDevGlob)
	if err != nil {
		return nil, err
	}

	devices := make([]VideoDevice, 0, len(paths))
	for _, p := range paths {
		idx, ok := deviceIndex(p)
		if !ok {
			continue
		}
		devices = append(devices, probeV4L2(idx, p))
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].Index < devices[j].Index })
	return devices, nil
}

// probeV4L2 opens the node just long enough to read its pixel formats.
// Metadata nodes open fine but report no formats.
func probeV4L2(idx int, path string) VideoDevice {
	dev := VideoDevice{Index: idx, Path: path}

	cam, err := webcam.Open(path)
	if err != nil {
		dev.Err = err.Error()
		return dev
	}
	defer cam.Close()

	for _, desc := range cam.GetSupportedFormats() {
		dev.Formats = append(dev.Formats, desc)
	}
	sort.Strings(dev.Formats)
	return dev
}

func deviceIndex(path string) (int, bool) {
	s := strings.TrimPrefix(filepath.Base(path), "video")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
