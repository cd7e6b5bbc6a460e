//go:build statsview

package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Launch starts the stats server in a new goroutine.
func Launch(addr string, output io.Writer) error {
	if addr == "" {
		addr = DefaultAddress
	}

	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		mgr.Start()
	}()

	_, err := fmt.Fprintf(output, "stats server available at %s%s\n", addr, url)
	return err
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return true
}
