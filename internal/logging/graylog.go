package logging

import (
	"fmt"

	"github.com/Graylog2/go-gelf/gelf"
)

// DialGraylog opens a GELF UDP writer to address (host:port). Each Write
// becomes one GELF message, so pair it with a handler that writes one
// record per call.
func DialGraylog(address string) (*gelf.Writer, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, fmt.Errorf("connecting to graylog at %s: %w", address, err)
	}
	w.Facility = "jumpsim"
	return w, nil
}
