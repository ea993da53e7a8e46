//go:build !ORT

package provider

import "github.com/knights-analytics/hugot"

// HugotBackend names the inference backend compiled in.
const HugotBackend = "go"

// newHugotSession starts the pure Go backend. It needs nothing beside the
// model itself.
func newHugotSession(string) (*hugot.Session, error) {
	return hugot.NewGoSession()
}
