package minimodel

import (
	"errors"

	"github.com/helixml/minimodel/application/service"
)

var (
	// ErrNoDatabase indicates no destination database was configured.
	ErrNoDatabase = errors.New("minimodel: no database configured")

	// ErrNoSource indicates neither an ingester nor a manifest was configured.
	ErrNoSource = errors.New("minimodel: no dataset source configured")

	// ErrNoEmbedder indicates no embedding provider was configured and no
	// local model was found.
	ErrNoEmbedder = errors.New("minimodel: no embedding provider available")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = service.ErrClientClosed
)
