package core

import (
	"errors"
	"fmt"
	"net/http"

	c "github.com/ignaciocanosa/Precios-Relativos/service/api"
)

var (
	ErrUnknownSeries     = errors.New("unknown series")
	ErrInvalidIdentifier = errors.New("invalid series identifier")
	ErrInvalidInput      = errors.New("invalid input")
	ErrLookup            = errors.New("lookup failed")
	ErrDuplicateColumn   = errors.New("duplicate column")
)

// UserMessage is the single failure message shown to the user for any pipeline error.
func UserMessage(err error) string {
	return fmt.Sprintf("Error al consultar o procesar datos: %v", err)
}

// HttpStatus maps a pipeline error onto the status the API answers with.
func HttpStatus(err error) int {
	var (
		transportErr *c.TransportError
		remoteErr    *c.RemoteError
		malformedErr *c.MalformedResponseError
	)

	switch {
	case errors.As(err, &transportErr), errors.As(err, &remoteErr), errors.As(err, &malformedErr):
		return http.StatusBadGateway
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidIdentifier),
		errors.Is(err, ErrUnknownSeries),
		errors.Is(err, ErrLookup),
		errors.Is(err, ErrDuplicateColumn):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
