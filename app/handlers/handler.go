package handlers

import (
	"net/http"

	"github.com/Rakhulsr/kidstore/app/helpers"
)

// caller returns the identity that RequireAuth already checked.
func caller(r *http.Request) helpers.RequestContext {
	rc, _ := helpers.RequestContextFrom(r.Context())
	return rc
}
