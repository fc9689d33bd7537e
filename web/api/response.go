package api

import (
	"github.com/rohanthewiz/rweb"
)

// DataResponse is the success envelope: {"data": ...}.
type DataResponse struct {
	Data any `json:"data"`
}

// ErrorResponse is the failure envelope: {"detail": "..."}.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// writeData sends a success envelope. rweb's WriteJSON sets the content type.
func writeData(ctx rweb.Context, status int, data any) error {
	ctx.SetStatus(status)
	return ctx.WriteJSON(DataResponse{Data: data})
}

// WriteDetail sends a failure envelope. Middleware uses it too.
func WriteDetail(ctx rweb.Context, status int, detail string) error {
	ctx.SetStatus(status)
	return ctx.WriteJSON(ErrorResponse{Detail: detail})
}
