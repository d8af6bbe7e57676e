package cmd

import "github.com/ardnew/vela/vela"

var (
	ErrOpenSource       = vela.NewError("open source")
	ErrLoadSource       = vela.NewError("load source")
	ErrWriteOutput      = vela.NewError("write output")
	ErrWriteConfig      = vela.NewError("write configuration")
	ErrFileExists       = vela.NewError("file exists")
	ErrUnknownFunction  = vela.NewError("unknown function")
	ErrInvalidSignature = vela.NewError("invalid signature")
)
