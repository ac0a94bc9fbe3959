package server

import "errors"

var (
	// errNoServersAreCreated means NewServer got no HTTP pipeline to serve.
	errNoServersAreCreated = errors.New("no http pipeline to serve")
	errAlreadyRunning      = errors.New("server is already running")
)
