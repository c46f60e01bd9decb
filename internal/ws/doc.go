// Package ws exposes a running bridge over HTTP: a PNG preview of the
// current frame, a websocket frame stream, the diagnostics journal and a
// control socket for style, port and USB changes.
package ws
