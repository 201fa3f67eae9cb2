// Package rpc exposes a running player to other processes, so that playback
// can be controlled and monitored from scripts and tests.
package rpc

import (
	"net"

	"rewired/emu/log"
)

var modRPC = log.NewModule("rpc")

// Name under which the player is registered.
const serviceName = "player"

func UnusedPort() int {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		panic("pickUnusedPort failed: " + err.Error())
	}
	port := l.Addr().(*net.TCPAddr).Port
	if err := l.Close(); err != nil {
		panic("pickUnusedPort failed: " + err.Error())
	}
	return port
}
