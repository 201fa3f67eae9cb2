package rpc

import (
	"io"
	"net"
	"net/rpc"
	"strconv"

	"rewired/emu/output"
)

type Player interface {
	SetPause(pause bool)
	Paused() bool
	Stop()
	Stats() output.Stats
}

type playerProxy struct {
	p Player
}

func (pp *playerProxy) SetPause(pause bool, _ *struct{}) error { pp.p.SetPause(pause); return nil }
func (pp *playerProxy) Stop(_, _ *struct{}) error              { pp.p.Stop(); return nil }

func (pp *playerProxy) Paused(_ *struct{}, reply *bool) error {
	*reply = pp.p.Paused()
	return nil
}

func (pp *playerProxy) Stats(_ *struct{}, reply *output.Stats) error {
	*reply = pp.p.Stats()
	return nil
}

type Server struct {
	io.Closer
}

// NewServer serves p on the given local port until closed.
func NewServer(port int, p Player) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName(serviceName, &playerProxy{p: p}); err != nil {
		panic("failed to register RPC server: " + err.Error())
	}
	l, err := net.Listen("tcp", "localhost:"+strconv.Itoa(port))
	if err != nil {
		return nil, err
	}

	modRPC.InfoZ("rpc server listening").Int("port", port).End()
	go srv.Accept(l)
	return &Server{Closer: l}, nil
}
