package rpc

import (
	"fmt"
	"net/rpc"
	"strconv"
	"time"

	"rewired/emu/output"
)

type Client struct {
	client *rpc.Client
}

// NewClient connects to the server listening on port, retrying for a short
// while in case it's still starting.
func NewClient(port int) (*Client, error) {
	var (
		client *rpc.Client
		err    error
	)
	const maxretries = 5
	for i := range maxretries {
		if client, err = rpc.Dial("tcp", "localhost:"+strconv.Itoa(port)); err == nil {
			break
		}
		modRPC.WarnZ("dial tcp failed").Error("err", err).Int("retry", i).End()
		time.Sleep(250 * time.Millisecond)
	}

	if err != nil {
		return nil, fmt.Errorf("dial failed max retries: %v", err)
	}

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	modRPC.DebugZ("closing rpc client").End()
	return c.client.Close()
}

func (c *Client) SetPause(pause bool) error { return call(c.client, "SetPause", pause) }
func (c *Client) Stop() error               { return call(c.client, "Stop", nil) }
func (c *Client) Paused() (bool, error)     { return request[bool](c.client, "Paused", nil) }

func (c *Client) Stats() (output.Stats, error) {
	return request[output.Stats](c.client, "Stats", nil)
}

func call(client *rpc.Client, funcname string, args any) error {
	_, err := request[struct{}](client, funcname, args)
	return err
}

func request[T any](client *rpc.Client, funcname string, args any) (T, error) {
	if args == nil {
		args = &struct{}{}
	}
	var reply T
	if err := client.Call(serviceName+"."+funcname, args, &reply); err != nil {
		return reply, fmt.Errorf("rpc call %s: %w", funcname, err)
	}
	return reply, nil
}
