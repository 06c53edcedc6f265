package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) call(method string, req, resp any) error {
	return c.client.Call(ServiceName+"."+method, req, resp)
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.call("Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Current retrieves the current payload.
func (c *Client) Current() (*CurrentResponse, error) {
	var resp CurrentResponse
	if err := c.call("Current", CurrentRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostSignal sends a notification to the listener.
func (c *Client) PostSignal(sig Signal) (*SignalResponse, error) {
	var resp SignalResponse
	if err := c.call("PostSignal", PostSignalRequest{Signal: sig}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reconnect replaces the active notification set.
func (c *Client) Reconnect(signals []Signal) (*SignalResponse, error) {
	var resp SignalResponse
	if err := c.call("Reconnect", ReconnectRequest{Signals: signals}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveSignal drops an active notification.
func (c *Client) RemoveSignal(key string) (*SignalResponse, error) {
	var resp SignalResponse
	if err := c.call("RemoveSignal", RemoveSignalRequest{Key: key}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchLyrics resolves lyrics through the daemon.
func (c *Client) FetchLyrics(req FetchLyricsRequest) (*FetchLyricsResponse, error) {
	var resp FetchLyricsResponse
	if err := c.call("FetchLyrics", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchLyrics runs a free-text lyrics search through the daemon.
func (c *Client) SearchLyrics(query string) (*SearchLyricsResponse, error) {
	var resp SearchLyricsResponse
	if err := c.call("SearchLyrics", SearchLyricsRequest{Query: query}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Memory lists the learned artist table.
func (c *Client) Memory() (*MemoryResponse, error) {
	var resp MemoryResponse
	if err := c.call("Memory", MemoryRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ArtistInsight looks up an artist profile.
func (c *Client) ArtistInsight(artist string) (*ArtistInsightResponse, error) {
	var resp ArtistInsightResponse
	if err := c.call("ArtistInsight", ArtistInsightRequest{Artist: artist}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
