package client

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/zhucebuliaopx/requests/request"
)

// DoSocket upgrades to a websocket using the client's configuration: the
// connect timeout bounds the handshake, and the configured headers,
// credential and proxies ride along. The caller owns the returned
// connection; CloseSocket sends a clean close frame.
func (c *Client) DoSocket(ctx context.Context, rawurl string) (*websocket.Conn, *http.Response, error) {
	t := newTracker(c.Config.ErrorFilter)
	t.set(request.StateReady)

	dialer := &websocket.Dialer{
		HandshakeTimeout: c.Config.ConnectTimeout(),
		TLSClientConfig:  c.Config.SSL,
		Proxy:            proxyFunc(c.Config.Proxies),
		Jar:              c.http.Jar,
	}

	headers := http.Header{}
	for k, v := range c.Config.Headers.All() {
		switch k {
		// the handshake owns these
		case "connection", "upgrade", "sec-websocket-key", "sec-websocket-version", "sec-websocket-extensions":
			continue
		}
		headers.Set(k, v)
	}
	if c.Config.Auth != "" && !c.Config.Headers.Has("authorization") {
		headers.Set("Authorization", c.Config.Auth)
	}

	t.set(request.StateConnect)
	conn, res, err := dialer.DialContext(ctx, rawurl, headers)
	if err != nil {
		return nil, res, t.fail(err)
	}
	t.set(request.StateRecvHeader)
	return conn, res, nil
}

// CloseSocket sends a normal closure frame and closes the connection.
func CloseSocket(conn *websocket.Conn) error {
	err := conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	if closeErr := conn.Close(); err == nil {
		err = closeErr
	}
	return err
}
