package request

// Version selects the protocol a request is sent with.
type Version int

const (
	// HTTP11 is the default and the zero value.
	HTTP11 Version = iota
	HTTP10
	HTTP2
)

func (v Version) String() string {
	switch v {
	case HTTP10:
		return "HTTP/1.0"
	case HTTP2:
		return "HTTP/2"
	default:
		return "HTTP/1.1"
	}
}

// State is the connection phase a request is in. States advance
// monotonically through a normal exchange; an error is reported against
// whatever state was current when it happened.
type State int

const (
	StateUnready State = iota
	StateReady
	StateConnect
	StateProxy
	StateHandshake
	StateSendHeader
	StateSendBody
	StateRecvHeader
	StateRecvBody
	StateClose
)

var stateNames = [...]string{
	"unready",
	"ready",
	"connect",
	"proxy",
	"handshake",
	"send_header",
	"send_body",
	"recv_header",
	"recv_body",
	"close",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
