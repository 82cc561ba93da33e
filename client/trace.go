package client

import (
	"fmt"
	"net/http/httptrace"
	"sync/atomic"

	"github.com/taybart/log"

	"github.com/zhucebuliaopx/requests/request"
)

// Error is a transport failure tagged with the connection state the request
// was in when it happened.
type Error struct {
	State request.State
	Err   error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.State, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// tracker follows one request through its connection states. Trace
// callbacks fire on transport goroutines, hence the atomic.
type tracker struct {
	state  atomic.Int32
	filter request.ErrorFilter
}

func newTracker(filter request.ErrorFilter) *tracker {
	t := &tracker{filter: filter}
	t.state.Store(int32(request.StateUnready))
	return t
}

func (t *tracker) set(s request.State) {
	t.state.Store(int32(s))
	log.Debugf("state: %s\n", s)
}

func (t *tracker) current() request.State {
	return request.State(t.state.Load())
}

// fail tags err with the current state, reports it to the configured
// filter, and returns the tagged error.
func (t *tracker) fail(err error) error {
	e := &Error{State: t.current(), Err: err}
	if t.filter != nil {
		t.filter(e.State, err)
	}
	return e
}

// trace maps transport events onto connection states. Dialing through a
// proxy reports the proxy state instead of a plain connect.
func (t *tracker) trace(proxied bool) *httptrace.ClientTrace {
	connectState := request.StateConnect
	if proxied {
		connectState = request.StateProxy
	}
	return &httptrace.ClientTrace{
		ConnectStart: func(network, addr string) {
			t.set(connectState)
		},
		TLSHandshakeStart: func() {
			t.set(request.StateHandshake)
		},
		WroteHeaders: func() {
			t.set(request.StateSendHeader)
		},
		WroteRequest: func(httptrace.WroteRequestInfo) {
			t.set(request.StateSendBody)
		},
		GotFirstResponseByte: func() {
			t.set(request.StateRecvHeader)
		},
	}
}
