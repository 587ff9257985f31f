/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"context"
	"net/http"
)

// Command is a side effect requested by Update. Commands are executed by the shell; the events
// they produce are fed back into Update.
type Command interface {
	command()
}

// None requests nothing.
type None struct{}

// Render asks the shell to refresh the view.
type Render struct{}

// Emit feeds an event straight back into Update.
type Emit struct {
	Event Event
}

// HTTPRequest is an outbound HTTP request.
type HTTPRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// HTTPResponse is the response to an HTTPRequest, with the body fully read.
type HTTPResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *HTTPResponse) IsSuccess() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// HTTP sends a request. Then receives the response, or the transport error.
type HTTP struct {
	Request HTTPRequest
	Then    func(resp HTTPResponse, err error) Event
}

// KeyStoreGet reads (or creates on first use) a private key.
type KeyStoreGet struct {
	ID      string
	Purpose string
	Then    func(key []byte, err error) Event
}

// StoreList reads every entry of a catalog.
type StoreList struct {
	Catalog string
	Then    func(entries [][]byte, err error) Event
}

// StoreSave writes an entry.
type StoreSave struct {
	Catalog string
	ID      string
	Value   []byte
	Then    func(err error) Event
}

// StoreDelete removes an entry.
type StoreDelete struct {
	Catalog string
	ID      string
	Then    func(err error) Event
}

// Task runs work that is too slow (or needs I/O free crypto) to run inside Update.
type Task struct {
	Name string
	Run  func(ctx context.Context) Event
}

// Batch runs its commands concurrently.
type Batch struct {
	Commands []Command
}

func (None) command()        {}
func (Render) command()      {}
func (Emit) command()        {}
func (HTTP) command()        {}
func (KeyStoreGet) command() {}
func (StoreList) command()   {}
func (StoreSave) command()   {}
func (StoreDelete) command() {}
func (Task) command()        {}
func (Batch) command()       {}

func batch(commands ...Command) Command {
	var out []Command

	for _, c := range commands {
		if _, ok := c.(None); ok || c == nil {
			continue
		}

		out = append(out, c)
	}

	switch len(out) {
	case 0:
		return None{}
	case 1:
		return out[0]
	default:
		return Batch{Commands: out}
	}
}

func get(url string, then func(HTTPResponse, error) Event) HTTP {
	return HTTP{
		Request: HTTPRequest{Method: http.MethodGet, URL: url},
		Then:    then,
	}
}
