package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/stacktile/internal/platform"
	"github.com/1broseidon/stacktile/internal/tiling"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing    CommandType = "ping"
	CommandAction  CommandType = "action"
	CommandStatus  CommandType = "status"
	CommandSetDesk CommandType = "set_desk"
	CommandReload  CommandType = "reload"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// ActionPayload names an action and its optional parameter.
type ActionPayload struct {
	Name  string `json:"name"`
	Param string `json:"param,omitempty"`
}

// SetDeskPayload is a vdesk record to apply and persist.
type SetDeskPayload struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Zone     int    `json:"zone"`
	NbStacks int    `json:"nb_stacks"`
	UseRows  bool   `json:"use_rows"`
	Layout   string `json:"layout,omitempty"`
}

// Conf converts the payload to the engine's form.
func (p SetDeskPayload) Conf() tiling.VDeskConf {
	layout := tiling.LayoutKind(p.Layout)
	if layout == "" {
		layout = tiling.LayoutStacks
	}
	return tiling.VDeskConf{
		X:        p.X,
		Y:        p.Y,
		Zone:     p.Zone,
		NbStacks: p.NbStacks,
		UseRows:  p.UseRows,
		Layout:   layout,
	}
}

// Validate rejects records the engine would have to clamp.
func (p SetDeskPayload) Validate() error {
	if p.X < 0 || p.Y < 0 || p.Zone < 0 {
		return fmt.Errorf("x, y and zone must be >= 0")
	}
	if p.NbStacks < 0 || p.NbStacks > tiling.MaxStacks {
		return fmt.Errorf("nb_stacks must be between 0 and %d", tiling.MaxStacks)
	}
	switch tiling.LayoutKind(p.Layout) {
	case "", tiling.LayoutStacks, tiling.LayoutTree:
		return nil
	default:
		return fmt.Errorf("layout must be one of: stacks, tree")
	}
}

// StatusData is returned by the status command.
type StatusData struct {
	UptimeSeconds int64              `json:"uptime_seconds"`
	Mode          string             `json:"mode"`
	Session       string             `json:"session,omitempty"`
	Current       *platform.Desk     `json:"current,omitempty"`
	Focused       uint32             `json:"focused,omitempty"`
	Desks         []tiling.DeskState `json:"desks"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		OK:   true,
		Data: dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		OK:    false,
		Error: errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
