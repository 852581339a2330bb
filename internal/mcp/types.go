package mcp

import (
	"github.com/1broseidon/stacktile/internal/ipc"
	"github.com/1broseidon/stacktile/internal/tiling"
)

// StatusInput is the input for the tiling_status tool.
type StatusInput struct {
	Zone *int `json:"zone,omitempty" jsonschema:"Only report desks on this zone (monitor index)"`
}

// StatusOutput is the output for the tiling_status tool.
type StatusOutput struct {
	Mode    string             `json:"mode"`
	Session string             `json:"session,omitempty"`
	Focused uint32             `json:"focused,omitempty"`
	Desks   []tiling.DeskState `json:"desks"`
}

// RunActionInput is the input for the run_action tool.
type RunActionInput struct {
	Action string `json:"action" jsonschema:"Action name, e.g. swap or move_direct"`
	Param  string `json:"param,omitempty" jsonschema:"Direction for move_direct: left, right, up or down"`
}

// RunActionOutput is the output for the run_action tool.
type RunActionOutput struct {
	Action string `json:"action"`
	Mode   string `json:"mode"`
}

// SetDeskInput is the input for the set_desk_config tool.
type SetDeskInput struct {
	X        int    `json:"x" jsonschema:"Horizontal desktop coordinate"`
	Y        int    `json:"y,omitempty" jsonschema:"Vertical desktop coordinate (default 0)"`
	Zone     int    `json:"zone,omitempty" jsonschema:"Zone (monitor index, default 0)"`
	NbStacks int    `json:"nb_stacks" jsonschema:"Number of stacks; 0 disables tiling on the desk"`
	UseRows  bool   `json:"use_rows,omitempty" jsonschema:"Lay stacks out as rows instead of columns"`
	Layout   string `json:"layout,omitempty" jsonschema:"Layout kind: stacks (default) or tree"`
}

func (in SetDeskInput) payload() ipc.SetDeskPayload {
	return ipc.SetDeskPayload{
		X:        in.X,
		Y:        in.Y,
		Zone:     in.Zone,
		NbStacks: in.NbStacks,
		UseRows:  in.UseRows,
		Layout:   in.Layout,
	}
}

// SetDeskOutput is the output for the set_desk_config tool.
type SetDeskOutput struct {
	Desk tiling.DeskState `json:"desk"`
}
