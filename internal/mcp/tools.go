package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/stacktile/internal/tiling"
)

func (s *Server) status() (StatusOutput, error) {
	st, err := s.daemon.Status()
	if err != nil {
		return StatusOutput{}, fmt.Errorf("stacktile daemon unavailable: %w", err)
	}
	return StatusOutput{
		Mode:    st.Mode,
		Session: st.Session,
		Focused: st.Focused,
		Desks:   st.Desks,
	}, nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, args StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	out, err := s.status()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	if args.Zone != nil {
		kept := out.Desks[:0]
		for _, d := range out.Desks {
			if d.Desk.Zone == *args.Zone {
				kept = append(kept, d)
			}
		}
		out.Desks = kept
	}
	if out.Desks == nil {
		out.Desks = []tiling.DeskState{}
	}
	return nil, out, nil
}

func (s *Server) handleRunAction(_ context.Context, _ *mcpsdk.CallToolRequest, args RunActionInput) (*mcpsdk.CallToolResult, RunActionOutput, error) {
	name := strings.TrimSpace(args.Action)
	if name == "" {
		return nil, RunActionOutput{}, fmt.Errorf("action is required")
	}
	param := strings.TrimSpace(args.Param)
	if err := s.daemon.RunAction(name, param); err != nil {
		s.logger.Debug("mcp: action failed", "action", name, "param", param, "err", err)
		return nil, RunActionOutput{}, fmt.Errorf("action %s failed: %w", name, err)
	}
	out := RunActionOutput{Action: name}
	if st, err := s.daemon.Status(); err == nil {
		out.Mode = st.Mode
	}
	return nil, out, nil
}

func (s *Server) handleSetDesk(_ context.Context, _ *mcpsdk.CallToolRequest, args SetDeskInput) (*mcpsdk.CallToolResult, SetDeskOutput, error) {
	payload := args.payload()
	if err := payload.Validate(); err != nil {
		return nil, SetDeskOutput{}, err
	}
	if err := s.daemon.SetDesk(payload); err != nil {
		return nil, SetDeskOutput{}, fmt.Errorf("set desk failed: %w", err)
	}

	conf := payload.Conf()
	out := SetDeskOutput{Desk: tiling.DeskState{
		Desk:     conf.Desk(),
		NbStacks: conf.NbStacks,
		UseRows:  conf.UseRows,
		Layout:   conf.Layout,
	}}
	st, err := s.daemon.Status()
	if err != nil {
		return nil, out, nil
	}
	for _, d := range st.Desks {
		if d.Desk == conf.Desk() {
			out.Desk = d
			break
		}
	}
	return nil, out, nil
}
