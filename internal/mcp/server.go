package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/stacktile/internal/ipc"
)

const (
	ServerName    = "stacktile"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools drive.
type Daemon interface {
	Status() (*ipc.StatusData, error)
	RunAction(name, param string) error
	SetDesk(desk ipc.SetDeskPayload) error
}

// Server is the MCP server exposing the running daemon's tiling controls.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a server that forwards tool calls to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{daemon: daemon, logger: logger}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "tiling_status",
		Description: "Report the daemon's tiling state: the current move mode, the focused window, and for every tiled desk its stacks (position, size, windows), floating windows and layout settings.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "run_action",
		Description: "Run a tiling action on the focused window, exactly like the matching hotkey. Actions: toggle_floating, swap, move, move_left, move_right, move_up, move_down, move_direct (param: left/right/up/down), go, adjust_transitions, toggle_split_mode. Interactive modes (swap, move, go, adjust_transitions) then wait for key presses on the desktop.",
	}, s.handleRunAction)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_desk_config",
		Description: "Change how a virtual desktop tiles: the number of stacks (0 disables tiling), whether stacks are rows instead of columns, and the layout kind (stacks or tree). The record is persisted by the daemon.",
	}, s.handleSetDesk)
}
