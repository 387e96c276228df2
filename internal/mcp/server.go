package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/opencanoetiming/c123-scoring/internal/console"
	"github.com/opencanoetiming/c123-scoring/internal/domain/checked"
	"github.com/opencanoetiming/c123-scoring/internal/domain/groups"
	"github.com/opencanoetiming/c123-scoring/internal/domain/keyboard"
	"github.com/opencanoetiming/c123-scoring/internal/domain/schedule"
	"github.com/opencanoetiming/c123-scoring/internal/domain/scoring"
	"github.com/opencanoetiming/c123-scoring/internal/feed"
)

// ConsoleService defines the console operations exposed as tools.
type ConsoleService interface {
	Status() feed.Status
	Races() console.RaceList
	SelectRace(ctx context.Context, raceID string) (schedule.ProcessedRace, error)
	Grid() console.Grid
	SetSort(by console.Sort) error
	Progress() checked.Progress

	ToggleChecked(ctx context.Context, bib string) (bool, error)
	SetChecked(ctx context.Context, bib string, state bool) error
	CheckAll(ctx context.Context) error
	UncheckAll(ctx context.Context) error
	ClearChecked(ctx context.Context) error

	Groups() console.GroupList
	CreateGroup(ctx context.Context, g groups.Group) (groups.Group, error)
	UpdateGroup(ctx context.Context, g groups.Group) (groups.Group, error)
	DeleteGroup(ctx context.Context, id string) error
	SetActiveGroup(ctx context.Context, id string) bool
	SetShortcutsEnabled(enabled bool)

	Focus() console.FocusState
	SetFocus(row, column int) console.FocusState
	HandleKey(ctx context.Context, ev keyboard.Event) bool
	ScoreFocused(value *int) (scoring.PenaltyRequest, error)

	Notices() []console.Notice
	DismissNotice(id string) bool
	KeyBindings() (navigation, groupShortcuts []console.KeyHelp)
}

// Config contains server configuration.
type Config struct {
	Console ConsoleService
	Version string
	Logger  *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "c123-scoring",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server, cfg.Console)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Console)

	return server
}
