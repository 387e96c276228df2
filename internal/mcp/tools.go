package mcp

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/opencanoetiming/c123-scoring/internal/console"
	"github.com/opencanoetiming/c123-scoring/internal/domain/checked"
	"github.com/opencanoetiming/c123-scoring/internal/domain/focus"
	"github.com/opencanoetiming/c123-scoring/internal/domain/gates"
	"github.com/opencanoetiming/c123-scoring/internal/domain/groups"
	"github.com/opencanoetiming/c123-scoring/internal/domain/keyboard"
	"github.com/opencanoetiming/c123-scoring/internal/domain/schedule"
	"github.com/opencanoetiming/c123-scoring/internal/domain/scoring"
	"github.com/opencanoetiming/c123-scoring/internal/feed"
)

type emptyInput struct{}

type selectRaceInput struct {
	RaceID string `json:"race_id" jsonschema:"race id from list_races"`
}

type setSortInput struct {
	Sort string `json:"sort" jsonschema:"startOrder, rank or bib"`
}

type bibInput struct {
	Bib string `json:"bib" jsonschema:"competitor start number"`
}

type setCheckedInput struct {
	Bib     string `json:"bib" jsonschema:"competitor start number"`
	Checked bool   `json:"checked" jsonschema:"new checked state"`
}

type groupInput struct {
	ID    string `json:"id,omitempty" jsonschema:"group id; generated when omitted on create"`
	Name  string `json:"name" jsonschema:"display name, e.g. Judge 1"`
	Gates []int  `json:"gates" jsonschema:"1-based gate numbers"`
	Color string `json:"color,omitempty" jsonschema:"optional display color"`
}

type groupIDInput struct {
	ID string `json:"id" jsonschema:"group id; all selects every gate"`
}

type shortcutsInput struct {
	Enabled bool `json:"enabled" jsonschema:"false while a group name is being typed"`
}

type pressKeyInput struct {
	Key   string `json:"key" jsonschema:"DOM key name, e.g. ArrowDown, Home, PageUp, Tab or a digit"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Shift bool   `json:"shift,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Alt   bool   `json:"alt,omitempty"`
}

type moveFocusInput struct {
	Direction string `json:"direction" jsonschema:"up, down, left or right"`
}

type setFocusInput struct {
	Row    int `json:"row" jsonschema:"0-based grid row"`
	Column int `json:"column" jsonschema:"0-based visible gate column"`
}

type scoreGateInput struct {
	Value *int `json:"value" jsonschema:"0, 2, 50 or null to delete the penalty"`
}

type noticeInput struct {
	ID string `json:"id" jsonschema:"notice id from get_status"`
}

type parseGatesInput struct {
	Raw        string `json:"raw" jsonschema:"gate string as sent by the timing server"`
	GateConfig string `json:"gate_config,omitempty" jsonschema:"per-gate types, e.g. NNRNNR"`
}

type statusOutput struct {
	Feed         feed.Status        `json:"feed"`
	SelectedRace string             `json:"selected_race,omitempty"`
	Progress     checked.Progress   `json:"progress"`
	Focus        console.FocusState `json:"focus"`
	Notices      []console.Notice   `json:"notices"`
}

type gridOutput struct {
	console.Grid
	Progress checked.Progress `json:"progress"`
}

type checkedOutput struct {
	Bib      string           `json:"bib"`
	Checked  bool             `json:"checked"`
	Progress checked.Progress `json:"progress"`
}

type activeGroupOutput struct {
	Changed bool `json:"changed"`
	console.GroupList
}

type keyOutput struct {
	Handled       bool               `json:"handled"`
	ActiveGroupID string             `json:"active_group_id"`
	Focus         console.FocusState `json:"focus"`
}

type parseOutput struct {
	Format       string             `json:"format"`
	Values       []*int             `json:"values"`
	Records      []gates.GateRecord `json:"records,omitempty"`
	TotalPenalty int                `json:"total_penalty"`
}

var arrowKeys = map[focus.Direction]string{
	focus.Up:    "ArrowUp",
	focus.Down:  "ArrowDown",
	focus.Left:  "ArrowLeft",
	focus.Right: "ArrowRight",
}

func registerTools(server *sdkmcp.Server, svc ConsoleService) {
	// Status and races

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_status",
		Description: "Get feed connection health, the selected race, check progress, focused cell and notices",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, any, error) {
		return nil, statusOutput{
			Feed:         svc.Status(),
			SelectedRace: svc.Races().SelectedID,
			Progress:     svc.Progress(),
			Focus:        svc.Focus(),
			Notices:      svc.Notices(),
		}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_races",
		Description: "List the active races of the schedule with the running and selected race ids",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, any, error) {
		return nil, svc.Races(), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "select_race",
		Description: "Select the race to score; loads its gate groups and checked state",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in selectRaceInput) (*sdkmcp.CallToolResult, any, error) {
		race, err := svc.SelectRace(ctx, strings.TrimSpace(in.RaceID))
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, struct {
			Race schedule.ProcessedRace `json:"race"`
		}{race}, nil
	})

	// Grid

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_grid",
		Description: "Get the scoring grid of the selected race filtered to the active gate group",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, any, error) {
		return nil, gridOutput{Grid: svc.Grid(), Progress: svc.Progress()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_sort",
		Description: "Order the grid by start order, rank or bib",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in setSortInput) (*sdkmcp.CallToolResult, any, error) {
		by, err := console.ParseSort(in.Sort)
		if err != nil {
			return nil, nil, toolError(err)
		}
		if err := svc.SetSort(by); err != nil {
			return nil, nil, toolError(err)
		}
		return nil, gridOutput{Grid: svc.Grid(), Progress: svc.Progress()}, nil
	})

	// Checked ledger

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_checked",
		Description: "Flip the checked mark of a competitor in the active gate group",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in bibInput) (*sdkmcp.CallToolResult, any, error) {
		state, err := svc.ToggleChecked(ctx, in.Bib)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, checkedOutput{Bib: in.Bib, Checked: state, Progress: svc.Progress()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_checked",
		Description: "Set the checked mark of a competitor in the active gate group",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in setCheckedInput) (*sdkmcp.CallToolResult, any, error) {
		if err := svc.SetChecked(ctx, in.Bib, in.Checked); err != nil {
			return nil, nil, toolError(err)
		}
		return nil, checkedOutput{Bib: in.Bib, Checked: in.Checked, Progress: svc.Progress()}, nil
	})

	bulk := []struct {
		name, description string
		run               func(context.Context) error
	}{
		{"check_all", "Mark every competitor of the grid checked", svc.CheckAll},
		{"uncheck_all", "Mark every competitor of the grid unchecked", svc.UncheckAll},
		{"clear_checked", "Forget the checks of the active gate group, or of the whole race when all gates are shown", svc.ClearChecked},
	}
	for _, b := range bulk {
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        b.name,
			Description: b.description,
		}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, any, error) {
			if err := b.run(ctx); err != nil {
				return nil, nil, toolError(err)
			}
			return nil, struct {
				Progress checked.Progress `json:"progress"`
			}{svc.Progress()}, nil
		})
	}

	// Gate groups

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_groups",
		Description: "List the gate groups of the selected race and the active group",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, any, error) {
		return nil, svc.Groups(), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_group",
		Description: "Create a gate group for the selected race",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in groupInput) (*sdkmcp.CallToolResult, any, error) {
		g, err := svc.CreateGroup(ctx, groups.Group(in))
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, g, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_group",
		Description: "Replace the name, gates and color of a gate group",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in groupInput) (*sdkmcp.CallToolResult, any, error) {
		g, err := svc.UpdateGroup(ctx, groups.Group(in))
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, g, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_group",
		Description: "Delete a gate group; deleting the active group shows all gates",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in groupIDInput) (*sdkmcp.CallToolResult, any, error) {
		if err := svc.DeleteGroup(ctx, in.ID); err != nil {
			return nil, nil, toolError(err)
		}
		return nil, svc.Groups(), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_active_group",
		Description: "Filter the grid to a gate group; unknown ids leave the filter unchanged",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in groupIDInput) (*sdkmcp.CallToolResult, any, error) {
		changed := svc.SetActiveGroup(ctx, in.ID)
		return nil, activeGroupOutput{Changed: changed, GroupList: svc.Groups()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_shortcuts_enabled",
		Description: "Enable or disable the digit shortcuts that switch gate groups",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in shortcutsInput) (*sdkmcp.CallToolResult, any, error) {
		svc.SetShortcutsEnabled(in.Enabled)
		return nil, svc.Groups(), nil
	})

	// Keyboard and scoring

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "press_key",
		Description: "Send a key press: digits switch gate groups, arrows and paging keys move the grid cursor",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in pressKeyInput) (*sdkmcp.CallToolResult, any, error) {
		handled := svc.HandleKey(ctx, keyboard.Event(in))
		return nil, keyOutput{Handled: handled, ActiveGroupID: svc.Groups().ActiveID, Focus: svc.Focus()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "move_focus",
		Description: "Move the grid cursor one cell",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in moveFocusInput) (*sdkmcp.CallToolResult, any, error) {
		dir, err := focus.ParseDirection(in.Direction)
		if err != nil {
			return nil, nil, toolError(err)
		}
		handled := svc.HandleKey(ctx, keyboard.Event{Key: arrowKeys[dir]})
		return nil, keyOutput{Handled: handled, ActiveGroupID: svc.Groups().ActiveID, Focus: svc.Focus()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_focus",
		Description: "Put the grid cursor on a cell; out-of-range positions are clamped",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in setFocusInput) (*sdkmcp.CallToolResult, any, error) {
		return nil, svc.SetFocus(in.Row, in.Column), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "score_gate",
		Description: "Build the scoring request for the focused cell: 0 clean, 2 touch, 50 missed, null delete",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in scoreGateInput) (*sdkmcp.CallToolResult, any, error) {
		req, err := svc.ScoreFocused(in.Value)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, struct {
			Request scoring.PenaltyRequest `json:"request"`
		}{req}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "parse_gates",
		Description: "Decode a raw gate string and optionally combine it with a gate configuration",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in parseGatesInput) (*sdkmcp.CallToolResult, any, error) {
		out := parseOutput{Format: gates.DetectFormat(in.Raw).String()}
		values := gates.Parse(in.Raw)
		out.Values = make([]*int, len(values))
		for i, v := range values {
			if v.Present {
				n := v.N
				out.Values[i] = &n
			}
		}
		if in.GateConfig != "" {
			records, err := gates.BuildGateRecords(in.Raw, in.GateConfig)
			if err != nil {
				return nil, nil, toolError(err)
			}
			out.Records = records
			out.TotalPenalty = gates.TotalPenalty(records)
		}
		return nil, out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "dismiss_notice",
		Description: "Remove a notice from the queue",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in noticeInput) (*sdkmcp.CallToolResult, any, error) {
		return nil, struct {
			Dismissed bool             `json:"dismissed"`
			Notices   []console.Notice `json:"notices"`
		}{svc.DismissNotice(in.ID), svc.Notices()}, nil
	})
}
