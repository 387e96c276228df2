package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/opencanoetiming/c123-scoring/internal/console"
)

const serverInstructions = `c123-scoring is a penalty-scoring console for canoe slalom fed live by a C123 timing server.

Core concepts:
- Race: picked from the schedule. With nothing selected the running race is followed automatically.
- Grid: one row per competitor, one column per visible gate. Penalties are 0 (clean), 2 (touch), 50 (missed) or empty (not judged).
- Gate group: a named subset of gates one judge controls. "all" shows every gate. Digits 1-9 then 0 switch groups.
- Checked: a judge's mark that a competitor's protocol was verified, kept per race and gate group.

Typical loop:
1) get_status, then list_races / select_race if needed.
2) list_groups / set_active_group to narrow the grid to your gates.
3) get_grid, move with press_key or set_focus, score with score_gate.
4) toggle_checked when a competitor is verified; get_status shows progress.

Docs:
- c123://docs/keyboard (key bindings, generated from the live configuration)
- c123://docs/penalties (gate string formats and penalty values)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     func() string
}

const penaltiesDoc = `# Penalties and gate strings

## Values

| value | meaning |
|---|---|
| 0 | clean pass |
| 2 | touch, 2 seconds |
| 50 | missed gate, 50 seconds |
| null | not judged yet, or a deleted penalty |

Only 0, 2 and 50 are accepted by ` + "`score_gate`" + `. Unreadable values in the feed are shown as not judged.

## Gate strings

The timing server sends one string per competitor in one of two encodings:

- token: values separated by single spaces, ` + "`0 0 2 50 0`" + `
- fixed width: 3-character right-aligned blocks, ` + "`  0  0  2 50  0`" + `

Any run of two spaces selects fixed width. Blank blocks are unjudged gates.
Use ` + "`parse_gates`" + ` to see how a string is decoded.

## Gate configuration

A string of N (normal) and R (reverse), one character per gate. Its length
is the number of gates shown for the race.
`

func keyboardDoc(svc ConsoleService) string {
	navigation, shortcuts := svc.KeyBindings()

	var b strings.Builder
	b.WriteString("# Keyboard\n\n")
	b.WriteString("Send keys with `press_key` using DOM key names (ArrowDown, Home, PageUp, Tab).\n")
	b.WriteString("Group shortcuts are tried first, then grid navigation.\n\n")
	writeKeyTable(&b, "Grid navigation", navigation)
	if len(shortcuts) > 0 {
		b.WriteString("\n")
		writeKeyTable(&b, "Gate groups", shortcuts)
	}
	return b.String()
}

func writeKeyTable(b *strings.Builder, title string, keys []console.KeyHelp) {
	fmt.Fprintf(b, "## %s\n\n| key | action |\n|---|---|\n", title)
	for _, k := range keys {
		fmt.Fprintf(b, "| %s | %s |\n", k.Key, k.Description)
	}
}

func registerDocResources(server *sdkmcp.Server, svc ConsoleService) {
	docs := []docResource{
		{
			URI:         "c123://docs/keyboard",
			Name:        "docs_keyboard",
			Title:       "Keyboard bindings",
			Description: "Grid navigation keys and gate group shortcuts of the selected race.",
			Content:     func() string { return keyboardDoc(svc) },
		},
		{
			URI:         "c123://docs/penalties",
			Name:        "docs_penalties",
			Title:       "Penalties and gate strings",
			Description: "Penalty values, gate string encodings and gate configuration.",
			Content:     func() string { return penaltiesDoc },
		},
	}

	for _, doc := range docs {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content(),
				}},
			}, nil
		})
	}
}
