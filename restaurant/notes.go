package restaurant

import (
	"fmt"
	"strings"

	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/tool"
)

type guestNotesArgs struct {
	Action string `json:"action" description:"Either 'record' to save a note or 'recall' to search previous notes"`
	Note   string `json:"note,omitempty" description:"The note to record (preferences, allergies, special occasions)"`
	Query  string `json:"query,omitempty" description:"What to search for when recalling notes"`
}

// GuestNotesTool lets staff record and recall guest preferences across
// visits. Notes live in the session's memory store, not in the backend.
func GuestNotesTool() tool.Tool {
	return tool.NewFunctionToolFromStruct(
		"guest_notes",
		"Record or recall notes about a guest, such as preferences, allergies or special occasions.",
		guestNotesArgs{},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			action := strings.ToLower(stringArg(args, "action"))

			switch action {
			case "record":
				note := stringArg(args, "note")
				if note == "" {
					return nil, fmt.Errorf("a note is required to record")
				}

				md := map[string]any{"kind": "guest_note", "agent": toolCtx.AgentName()}
				if err := toolCtx.StoreMemory(note, md); err != nil {
					return nil, err
				}

				return map[string]any{"status": "recorded"}, nil

			case "recall":
				query := stringArg(args, "query")
				if query == "" {
					return nil, fmt.Errorf("a query is required to recall")
				}

				results, err := toolCtx.SearchMemory(query, 5)
				if err != nil {
					return nil, err
				}

				notes := make([]string, 0, len(results))
				for _, r := range results {
					notes = append(notes, r.Content)
				}

				return map[string]any{"notes": notes, "count": len(notes)}, nil

			default:
				return nil, fmt.Errorf("unknown action %q: use 'record' or 'recall'", action)
			}
		},
	)
}

type saveBillArtifactArgs struct {
	BillID string `json:"bill_id" description:"ID of the bill being saved"`
	Text   string `json:"text" description:"Printable text of the bill"`
}

// BillArtifactTool persists a printable copy of a bill to the session's
// artifact store so it can be retrieved after the run.
func BillArtifactTool() tool.Tool {
	return tool.NewFunctionToolFromStruct(
		"save_bill_artifact",
		"Save a printable copy of a bill for the customer's records.",
		saveBillArtifactArgs{},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			billID := stringArg(args, "bill_id")
			if billID == "" {
				return nil, fmt.Errorf("bill_id is required")
			}

			text := stringArg(args, "text")
			if text == "" {
				return nil, fmt.Errorf("text is required")
			}

			id := "bill-" + billID
			if err := toolCtx.SaveArtifact(id, []byte(text)); err != nil {
				return nil, err
			}

			return map[string]any{"status": "saved", "artifact_id": id}, nil
		},
	)
}
