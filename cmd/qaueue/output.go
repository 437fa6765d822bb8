package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"qaueue/internal/queue"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	return encodeJSON(cmd.OutOrStdout(), v)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML encodes v as YAML to the command's stdout.
func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// writeStructured renders v for the json and yaml formats. It reports false
// for the table format so callers fall through to their own rendering.
func writeStructured(cmd *cobra.Command, format string, v any) (bool, error) {
	switch format {
	case outputJSON:
		return true, writeJSON(cmd, v)
	case outputYAML:
		return true, writeYAML(cmd, v)
	default:
		return false, nil
	}
}

type itemView struct {
	Position   *int       `json:"position,omitempty" yaml:"position,omitempty"`
	ID         string     `json:"id" yaml:"id"`
	URL        string     `json:"url" yaml:"url"`
	Type       string     `json:"type" yaml:"type"`
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`
	Status     string     `json:"status" yaml:"status"`
	ReleasedAt *time.Time `json:"released_at,omitempty" yaml:"released_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" yaml:"updated_at"`
}

func newItemView(item *queue.Item, position int, queued bool) itemView {
	view := itemView{
		ID:         item.ID,
		URL:        item.URL,
		Type:       string(item.Type),
		Name:       item.Name,
		Status:     string(item.Status),
		ReleasedAt: item.ReleasedAt,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}
	if queued {
		pos := position
		view.Position = &pos
	}
	return view
}

type errorBody struct {
	Error errorDetail `json:"error" yaml:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// reportError prints err for the user. With --output json the error is also
// written to stdout as a JSON body so scripts can branch on its kind.
func reportError(stdout, stderr io.Writer, format string, err error) {
	if err == nil {
		return
	}
	if format == outputJSON {
		_ = encodeJSON(stdout, errorBody{Error: errorDetail{
			Kind:    queue.ErrorKind(err),
			Message: err.Error(),
		}})
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
}

// exitCode maps an error to a process exit status by its queue error kind.
func exitCode(err error) int {
	switch queue.ErrorKind(err) {
	case "":
		return 0
	case "unsupported", "invalid":
		return 2
	case "not_found":
		return 3
	case "conflict":
		return 4
	case "not_queued":
		return 5
	case "out_of_range":
		return 6
	case "unavailable":
		return 7
	default:
		return 1
	}
}
