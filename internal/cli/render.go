package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
	"refdocs/internal/domain"
)

type recordOutput struct {
	ID string `json:"id" yaml:"id"`

	domain.Record `yaml:",inline"`
}

func writeJSON(w io.Writer, id string, rec domain.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recordOutput{ID: id, Record: rec})
}

func writeYAML(w io.Writer, id string, rec domain.Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(recordOutput{ID: id, Record: rec}); err != nil {
		return err
	}
	return enc.Close()
}

// writeText renders a record for reading in a terminal.
func writeText(w io.Writer, id string, rec domain.Record) {
	fmt.Fprintln(w, id)
	if rec.IsEmpty() {
		fmt.Fprintln(w, "  (no documentation)")
		return
	}

	section := func(title string, c domain.Content) {
		if len(c) == 0 {
			return
		}
		fmt.Fprintf(w, "\n  %s:\n", title)
		for _, line := range strings.Split(c.PlainText(), "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
	named := func(title string, entries []domain.Named) {
		if len(entries) == 0 {
			return
		}
		fmt.Fprintf(w, "\n  %s:\n", title)
		for _, e := range entries {
			fmt.Fprintf(w, "    %s: %s\n", e.Name, e.Content.PlainText())
		}
	}

	section("Summary", rec.Summary)
	named("Type parameters", rec.Typeparams)
	named("Parameters", rec.Params)
	section("Returns", rec.Returns)
	named("Exceptions", rec.Exceptions)
	section("Remarks", rec.Remarks)
	section("Example", rec.Example)
}
