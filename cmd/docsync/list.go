package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/openmined/docsync/internal/inventory"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

type listEntry struct {
	ID         string    `json:"id" yaml:"id"`
	Identifier string    `json:"identifier" yaml:"identifier"`
	Filename   string    `json:"filename" yaml:"filename"`
	Hash       string    `json:"hash,omitempty" yaml:"hash,omitempty"`
	Legacy     bool      `json:"legacy" yaml:"legacy"`
	SizeBytes  int64     `json:"size_bytes" yaml:"size_bytes"`
	UpdateTime time.Time `json:"update_time,omitempty" yaml:"update_time,omitempty"`
	State      string    `json:"state,omitempty" yaml:"state,omitempty"`
}

func newListCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the documents in the store",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case outputTable, outputJSON, outputYAML:
			default:
				return fmt.Errorf("unknown output format %q (want table, json or yaml)", output)
			}

			ctx := cmd.Context()
			backend, closeBackend, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer closeBackend()

			store, err := a.requireStore(ctx, backend)
			if err != nil {
				return err
			}

			var entries []listEntry
			for doc, err := range backend.ListDocuments(ctx, store) {
				if err != nil {
					return fmt.Errorf("list documents: %w", err)
				}
				rd := inventory.NewRemoteDocument(doc)
				entries = append(entries, listEntry{
					ID:         rd.ID,
					Identifier: rd.Identifier,
					Filename:   rd.Filename,
					Hash:       rd.Hash,
					Legacy:     rd.Legacy,
					SizeBytes:  doc.SizeBytes,
					UpdateTime: doc.UpdateTime,
					State:      doc.State,
				})
			}
			sort.Slice(entries, func(i, j int) bool {
				if entries[i].Filename != entries[j].Filename {
					return entries[i].Filename < entries[j].Filename
				}
				return entries[i].ID < entries[j].ID
			})

			out := cmd.OutOrStdout()
			switch output {
			case outputJSON:
				return writeJSON(out, entries)
			case outputYAML:
				return writeYAML(out, entries)
			default:
				writeTable(out, a.cfg.Store, entries)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table, json or yaml")
	return cmd
}

func writeJSON(w io.Writer, entries []listEntry) error {
	if entries == nil {
		entries = []listEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeYAML(w io.Writer, entries []listEntry) error {
	if entries == nil {
		entries = []listEntry{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return enc.Close()
}

func writeTable(w io.Writer, label string, entries []listEntry) {
	if len(entries) == 0 {
		fmt.Fprintf(w, "Store %s is empty\n", cyan.Render(label))
		return
	}

	var total int64
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		total += e.SizeBytes
		hash := e.Hash
		if e.Legacy {
			hash = "legacy"
		}
		updated := "-"
		if !e.UpdateTime.IsZero() {
			updated = humanize.Time(e.UpdateTime)
		}
		rows = append(rows, []string{e.Filename, hash, humanize.Bytes(uint64(e.SizeBytes)), updated, e.State})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(gray).
		Headers("FILENAME", "HASH", "SIZE", "UPDATED", "STATE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			if col == 1 {
				return style.Inherit(lightGray)
			}
			return style
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d document(s), %s in %s\n", len(entries), humanize.Bytes(uint64(total)), cyan.Render(label))
}
