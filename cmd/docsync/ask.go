package main

import (
	"fmt"
	"strings"

	"github.com/openmined/docsync/internal/fingerprint"
	"github.com/spf13/cobra"
)

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ask <query>...",
		Aliases: []string{"query", "q"},
		Short:   "Ask a question answered from the store's documents",
		Example: `  docsync ask what does the retry policy look like`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			answer, err := backend.Query(ctx, store, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("query store %q: %w", a.cfg.Store, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, strings.TrimSpace(answer.Text))
			if sources := sourceNames(answer.Sources); len(sources) > 0 {
				fmt.Fprintf(out, "\n%s\n", gray.Render("Sources:"))
				for _, src := range sources {
					fmt.Fprintf(out, "  - %s\n", cyan.Render(src))
				}
			}
			return nil
		},
	}
}

// sourceNames maps cited document titles back to the original filenames,
// dropping repeats. Titles that are not identifiers are kept as they are.
func sourceNames(titles []string) []string {
	seen := make(map[string]struct{}, len(titles))
	names := make([]string, 0, len(titles))
	for _, title := range titles {
		name := title
		if d, ok := fingerprint.Decode(title); ok {
			name = d.Filename
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
