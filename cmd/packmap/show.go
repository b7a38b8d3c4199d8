// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/packmap/packmap/internal/callgraph"
	"github.com/packmap/packmap/internal/issue"
	"github.com/packmap/packmap/internal/store"
	"github.com/packmap/packmap/pkg/nsid"

	"github.com/spf13/cobra"
)

// showRequest selects what `packmap show` prints. An empty Graph lists the
// stored graphs; an empty Function summarizes Graph.
type showRequest struct {
	Database string
	Graph    string
	Function string
}

func newShowCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "show <database> [graph [function]]",
		Short: "Query a call graph exported with --format sqlite",
		Long: `Query a call graph exported with --format sqlite.

With only the database, every stored graph is listed. With a graph name, each
node is printed with the functions it calls. With a function id, its outgoing
edges and its callers are printed. Ids without a namespace resolve to
"minecraft", e.g. "tick" is "minecraft:tick".`,
		Example: `  packmap show graphs/packmap.db
  packmap show graphs/packmap.db mypack
  packmap show graphs/packmap.db mypack mypack:util/setup`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loadSettings(cmd, rootFlags)
			if err != nil {
				return handleCommandError(cmd, rootFlags.verbose, err)
			}
			req := showRequest{Database: args[0]}
			if len(args) > 1 {
				req.Graph = args[1]
			}
			if len(args) > 2 {
				req.Function = args[2]
			}
			err = runShow(cmd.Context(), req, s.logger, cmd.OutOrStdout())
			return handleCommandError(cmd, s.verbose, err)
		},
	}
}

func runShow(ctx context.Context, req showRequest, logger *slog.Logger, w io.Writer) (err error) {
	if _, statErr := os.Stat(req.Database); statErr != nil {
		return graphNotFound("open database", req.Database, statErr)
	}

	s, err := store.Open(req.Database)
	if err != nil {
		return graphNotFound("open database", req.Database, err)
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close database: %w", closeErr)
		}
	}()

	if req.Graph == "" {
		return listGraphs(ctx, s, w)
	}

	logger.Debug("loading graph", "database", req.Database, "graph", req.Graph)
	g, err := s.LoadGraph(ctx, req.Graph)
	if err != nil {
		return graphNotFound("load graph", req.Graph, err)
	}

	if req.Function == "" {
		showGraph(w, req.Graph, g)
		return nil
	}

	id := nsid.Resolve(req.Function)
	if _, ok := g.Node(id); !ok {
		return graphNotFound("find function", id.String(), fmt.Errorf("no node %s in graph %s", id, req.Graph),
			fmt.Sprintf("Run 'packmap show %s %s' to list its functions", req.Database, req.Graph))
	}
	callers, err := s.Callers(ctx, req.Graph, id)
	if err != nil {
		return err
	}
	showFunction(w, g, id, callers)
	return nil
}

func listGraphs(ctx context.Context, s *store.Store, w io.Writer) error {
	graphs, err := s.Graphs(ctx)
	if err != nil {
		return err
	}
	if len(graphs) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("(no graphs stored)"))
		return nil
	}

	fmt.Fprintln(w, TitleStyle.Render("Stored graphs"))
	for _, info := range graphs {
		fmt.Fprintf(w, "  %s %d nodes, %d edges %s\n",
			CmdStyle.Render(info.Name), info.Nodes, info.Edges,
			SubtitleStyle.Render("("+info.CreatedAt.Format("2006-01-02 15:04:05")+")"))
	}
	return nil
}

func showGraph(w io.Writer, name string, g *callgraph.Graph) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render(name), SubtitleStyle.Render(fmt.Sprintf("%d nodes, %d edges", g.Order(), g.Size())))
	for _, n := range g.Nodes() {
		targets := g.Successors(n.ID)
		fmt.Fprintf(w, "  %s %s", CmdStyle.Render(n.ID.String()), SubtitleStyle.Render("["+n.Category.String()+"]"))
		for i, to := range targets {
			sep := ", "
			if i == 0 {
				sep = " -> "
			}
			fmt.Fprint(w, sep+to.String())
		}
		fmt.Fprintln(w)
	}
}

func showFunction(w io.Writer, g *callgraph.Graph, id nsid.ID, callers []nsid.ID) {
	fmt.Fprintln(w, TitleStyle.Render(id.String()))

	edges := g.OutEdges(id)
	fmt.Fprintf(w, "%s (%d)\n", CmdStyle.Render("Calls"), len(edges))
	for _, e := range edges {
		line := "  " + e.To.String() + " " + SubtitleStyle.Render("["+e.Provenance.String()+"]")
		if e.Scheduled {
			line += " " + WarningStyle.Render("scheduled")
		}
		if e.Label != "" {
			line += " " + VerboseStyle.Render(e.Label)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintf(w, "%s (%d)\n", CmdStyle.Render("Called by"), len(callers))
	for _, c := range callers {
		fmt.Fprintf(w, "  %s\n", c)
	}
}

func graphNotFound(operation, resource string, err error, suggestions ...string) error {
	ctx := issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithSuggestions(suggestions...)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		ctx = ctx.WithSuggestion("Write the database with 'packmap map <datapack> --format sqlite'")
	case errors.Is(err, store.ErrGraphNotFound):
		ctx = ctx.WithSuggestion("Run 'packmap show <database>' to list the stored graphs")
	}
	return newServiceError(ctx.Wrap(err).BuildError(), issue.GraphNotFoundId, "")
}
