package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/pkg/catalog"
	"github.com/xhad/museum/pkg/navigation"
	"github.com/xhad/museum/pkg/orchestrator"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the gallery interactively",
	Args:  cobra.NoArgs,
	RunE:  runBrowse,
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	b := newBrowser(cmd.Context(), a.orch, cmd.OutOrStdout())
	defer b.Close()
	return b.Run(cmd.InOrStdin())
}

const browseHelp = `Commands:
  list [term]     show the gallery, optionally searching
  open <id>       open an artifact
  compare <id>    compare the open artifact with another
  regen           recompute the current comparison
  hotspots        list points of interest on the open artifact
  back, home      navigate up or to the gallery
  retry           repeat the last failed load
  help, exit`

// browser is the interactive gallery. Each screen owns a scope; leaving the
// screen closes it, cancelling whatever it still had in flight.
type browser struct {
	ctx   context.Context
	orch  *orchestrator.Orchestrator
	out   io.Writer
	state navigation.State
	scope *orchestrator.Scope

	search string
	pair   [2]*models.Artifact
	retry  func() error
}

func newBrowser(ctx context.Context, orch *orchestrator.Orchestrator, out io.Writer) *browser {
	return &browser{ctx: ctx, orch: orch, out: out, state: navigation.Start()}
}

func (b *browser) Close() {
	if b.scope != nil {
		b.scope.Close()
	}
}

// Run reads commands until exit or end of input.
func (b *browser) Run(in io.Reader) error {
	titleColor.Fprintln(b.out, "Museum gallery (type 'help' for commands)")
	b.attempt(b.render)

	scanner := bufio.NewScanner(in)
	for {
		promptColor.Fprintf(b.out, "\n%s> ", b.state.Screen())
		if !scanner.Scan() {
			fmt.Fprintln(b.out)
			return scanner.Err()
		}
		if quit := b.exec(scanner.Text()); quit {
			return nil
		}
		if err := b.ctx.Err(); err != nil {
			return err
		}
	}
}

func (b *browser) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	arg := strings.Join(fields[1:], " ")

	switch strings.ToLower(fields[0]) {
	case "exit", "quit":
		return true
	case "help", "?":
		fmt.Fprintln(b.out, browseHelp)
	case "list", "ls", "gallery":
		b.search = arg
		b.attempt(func() error {
			return b.navigate(func(s navigation.State) (navigation.State, error) { return s.Home(), nil })
		})
	case "open", "select":
		b.attempt(func() error {
			return b.navigate(func(s navigation.State) (navigation.State, error) { return s.Select(arg) })
		})
	case "compare":
		b.attempt(func() error {
			return b.navigate(func(s navigation.State) (navigation.State, error) { return s.Compare(arg) })
		})
	case "back":
		b.attempt(func() error { return b.navigate(navigation.State.Back) })
	case "home":
		b.search = ""
		b.attempt(func() error {
			return b.navigate(func(s navigation.State) (navigation.State, error) { return s.Home(), nil })
		})
	case "regen", "regenerate":
		b.attempt(b.regenerate)
	case "hotspots":
		b.attempt(b.hotspots)
	case "retry":
		if b.retry == nil {
			fmt.Fprintln(b.out, "Nothing to retry.")
			return false
		}
		b.attempt(b.retry)
	default:
		errColor.Fprintf(b.out, "Unknown command %q. Type 'help' for commands.\n", fields[0])
	}
	return false
}

// attempt runs fn and reports its error inline. Load failures can be
// repeated with retry; rejected navigation cannot.
func (b *browser) attempt(fn func() error) {
	err := fn()
	if err == nil {
		b.retry = nil
		return
	}
	if errors.Is(err, navigation.ErrInvalidTransition) {
		errColor.Fprintf(b.out, "%v\n", err)
		return
	}
	b.retry = fn
	errColor.Fprintf(b.out, "Error: %v (type 'retry' to try again)\n", err)
}

// navigate applies a transition and renders the new screen, restoring the
// previous state when the screen cannot be loaded.
func (b *browser) navigate(next func(navigation.State) (navigation.State, error)) error {
	prev := b.state
	s, err := next(prev)
	if err != nil {
		return err
	}
	b.state = s
	if err := b.render(); err != nil {
		b.state = prev
		return err
	}
	return nil
}

// enter closes the current screen's scope and opens one for the next.
func (b *browser) enter() *orchestrator.Scope {
	if b.scope != nil {
		b.scope.Close()
	}
	b.scope = b.orch.NewScope(b.ctx)
	return b.scope
}

func (b *browser) render() error {
	switch b.state.Screen() {
	case navigation.Detail:
		return b.showDetail()
	case navigation.Comparison:
		return b.showComparison()
	default:
		return b.showGallery()
	}
}

func (b *browser) showGallery() error {
	scope := b.enter()
	items, src, err := scope.Artifacts()
	if err != nil {
		return err
	}
	printHeader(b.out, b.orch.Status(), b.orch.UsingAPI())
	printList(b.out, b.orch.Filter(items, catalog.Filter{Search: b.search}), src)
	return nil
}

func (b *browser) showDetail() error {
	scope := b.enter()
	d, err := scope.Detail(b.state.Selected())
	if err != nil {
		return err
	}
	printDetail(b.out, d)
	return nil
}

func (b *browser) showComparison() error {
	scope := b.enter()
	x, _, err := scope.Artifact(b.state.Selected())
	if err != nil {
		return err
	}
	y, _, err := scope.Artifact(b.state.Compared())
	if err != nil {
		return err
	}
	b.pair = [2]*models.Artifact{x, y}
	res, src, err := scope.Compare(x, y)
	if err != nil {
		return err
	}
	printComparison(b.out, x, y, res, src)
	return nil
}

func (b *browser) regenerate() error {
	if b.state.Screen() != navigation.Comparison || b.scope == nil {
		return fmt.Errorf("%w: regenerate outside a comparison", navigation.ErrInvalidTransition)
	}
	x, y := b.pair[0], b.pair[1]
	res, src, err := b.scope.Regenerate(x, y)
	if err != nil {
		return err
	}
	printComparison(b.out, x, y, res, src)
	return nil
}

func (b *browser) hotspots() error {
	if b.state.Screen() != navigation.Detail || b.scope == nil {
		return fmt.Errorf("%w: hotspots need an open artifact", navigation.ErrInvalidTransition)
	}
	a, _, err := b.scope.Artifact(b.state.Selected())
	if err != nil {
		return err
	}
	spots, src, err := b.scope.Hotspots(*a)
	if err != nil {
		return err
	}
	printHotspots(b.out, *a, spots, src)
	return nil
}
