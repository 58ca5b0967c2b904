package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"viewc/internal/ast"
	"viewc/internal/source"
	"viewc/internal/testkit"
)

// Printing a parsed view and parsing it again must give the same structure.
func TestPrintRoundTrip(t *testing.T) {
	sources := []string{
		`<div class:bg-green-400=is_game_started>
			<Button>"Restart Overlay"</Button>
			<Show when=move || !is_game_started() clone:game_info>
				<Button on_click=move |_| start_game(game_info)>"Start Game"</Button>
			</Show>
		</div>`,
		`<Component<i32> _a=0 />`,
		`class=A, <div style=("id", A) {..attrs} />`,
		`<SlotIf><ElseIf slot cond=is_div5 /></SlotIf>`,
		`<Component let:item let:a><p>{item}</p></Component>`,
		`<a href="#" use:highlight>"Copy data to clipboard"</a> <br/>`,
		`<div><>""</></div>`,
		`<ul>{items.iter().map(|i| i * 2).collect::<Vec<_>>()}</ul>`,
	}
	ignore := cmpopts.IgnoreTypes(source.Span{})
	for _, src := range sources {
		first := mustParse(t, src)
		if err := testkit.CheckTree(first, parseSrc(t, src).file); err != nil {
			t.Errorf("span nesting of %q: %v", src, err)
		}
		printed := ast.Print(first)
		second := mustParse(t, printed)
		if diff := cmp.Diff(first, second, ignore); diff != "" {
			t.Errorf("round trip of %q changed structure (-first +second):\n%s\nprinted: %s", src, diff, printed)
		}
	}
}
