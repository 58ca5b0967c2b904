package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"viewc/internal/driver"
	"viewc/internal/registry"
	"viewc/internal/source"
	"viewc/internal/types"
)

var registryCmd = &cobra.Command{
	Use:   "registry [flags] [name...]",
	Short: "List the components and slots the project registry declares",
	RunE:  runRegistry,
}

func init() {
	registryCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type componentJSON struct {
	Name      string     `json:"name"`
	Kind      string     `json:"kind"`
	Signature string     `json:"signature"`
	Generics  []string   `json:"generics,omitempty"`
	Props     []propJSON `json:"props,omitempty"`
	Children  string     `json:"children,omitempty"`
	Slots     []slotJSON `json:"slots,omitempty"`
	Decl      string     `json:"decl,omitempty"`
}

type propJSON struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
	Into     bool   `json:"into,omitempty"`
}

type slotJSON struct {
	Name        string `json:"name"`
	Slot        string `json:"slot"`
	Cardinality string `json:"cardinality"`
}

func runRegistry(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	req, err := compileRequest(cmd, targetArg(nil))
	if err != nil {
		return err
	}
	paths := append(req.Config.RegistryPaths(), req.Registry...)
	if len(paths) == 0 {
		return fmt.Errorf("no registry manifests: set project.registry in viewc.toml or pass --registry")
	}
	fs := source.NewFileSet()
	reg, bag := driver.LoadRegistry(fs, paths)
	if err := reportToStderr(cmd, bag, fs); err != nil {
		return err
	}

	var list []*registry.Component
	if len(args) == 0 {
		for _, name := range reg.Names() {
			c, _ := reg.Lookup(name)
			list = append(list, c)
		}
		for _, name := range reg.SlotNames() {
			c, _ := reg.LookupSlotType(name)
			list = append(list, c)
		}
	}
	for _, name := range args {
		c, ok := reg.Lookup(name)
		if !ok {
			c, ok = reg.LookupSlotType(name)
		}
		if !ok {
			return fmt.Errorf("%s is not declared", name)
		}
		list = append(list, c)
	}

	if format == "json" {
		out := make([]componentJSON, 0, len(list))
		for _, c := range list {
			out = append(out, describeJSON(c, fs))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for i, c := range list {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		describePretty(os.Stdout, c)
	}
	if bag.HasErrors() {
		return errSilent
	}
	return nil
}

func describeJSON(c *registry.Component, fs *source.FileSet) componentJSON {
	out := componentJSON{Name: c.Name, Kind: c.Kind(), Signature: c.Signature()}
	for _, g := range c.Generics {
		bounds := make([]string, len(g.Bounds))
		for i, b := range g.Bounds {
			bounds[i] = b.String()
		}
		if len(bounds) == 0 {
			out.Generics = append(out.Generics, g.Name)
			continue
		}
		out.Generics = append(out.Generics, g.Name+": "+strings.Join(bounds, " + "))
	}
	for _, p := range c.Props {
		out.Props = append(out.Props, propJSON{Name: p.Name, Type: typeString(p.Type), Optional: p.Optional, Into: p.Into})
	}
	if !c.IsSlot || c.Children.Kind != registry.ChildrenNone {
		out.Children = c.Children.String()
	}
	for _, f := range c.Slots {
		out.Slots = append(out.Slots, slotJSON{Name: f.Name, Slot: f.Slot, Cardinality: f.Cardinality.String()})
	}
	if c.Decl.HasFile() && int(c.Decl.File) < fs.Len() {
		start, _ := fs.Resolve(c.Decl)
		out.Decl = fmt.Sprintf("%s:%d:%d", fs.Get(c.Decl.File).Path, start.Line, start.Col)
	}
	return out
}

func describePretty(w io.Writer, c *registry.Component) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	fmt.Fprintf(w, "%s %s\n", faint.Sprint(c.Kind()), bold.Sprint(c.Signature()))
	for _, p := range c.Props {
		var flags []string
		if p.Optional {
			flags = append(flags, "optional")
		}
		if p.Into {
			flags = append(flags, "into")
		}
		line := fmt.Sprintf("  %s: %s", p.Name, typeString(p.Type))
		if len(flags) > 0 {
			line += faint.Sprintf(" (%s)", strings.Join(flags, ", "))
		}
		fmt.Fprintln(w, line)
	}
	for _, f := range c.Slots {
		fmt.Fprintf(w, "  slot %s: %s %s\n", f.Name, f.Slot, faint.Sprint(f.Cardinality))
	}
	if c.Children.Kind != registry.ChildrenNone {
		fmt.Fprintf(w, "  children: %s\n", c.Children)
	}
}

func typeString(t *types.Type) string {
	if t == nil {
		return "_"
	}
	return t.String()
}
