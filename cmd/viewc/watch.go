package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"viewc/internal/buildpipeline"
	"viewc/internal/project"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [directory]",
	Short: "Re-check view files whenever they change",
	Long: `Watch checks the target once and then re-checks the files that change.
Editing a registry manifest or viewc.toml re-checks everything.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	addDiagFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", 150*time.Millisecond, "quiet period before re-checking")
}

// changeSet accumulates file events between two runs.
type changeSet struct {
	include   []string
	manifests map[string]struct{}
	files     map[string]struct{}
	full      bool
}

func newChangeSet(include, manifests []string) *changeSet {
	cs := &changeSet{include: include, manifests: make(map[string]struct{}), files: make(map[string]struct{})}
	if len(cs.include) == 0 {
		cs.include = []string{"*.view"}
	}
	for _, m := range manifests {
		if abs, err := filepath.Abs(m); err == nil {
			cs.manifests[abs] = struct{}{}
		}
	}
	return cs
}

// note records path and reports whether it is relevant.
func (cs *changeSet) note(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if _, ok := cs.manifests[abs]; ok {
		cs.full = true
		return true
	}
	for _, pat := range cs.include {
		if ok, _ := filepath.Match(pat, filepath.Base(abs)); ok {
			cs.files[abs] = struct{}{}
			return true
		}
	}
	return false
}

func (cs *changeSet) empty() bool { return !cs.full && len(cs.files) == 0 }

// take returns the files to re-check, nil meaning all, and resets the set.
func (cs *changeSet) take() []string {
	defer func() {
		cs.files = make(map[string]struct{})
		cs.full = false
	}()
	if cs.full {
		return nil
	}
	out := make([]string, 0, len(cs.files))
	for f := range cs.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func runWatch(cmd *cobra.Command, args []string) error {
	out, err := readDiagOutput(cmd, os.Stdout)
	if err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	target := targetArg(args)
	if info, err := os.Stat(target); err != nil {
		return err
	} else if !info.IsDir() {
		return fmt.Errorf("%s: watch needs a directory", target)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	req, err := compileRequest(cmd, target)
	if err != nil {
		return err
	}
	manifests := append(req.Config.RegistryPaths(), req.Registry...)
	if req.Config.Root != "" {
		manifests = append(manifests, filepath.Join(req.Config.Root, project.ManifestName))
	}
	if err := watchDirRecursive(fsw, target); err != nil {
		return err
	}
	for _, m := range manifests {
		// Manifests may live outside the target.
		_ = fsw.Add(filepath.Dir(m))
	}
	changes := newChangeSet(req.Config.Project.Include, manifests)

	watchRun(ctx, cmd, out, target, nil)
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = watchDirRecursive(fsw, ev.Name)
					continue
				}
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if changes.note(ev.Name) {
				fire = time.After(debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		case <-fire:
			fire = nil
			if !changes.empty() {
				watchRun(ctx, cmd, out, target, changes.take())
			}
		}
	}
}

// watchRun checks only, or the whole target when only is nil, and prints
// the outcome. Failures are printed, never returned: the loop keeps going.
func watchRun(ctx context.Context, cmd *cobra.Command, out diagOutput, target string, only []string) {
	req, err := compileRequest(cmd, target)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	req.Only = only
	res, err := buildpipeline.Compile(ctx, req)
	stamp := time.Now().Format("15:04:05")
	if errors.Is(err, buildpipeline.ErrNoFiles) {
		fmt.Fprintf(os.Stderr, "[%s] nothing to check\n", stamp)
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	items := res.Result.Diagnostics()
	if err := out.print(os.Stdout, items, res.Result.FileSet); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	status := color.New(color.FgGreen).Sprint("ok")
	if line := summaryLine(items); line != "" {
		status = line
		if res.Result.HasErrors() {
			status = color.New(color.FgRed).Sprint(line)
		}
	}
	fmt.Fprintf(os.Stderr, "[%s] checked %s: %s\n", stamp, plural(len(res.Files), "file"), status)
}

func watchDirRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
