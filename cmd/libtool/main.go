// libtool is a CLI utility for inspecting and checking library files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/ketsji/pkg/library"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "list", "ls":
		cmdList(args)
	case "validate", "check":
		cmdValidate(args)
	case "fmt":
		cmdFmt(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`libtool - library file utility

Usage:
  libtool <command> [options]

Commands:
  info <lib.yaml>                  Show library summary
  list <lib.yaml> [kind] [pattern] List datablocks (scene, object, mesh, material, action, text)
  validate <lib.yaml>...           Parse and check every reference
  fmt [-w] <lib.yaml>              Print the library in canonical form

Examples:
  libtool info village.yaml
  libtool list village.yaml object "h*"
  libtool validate levels/*.yaml
  libtool fmt -w village.yaml`)
}

func open(path, encoding string) *library.Main {
	m, err := library.ParseFile(path, library.Options{Encoding: encoding})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return m
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	enc := fs.String("encoding", "", "Text encoding of the file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: libtool info <lib.yaml>")
		os.Exit(1)
	}
	m := open(fs.Arg(0), *enc)

	fmt.Printf("Library:   %s\n", fs.Arg(0))
	fmt.Printf("Name:      %s\n", m.Name)
	fmt.Printf("Scenes:    %d\n", len(m.Scenes))
	fmt.Printf("Objects:   %d\n", len(m.Objects))
	fmt.Printf("Meshes:    %d\n", len(m.Meshes))
	fmt.Printf("Materials: %d\n", len(m.Materials))
	fmt.Printf("Actions:   %d\n", len(m.Actions))
	fmt.Printf("Texts:     %d\n", len(m.Texts))
	fmt.Println()

	// Count objects by type
	kinds := make(map[library.ObjectKind]int)
	for _, o := range m.Objects {
		kinds[o.Kind]++
	}
	type kindStat struct {
		kind  library.ObjectKind
		count int
	}
	var stats []kindStat
	for k, n := range kinds {
		stats = append(stats, kindStat{k, n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].kind < stats[j].kind
	})
	fmt.Println("Objects by type:")
	for _, s := range stats {
		fmt.Printf("  %-10s %d\n", s.kind, s.count)
	}

	fmt.Println()
	fmt.Println("Scenes:")
	for _, s := range m.Scenes {
		layers := "all"
		if len(s.Layers) > 0 {
			layers = fmt.Sprint(s.Layers)
		}
		fmt.Printf("  %-16s objects=%d layers=%s\n", s.Name, len(s.Objects), layers)
	}
}

func datablocks(m *library.Main, kind string) ([]string, error) {
	var out []string
	switch kind {
	case "scene", "scenes":
		for _, s := range m.Scenes {
			out = append(out, s.Name)
		}
	case "object", "objects":
		for _, o := range m.Objects {
			out = append(out, o.Name)
		}
	case "mesh", "meshes":
		for _, me := range m.Meshes {
			out = append(out, me.Name)
		}
	case "material", "materials":
		for _, ma := range m.Materials {
			out = append(out, ma.Name)
		}
	case "action", "actions":
		for _, a := range m.Actions {
			out = append(out, fmt.Sprintf("%s [%g, %g]", a.Name, a.FrameRange[0], a.FrameRange[1]))
		}
	case "text", "texts":
		for _, t := range m.Texts {
			out = append(out, t.Name)
		}
	default:
		return nil, fmt.Errorf("unknown datablock kind %q", kind)
	}
	return out, nil
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N datablocks (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: libtool list <lib.yaml> [kind] [pattern]")
		os.Exit(1)
	}
	m := open(fs.Arg(0), "")

	kinds := []string{"scene", "object", "mesh", "material", "action", "text"}
	if fs.NArg() > 1 {
		kinds = []string{fs.Arg(1)}
	}
	pattern := ""
	if fs.NArg() > 2 {
		pattern = strings.ToLower(fs.Arg(2))
	}

	count := 0
	for _, kind := range kinds {
		names, err := datablocks(m, kind)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, name := range names {
			if pattern != "" {
				matched, _ := filepath.Match(pattern, strings.ToLower(name))
				if !matched && !strings.Contains(strings.ToLower(name), pattern) {
					continue
				}
			}
			fmt.Printf("%-9s %s\n", kind, name)
			count++
			if *limit > 0 && count >= *limit {
				return
			}
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d datablocks matched)\n", count)
	}
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	enc := fs.String("encoding", "", "Text encoding of the files")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: libtool validate <lib.yaml>...")
		os.Exit(1)
	}

	failed := 0
	for _, path := range fs.Args() {
		if _, err := library.ParseFile(path, library.Options{Encoding: *enc}); err != nil {
			failed++
			if errors.Is(err, library.ErrInvalid) {
				fmt.Printf("INVALID %s: %v\n", path, err)
			} else {
				fmt.Printf("ERROR   %s: %v\n", path, err)
			}
			continue
		}
		fmt.Printf("OK      %s\n", path)
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "\n%d of %d libraries failed\n", failed, fs.NArg())
		os.Exit(1)
	}
}

func cmdFmt(args []string) {
	fs := flag.NewFlagSet("fmt", flag.ExitOnError)
	write := fs.Bool("w", false, "Write the result back to the file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: libtool fmt [-w] <lib.yaml>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	m := open(path, "")

	data, err := library.Marshal(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !*write {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Formatted: %s (%d bytes)\n", path, len(data))
}
