// Command bptreeutil is the trivial tree-walking driver kept alongside
// the tree engine: it opens a tree file, replays a newline-delimited
// script of insert/delete/scan/stats commands from stdin, and prints
// each command's result; a "stats" command prints the statistics dump.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"bptreeidx/internal/bptree"
	"bptreeidx/internal/diskio"
	"bptreeidx/internal/page"
)

func main() {
	dataPath := flag.String("data", "tree.db", "path to the tree's page file")
	catalogPath := flag.String("catalog", "tree.catalog", "path to the file-catalog snapshot")
	name := flag.String("name", "default", "logical name this tree is registered under")
	frames := flag.Int("frames", bptree.DefaultConfig().BufferPoolFrames, "buffer-pool frame count")
	flag.Parse()

	cfg := bptree.DefaultConfig()
	cfg.BufferPoolFrames = *frames

	tree, stack, err := bptree.OpenFile(*dataPath, *catalogPath, *name, cfg)
	if err != nil {
		log.Fatalf("bptreeutil: open: %v", err)
	}
	defer func() {
		if err := tree.Close(); err != nil {
			log.Printf("bptreeutil: close: %v", err)
		}
		if err := stack.Close(); err != nil {
			log.Printf("bptreeutil: close stack: %v", err)
		}
	}()

	if err := run(tree, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("bptreeutil: %v", err)
	}
}

// run replays commands from in, writing results to out. One command per
// line: "insert <key> <pageid> <slot>", "delete <key> <pageid> <slot>",
// "scan [low] [high]" (either bound may be the literal "-" for absent),
// or "stats".
func run(tree *bptree.Tree, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	w := bufio.NewWriter(out)
	defer w.Flush()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "insert":
			if err := runInsert(tree, fields); err != nil {
				fmt.Fprintf(w, "error: %v\n", err)
				continue
			}
			fmt.Fprintln(w, "ok")

		case "delete":
			if err := runDelete(tree, fields); err != nil {
				fmt.Fprintf(w, "error: %v\n", err)
				continue
			}
			fmt.Fprintln(w, "ok")

		case "scan":
			if err := runScan(tree, fields, w); err != nil {
				fmt.Fprintf(w, "error: %v\n", err)
			}

		case "stats":
			stats, err := tree.DumpStats()
			if err != nil {
				fmt.Fprintf(w, "error: %v\n", err)
				continue
			}
			fmt.Fprint(w, stats.String())

		default:
			fmt.Fprintf(w, "error: unrecognized command %q\n", fields[0])
		}
	}

	return scanner.Err()
}

func runInsert(tree *bptree.Tree, fields []string) error {
	if len(fields) != 4 {
		return fmt.Errorf("usage: insert <key> <pageid> <slot>")
	}
	rid, err := parseRID(fields[2], fields[3])
	if err != nil {
		return err
	}
	return tree.Insert(page.Key(fields[1]), rid)
}

func runDelete(tree *bptree.Tree, fields []string) error {
	if len(fields) != 4 {
		return fmt.Errorf("usage: delete <key> <pageid> <slot>")
	}
	rid, err := parseRID(fields[2], fields[3])
	if err != nil {
		return err
	}
	return tree.Delete(page.Key(fields[1]), rid)
}

func runScan(tree *bptree.Tree, fields []string, w *bufio.Writer) error {
	var low, high *page.Key
	if len(fields) > 1 {
		low = parseBound(fields[1])
	}
	if len(fields) > 2 {
		high = parseBound(fields[2])
	}

	cur, err := tree.OpenScan(low, high)
	if err != nil {
		return err
	}
	defer cur.Close()

	for {
		rid, key, ok, err := cur.Next()
		if err != nil {
			if errors.Is(err, bptree.ErrBoundExhausted) {
				return nil
			}
			return err
		}
		if !ok {
			return nil
		}
		fmt.Fprintf(w, "%s\t%d\t%d\n", key, rid.PageID, rid.Slot)
	}
}

func parseBound(field string) *page.Key {
	if field == "-" {
		return nil
	}
	k := page.Key(field)
	return &k
}

func parseRID(pageIDField, slotField string) (page.RID, error) {
	pageID, err := strconv.Atoi(pageIDField)
	if err != nil {
		return page.RID{}, fmt.Errorf("invalid page id %q: %w", pageIDField, err)
	}
	slot, err := strconv.Atoi(slotField)
	if err != nil {
		return page.RID{}, fmt.Errorf("invalid slot %q: %w", slotField, err)
	}
	return page.RID{PageID: diskio.PageID(pageID), Slot: int32(slot)}, nil
}
