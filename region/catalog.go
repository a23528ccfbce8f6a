package region

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gigamon-dev/subspace-go/core"
)

// rect is one rectangular region-list entry (§6 "flat in-memory table
// parsed from a simple region-list file").
type rect struct {
	id             core.RegionID
	x1, y1, x2, y2 int
}

// FileCatalog is the concrete, in-memory-table MapData/RegionCatalog
// backing SPEC_FULL.md §6 promises for this repo: it parses a region-list
// file into axis-aligned rectangles, each tagged with a RegionID and an
// optional RegionSpec, and answers both RegionsAt (tile -> regions) and
// Lookup (region -> spec) from that table. Real LVL/region geometry stays
// out of scope (§1); this only needs to exercise the collaborator seams.
type FileCatalog struct {
	rects []rect
	specs map[core.RegionID]core.RegionSpec
}

// LoadCatalog parses r as a region-list file: one rule per line,
// whitespace-separated fields, `#`-prefixed lines and blank lines ignored.
//
//	<id> <x1> <y1> <x2> <y2> [noanti] [noweapons] [warp:ARENA:X:Y | warp:X:Y]
//
// x1,y1,x2,y2 are inclusive tile-coordinate bounds. warp with two fields
// after the colon targets the same arena; with three it names a
// cross-arena destination (AutoWarpTarget.Arena).
func LoadCatalog(r io.Reader) (*FileCatalog, error) {
	c := &FileCatalog{specs: make(map[core.RegionID]core.RegionSpec)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return nil, fmt.Errorf("region list line %d: need at least 5 fields, got %d", lineNo, len(fields))
		}

		id := core.RegionID(fields[0])
		coords := make([]int, 4)
		for i := 0; i < 4; i++ {
			v, err := strconv.Atoi(fields[1+i])
			if err != nil {
				return nil, fmt.Errorf("region list line %d: bad coordinate %q: %w", lineNo, fields[1+i], err)
			}
			coords[i] = v
		}
		c.rects = append(c.rects, rect{id: id, x1: coords[0], y1: coords[1], x2: coords[2], y2: coords[3]})

		spec := c.specs[id]
		for _, flag := range fields[5:] {
			switch {
			case flag == "noanti":
				spec.NoAntiwarp = true
			case flag == "noweapons":
				spec.NoWeapons = true
			case strings.HasPrefix(flag, "warp:"):
				target, err := parseWarp(strings.TrimPrefix(flag, "warp:"))
				if err != nil {
					return nil, fmt.Errorf("region list line %d: %w", lineNo, err)
				}
				spec.AutoWarp = target
			default:
				return nil, fmt.Errorf("region list line %d: unrecognized flag %q", lineNo, flag)
			}
		}
		c.specs[id] = spec
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func parseWarp(s string) (*core.AutoWarpTarget, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 2:
		x, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("bad warp x %q: %w", parts[0], err)
		}
		y, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("bad warp y %q: %w", parts[1], err)
		}
		return &core.AutoWarpTarget{X: int16(x), Y: int16(y)}, nil
	case 3:
		x, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("bad warp x %q: %w", parts[1], err)
		}
		y, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("bad warp y %q: %w", parts[2], err)
		}
		return &core.AutoWarpTarget{Arena: parts[0], X: int16(x), Y: int16(y)}, nil
	default:
		return nil, fmt.Errorf("malformed warp target %q", s)
	}
}

// RegionsAt implements the Tracker.Lookup seam: every rectangle containing
// (tileX, tileY), regardless of arena (region lists are arena-scoped by
// which file gets loaded, not by a field in the file).
func (c *FileCatalog) RegionsAt(arena string, tileX, tileY int) []core.RegionID {
	var out []core.RegionID
	for _, r := range c.rects {
		if tileX >= r.x1 && tileX <= r.x2 && tileY >= r.y1 && tileY <= r.y2 {
			out = append(out, r.id)
		}
	}
	return out
}

// Lookup implements core.RegionCatalog.
func (c *FileCatalog) Lookup(id core.RegionID) (core.RegionSpec, bool) {
	spec, ok := c.specs[id]
	return spec, ok
}
