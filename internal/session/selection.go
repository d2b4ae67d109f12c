package session

import (
	"slices"
	"strconv"
	"strings"

	"github.com/ppiankov/benchforge/internal/target"
)

// SelectTargets interprets a target menu answer against the available
// targets (in registry order). Entries are comma separated and may be
// 1-based menu numbers, target ids, "all" (or number N+1) and "compiled"
// (or number N+2). Unknown entries are ignored and the result keeps
// registry order without duplicates.
func SelectTargets(input string, available []target.Target) []target.Target {
	n := len(available)
	picked := make(map[string]bool)

	for _, tok := range strings.Split(input, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if num, err := strconv.Atoi(tok); err == nil {
			switch {
			case num >= 1 && num <= n:
				picked[available[num-1].ID] = true
			case num == n+1:
				tok = "all"
			case num == n+2:
				tok = "compiled"
			default:
				continue
			}
		}
		switch tok {
		case "all":
			return slices.Clone(available)
		case "compiled":
			for _, t := range target.Compiled(available) {
				picked[t.ID] = true
			}
		default:
			for _, t := range available {
				if strings.ToLower(t.ID) == tok {
					picked[t.ID] = true
				}
			}
		}
	}

	var out []target.Target
	for _, t := range available {
		if picked[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// SelectModes interprets a mode menu answer: "1".."3" or a mode name picks
// one mode, "4" or "all" picks every mode. Several entries may be comma
// separated. Anything unrecognised falls back to cpu.
func SelectModes(input string) []target.Mode {
	all := target.AllModes()
	picked := make(map[target.Mode]bool)

	for _, tok := range strings.Split(input, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "all" || tok == strconv.Itoa(len(all)+1) {
			return all
		}
		if num, err := strconv.Atoi(tok); err == nil {
			if num >= 1 && num <= len(all) {
				picked[all[num-1]] = true
			}
			continue
		}
		if m, err := target.ParseMode(tok); err == nil {
			picked[m] = true
		}
	}

	var out []target.Mode
	for _, m := range all {
		if picked[m] {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return []target.Mode{target.ModeCPU}
	}
	return out
}

// Confirmed reports whether answer is an explicit yes.
func Confirmed(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
