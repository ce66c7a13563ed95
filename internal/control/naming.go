package control

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ProgramIDFromFilename derives a stable, collision-safe program ID from a
// source filename: the base name without extension, lowercased, with every
// run of non-alphanumeric characters collapsed to a single hyphen.
// "My Deck (v2).pptx" becomes "my-deck-v2".
func ProgramIDFromFilename(filename string) ProgramID {
	base := filepath.Base(filename)
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}

	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	id := strings.TrimSuffix(b.String(), "-")
	if id == "" {
		id = "program"
	}
	return ProgramID(id)
}

// SceneName returns the deterministic container name for the act at index
// i of program p. The suffix is 1-based for human readability in the
// production tool's scene list.
func SceneName(cfg Config, id ProgramID, i int) string {
	return fmt.Sprintf("%s%s%s%d", cfg.ScenePrefix, id, cfg.ActInfix, i+1)
}

// LiveSceneName returns the name of the single capture container used by
// live-render mode for program p.
func LiveSceneName(cfg Config, id ProgramID) string {
	return cfg.ScenePrefix + string(id) + cfg.LiveSuffix
}

// VideoSceneName returns the name of the nested video container under the
// given parent scene. sub is 1-based.
func VideoSceneName(cfg Config, parent string, sub int) string {
	return fmt.Sprintf("%s%s%d", parent, cfg.VideoInfix, sub)
}
