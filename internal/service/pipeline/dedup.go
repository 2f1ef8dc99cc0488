package pipeline

import "github.com/octobees/leadscout/internal/entity"

// Deduplicate keeps the first fragment seen for each trimmed, lower-cased name.
// Fragments whose key is empty are dropped. Order is preserved and no fields are merged.
func Deduplicate(fragments []entity.Fragment) []entity.Fragment {
	seen := make(map[string]struct{}, len(fragments))
	out := make([]entity.Fragment, 0, len(fragments))
	for _, f := range fragments {
		key := f.Key()
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}
