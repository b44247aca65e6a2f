package policy

// Resolve expands an alias name into the flat, order-preserving literal
// token sequence, ready to hand to the toolchain with no further
// rewriting.
//
// Expansion is a depth-first walk over the alias graph with a visited
// set scoped to the current expansion path:
//   - TokenLiteral tokens pass through verbatim, even when the text
//     collides with an alias name.
//   - TokenRef tokens must name a defined alias; otherwise resolution
//     fails with UnknownAliasError.
//   - TokenAuto tokens expand when the text names a defined alias and
//     pass through as literals otherwise.
//
// A name reappearing on the current expansion path is a cycle and fails
// with CyclicAliasError carrying the full chain. Resolution never
// executes anything.
func (t AliasTable) Resolve(name string) ([]string, error) {
	alias, ok := t[name]
	if !ok {
		return nil, &UnknownAliasError{Name: name}
	}

	w := &aliasWalk{
		table:  t,
		onPath: map[string]bool{name: true},
		path:   []string{name},
	}
	if err := w.expand(alias); err != nil {
		return nil, err
	}
	return w.out, nil
}

// ResolveAll resolves every alias in the table, keyed by name. Used by
// validation to surface cycles and dangling references for all entries,
// not just the one invoked.
func (t AliasTable) ResolveAll() (map[string][]string, error) {
	resolved := make(map[string][]string, len(t))
	for name := range t {
		tokens, err := t.Resolve(name)
		if err != nil {
			return nil, err
		}
		resolved[name] = tokens
	}
	return resolved, nil
}

// aliasWalk carries the state of one depth-first expansion: the table
// being walked, the on-path visited set, the chain for error reporting,
// and the accumulated literal tokens.
type aliasWalk struct {
	table  AliasTable
	onPath map[string]bool
	path   []string
	out    []string
}

func (w *aliasWalk) expand(alias Alias) error {
	for _, tok := range alias.Tokens {
		switch tok.Kind {
		case TokenLiteral:
			w.out = append(w.out, tok.Text)

		case TokenRef:
			next, ok := w.table[tok.Text]
			if !ok {
				return &UnknownAliasError{Name: tok.Text}
			}
			if err := w.recurse(next); err != nil {
				return err
			}

		case TokenAuto:
			next, ok := w.table[tok.Text]
			if !ok {
				w.out = append(w.out, tok.Text)
				continue
			}
			if err := w.recurse(next); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *aliasWalk) recurse(next Alias) error {
	if w.onPath[next.Name] {
		cycle := make([]string, 0, len(w.path)+1)
		cycle = append(cycle, w.path...)
		cycle = append(cycle, next.Name)
		return &CyclicAliasError{Path: cycle}
	}

	w.onPath[next.Name] = true
	w.path = append(w.path, next.Name)

	if err := w.expand(next); err != nil {
		return err
	}

	w.path = w.path[:len(w.path)-1]
	delete(w.onPath, next.Name)
	return nil
}
