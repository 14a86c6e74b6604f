package handler

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/l1jgo/petd/internal/world"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// CommandFunc handles one command line. args is the text after the command
// word with surrounding space trimmed.
type CommandFunc func(caller *world.Entity, args string)

type commandEntry struct {
	fn    CommandFunc
	usage string
	help  string
}

// Registry maps command words to handlers. Command words are matched
// case-insensitively. Game loop only (the case folder keeps state).
type Registry struct {
	commands map[string]*commandEntry
	fold     cases.Caser
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		commands: make(map[string]*commandEntry),
		fold:     cases.Fold(),
		log:      log,
	}
}

// Register maps a command word to a handler. usage and help feed the help
// listing.
func (reg *Registry) Register(name, usage, help string, fn CommandFunc) {
	reg.commands[reg.fold.String(name)] = &commandEntry{fn: fn, usage: usage, help: help}
}

// Dispatch splits line into command word and arguments and runs the
// handler. Unknown words return ErrUnknownCommand. A panicking handler is
// recovered and reported as an error.
func (reg *Registry) Dispatch(caller *world.Entity, line string) error {
	word, args := splitWord(line)
	if word == "" {
		return nil
	}
	word = reg.fold.String(word)

	entry, ok := reg.commands[word]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, word)
	}
	reg.log.Debug("command",
		zap.String("who", caller.NetName()),
		zap.String("cmd", word),
		zap.String("args", args),
	)
	return reg.safeCall(entry.fn, caller, args, word)
}

// safeCall keeps one bad command from taking down the game loop.
func (reg *Registry) safeCall(fn CommandFunc, caller *world.Entity, args, word string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("command handler panic recovered",
				zap.String("cmd", word),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for %q: %v", word, rec)
		}
	}()
	fn(caller, args)
	return nil
}

// Help returns one "usage - help" line per command, sorted.
func (reg *Registry) Help() []string {
	names := make([]string, 0, len(reg.commands))
	for n := range reg.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, n := range names {
		e := reg.commands[n]
		lines = append(lines, fmt.Sprintf("%-24s %s", e.usage, e.help))
	}
	return lines
}

// splitWord returns the first whitespace-separated word of s and the
// trimmed remainder.
func splitWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
