package shell

import (
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/domino14/tictactoe/config"
	"github.com/domino14/tictactoe/move"
	"github.com/domino14/tictactoe/movegen"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"new": {
		Args: []string{"human", "ai"},
	},
	"setboard": {
		Args: []string{"human", "ai"},
	},
	"analyze": {
		Options: []string{"-log"},
	},
	"autoplay": {
		Options: []string{"-opponent", "-threads", "-logfile", "-random-opening", "-histogram"},
	},
	"set": {
		Args: []string{
			config.ConfigHumanGlyph, config.ConfigAIGlyph, config.ConfigRevealDelay,
			config.ConfigRandomOpening, config.ConfigAutoplayThreads,
		},
	},
	"setconfig": {
		Args: []string{
			config.ConfigHumanGlyph, config.ConfigAIGlyph, config.ConfigRevealDelay,
			config.ConfigRandomOpening, config.ConfigAutoplayThreads,
			config.ConfigDataPath, config.ConfigHistoryFile, config.ConfigDebug,
		},
	},
	"alias": {
		Args: []string{"set", "delete", "show", "list", "remove", "rm"},
	},
	"help": {
		Args: []string{"play", "new", "ack", "hint", "analyze", "setboard", "autoplay",
			"set", "setconfig", "alias", "script"},
	},
}

var commandNames = []string{
	"help", "alias", "new", "n", "play", "p", "ack", "next", "show", "s", "score",
	"hint", "analyze", "setboard", "autoplay", "set", "setconfig", "script", "exit",
}

var boolValues = []string{"true", "false"}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = append(completions, commandNames...)
		aliasNames := make([]string, 0, len(c.sc.aliases))
		for aliasName := range c.sc.aliases {
			aliasNames = append(aliasNames, aliasName)
		}
		sort.Strings(aliasNames)
		completions = append(completions, aliasNames...)
	} else {
		cmdName := fields[0]
		if aliasValue, isAlias := c.sc.aliases[cmdName]; isAlias {
			aliasFields, err := shellquote.Split(aliasValue)
			if err == nil && len(aliasFields) > 0 {
				cmdName = aliasFields[0]
			}
		}
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		if strings.HasPrefix(lastCompleteField, "-") {
			switch strings.TrimPrefix(lastCompleteField, "-") {
			case "opponent":
				completions = []string{"optimal", "random"}
			case "random-opening", "histogram":
				completions = boolValues
			}
		}

		// Moves complete to the cells that are still free.
		if completions == nil && (cmdName == "play" || cmdName == "p") {
			b := c.sc.ctrl.Board()
			for _, idx := range movegen.EmptyIndices(&b) {
				completions = append(completions, strings.ToLower(move.ToCoords(idx)))
			}
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
