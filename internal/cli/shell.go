package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/ruslan-rv-ua/sagittadb"
)

var shellCommands = []string{
	"all", "search", "grep", "find", "count",
	"insert", "update", "remove", "purge", "index",
	"help", "quit", "exit",
}

// NewShellCommand creates the interactive shell command.
func NewShellCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive query shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer db.Close()

			return runShell(cmd, opts, db)
		},
	}
	return cmd
}

func runShell(cmd *cobra.Command, opts *RootOptions, db *sagittadb.DB) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(prefix string) (out []string) {
		for _, c := range shellCommands {
			if strings.HasPrefix(c, prefix) {
				out = append(out, c)
			}
		}
		return out
	})

	historyPath := filepath.Join(os.TempDir(), ".sagitta_history")
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, `sagitta shell - type "help" for commands, "quit" to leave`)

	for {
		input, err := line.Prompt("sagitta> ")
		if errors.Is(err, liner.ErrPromptAborted) || err != nil {
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if input == "quit" || input == "exit" {
			return nil
		}
		if err := evalShellLine(cmd, opts, db, input); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}

func evalShellLine(cmd *cobra.Command, opts *RootOptions, db *sagittadb.DB, input string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	verb, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "help":
		fmt.Fprintln(out, `commands:
  all [limit [offset]]        list documents
  search <filter>             equality search, e.g. search {"city": "NYC"}
  grep <field> <pattern>      regex search (first 100 matches)
  find <field> <value...>     membership search
  count [filter]              count documents
  insert <document>           insert one document
  update <filter> <changes>   partial update
  remove <filter>             delete matching documents
  purge                       delete ALL documents
  index <field>               ensure a secondary index
  quit                        leave the shell`)
		return nil

	case "all":
		limit, offset := sagittadb.NoLimit, 0
		if rest != "" {
			parts := strings.Fields(rest)
			var err error
			if limit, err = strconv.Atoi(parts[0]); err != nil {
				return fmt.Errorf("bad limit %q", parts[0])
			}
			if len(parts) > 1 {
				if offset, err = strconv.Atoi(parts[1]); err != nil {
					return fmt.Errorf("bad offset %q", parts[1])
				}
			}
		}
		_, err := printDocs(out, opts.Format, db.All(ctx, limit, offset))
		return err

	case "search":
		filter, err := parseFilter([]byte(rest))
		if err != nil {
			return err
		}
		_, err = printDocs(out, opts.Format, db.Search(ctx, filter, sagittadb.NoLimit, 0))
		return err

	case "grep":
		field, pattern, ok := strings.Cut(rest, " ")
		if !ok {
			return fmt.Errorf("usage: grep <field> <pattern>")
		}
		_, err := printDocs(out, opts.Format, db.SearchPattern(ctx, field, strings.TrimSpace(pattern), sagittadb.NoLimit, 0))
		return err

	case "find":
		field, rawValues, ok := strings.Cut(rest, " ")
		if !ok {
			return fmt.Errorf("usage: find <field> <value...>")
		}
		var values []sagittadb.Value
		for _, raw := range strings.Fields(rawValues) {
			v, err := sagittadb.FromGo(parseShellScalar(raw))
			if err != nil {
				return err
			}
			values = append(values, v)
		}
		_, err := printDocs(out, opts.Format, db.FindAny(ctx, field, values))
		return err

	case "count":
		var filter sagittadb.Filter
		if rest != "" {
			f, err := parseFilter([]byte(rest))
			if err != nil {
				return err
			}
			filter = f
		}
		n, err := db.Count(ctx, filter)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)
		return nil

	case "insert":
		doc, err := parseDocument([]byte(rest))
		if err != nil {
			return err
		}
		id, err := db.Insert(ctx, doc)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, id)
		return nil

	case "update":
		first, second, err := splitJSONPair(rest)
		if err != nil {
			return err
		}
		filter, err := parseFilter([]byte(first))
		if err != nil {
			return err
		}
		changes, err := parseDocument([]byte(second))
		if err != nil {
			return fmt.Errorf("parse changes: %w", err)
		}
		n, err := db.Update(ctx, filter, sagittadb.Changes(changes))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "updated %d documents\n", n)
		return nil

	case "remove":
		filter, err := parseFilter([]byte(rest))
		if err != nil {
			return err
		}
		n, err := db.Remove(ctx, filter)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "removed %d documents\n", n)
		return nil

	case "purge":
		if err := db.Purge(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "store purged")
		return nil

	case "index":
		if rest == "" {
			return fmt.Errorf("usage: index <field>")
		}
		if err := db.CreateIndex(ctx, rest); err != nil {
			return err
		}
		fmt.Fprintf(out, "index ensured on %s\n", rest)
		return nil

	default:
		return fmt.Errorf("unknown command %q, try help", verb)
	}
}

// splitJSONPair splits two whitespace-separated JSON objects by
// tracking brace depth outside string literals.
func splitJSONPair(s string) (string, string, error) {
	depth := 0
	inString := false
	escaped := false
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inString:
			escaped = true
		case r == '"':
			inString = !inString
		case inString:
		case r == '{':
			depth++
		case r == '}':
			depth--
			if depth == 0 {
				return s[:i+1], strings.TrimSpace(s[i+1:]), nil
			}
		}
	}
	return "", "", fmt.Errorf("expected two JSON objects")
}

// parseShellScalar interprets a bare shell token as a JSON-ish scalar:
// number, bool, null, or plain string.
func parseShellScalar(raw string) any {
	switch raw {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return strings.Trim(raw, `"`)
}
