package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ferrodb/internal/record"
	"ferrodb/internal/server"
	"ferrodb/internal/tx"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"
)

// repl is the interactive SQL command loop: every line is parsed and
// executed against a fresh, immediately-committed transaction, the way a
// standalone `psql`-style client treats each statement as its own unit of
// work.
type repl struct {
	db        *server.FerroDB
	sessionID string
	log       zerolog.Logger
	liner     *liner.State
}

func newREPL(db *server.FerroDB, sessionID string, log zerolog.Logger) *repl {
	return &repl{db: db, sessionID: sessionID, log: log}
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ferrodb_history")
}

func (r *repl) run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("ferrodb (session %s)\n", r.sessionID)
	fmt.Println("Enter SQL statements terminated by a newline; 'exit' to quit.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("ferrodb> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nbye")
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)

		switch strings.ToLower(line) {
		case "exit", "quit", "\\q":
			fmt.Println("bye")
			r.saveHistory()
			return nil
		}

		r.execute(line)
	}

	r.saveHistory()
	return nil
}

func (r *repl) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

// execute runs a single statement in its own transaction, committing on
// success and rolling back on any error so a bad statement never leaves a
// lock held or a half-applied write behind.
func (r *repl) execute(stmt string) {
	t, err := r.db.NewTx()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	if strings.HasPrefix(strings.ToLower(stmt), "select") {
		if err := r.runQuery(t, stmt); err != nil {
			fmt.Printf("error: %v\n", err)
			r.log.Error().Err(err).Msg("query failed")
			t.Rollback()
			return
		}
		if err := t.Commit(); err != nil {
			fmt.Printf("error committing: %v\n", err)
		}
		return
	}

	n, err := r.db.Planner.ExecuteUpdate(stmt, t)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		r.log.Error().Err(err).Msg("update failed")
		t.Rollback()
		return
	}
	if err := t.Commit(); err != nil {
		fmt.Printf("error committing: %v\n", err)
		return
	}
	fmt.Printf("%d rows affected\n", n)
}

func (r *repl) runQuery(t *tx.Transaction, stmt string) error {
	p, err := r.db.Planner.CreateQueryPlan(stmt, t)
	if err != nil {
		return err
	}
	scan, err := p.Open()
	if err != nil {
		return err
	}
	defer scan.Close()

	schema := p.Schema()
	fields := schema.Fields()
	printHeader(fields)

	rows := 0
	for {
		ok, err := scan.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		vals := make([]string, len(fields))
		for i, f := range fields {
			v, err := scan.GetVal(f)
			if err != nil {
				return err
			}
			vals[i] = formatConstant(v)
		}
		fmt.Println(strings.Join(vals, "\t"))
		rows++
	}
	fmt.Printf("(%d rows)\n", rows)
	return nil
}

func printHeader(fields []string) {
	fmt.Println(strings.Join(fields, "\t"))
	underline := make([]string, len(fields))
	for i, f := range fields {
		underline[i] = strings.Repeat("-", len(f))
	}
	fmt.Println(strings.Join(underline, "\t"))
}

func formatConstant(c record.Constant) string {
	return c.String()
}
