package journal

import (
	"context"
	"fmt"
	"strings"
)

// QueryResult is what the SQL console returns. Select queries fill Columns
// and Rows; anything else fills RowsAffected.
type QueryResult struct {
	Select       bool     `json:"select"`
	Columns      []string `json:"columns,omitempty"`
	Rows         [][]any  `json:"rows,omitempty"`
	RowsAffected int64    `json:"rows_affected"`
}

func (r QueryResult) Message() string {
	if r.Select {
		return fmt.Sprintf("Query executed successfully. Returned %d rows.", len(r.Rows))
	}
	return fmt.Sprintf("Query executed successfully. %d row(s) affected.", r.RowsAffected)
}

// Console runs raw SQL against the journal. It refuses to run unless it
// was explicitly enabled.
type Console struct {
	j       *SQLite
	enabled bool
}

func (j *SQLite) Console(enabled bool) *Console {
	return &Console{j: j, enabled: enabled}
}

func (c *Console) Exec(ctx context.Context, query string) (QueryResult, error) {
	if !c.enabled {
		return QueryResult{}, ErrConsoleDisabled
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return QueryResult{}, &ValidationError{Field: "query", Reason: "empty"}
	}

	res, err := c.exec(ctx, q)
	if err != nil {
		return QueryResult{}, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	e := NewLogEntry(ActionSQLQuery, CategoryDatabase, res.Message(), map[string]string{"query": q})
	if _, err := c.j.AddLog(ctx, e); err != nil {
		warnAudit(ctx, e, err)
	}
	return res, nil
}

func (c *Console) exec(ctx context.Context, q string) (QueryResult, error) {
	if !strings.HasPrefix(strings.ToUpper(q), "SELECT") {
		r, err := c.j.db.ExecContext(ctx, q)
		if err != nil {
			return QueryResult{}, fmt.Errorf("exec: %w", err)
		}
		n, _ := r.RowsAffected()
		return QueryResult{RowsAffected: n}, nil
	}

	rows, err := c.j.db.QueryxContext(ctx, q)
	if err != nil {
		return QueryResult{}, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return QueryResult{}, err
	}
	out := QueryResult{Select: true, Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return QueryResult{}, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out.Rows = append(out.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return QueryResult{}, err
	}
	return out, nil
}
