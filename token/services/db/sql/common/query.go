/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	SelectStatement = `SELECT`
	InsertStatement = `INSERT INTO`
)

type Select struct {
	columns   []string
	from      string
	where     string
	orderBy   string
	forUpdate bool
}

func NewSelect(columns ...string) *Select {
	return &Select{columns: columns}
}

func (s *Select) From(table string) *Select {
	s.from = table
	return s
}

func (s *Select) Where(where string) *Select {
	s.where = where
	return s
}

func (s *Select) OrderBy(orderBy string) *Select {
	s.orderBy = orderBy
	return s
}

// ForUpdate locks the selected rows until the end of the enclosing transaction
func (s *Select) ForUpdate(forUpdate bool) *Select {
	s.forUpdate = forUpdate
	return s
}

func (s *Select) Compile() (string, error) {
	if len(s.from) == 0 {
		return "", errors.New("missing table")
	}
	sb := new(strings.Builder)
	sb.WriteString(SelectStatement)
	sb.WriteString(" ")
	if len(s.columns) > 0 {
		sb.WriteString(strings.Join(s.columns, ", "))
	} else {
		sb.WriteString("*")
	}
	sb.WriteString(" FROM ")
	sb.WriteString(s.from)
	if len(s.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(s.where)
	}
	if len(s.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(s.orderBy)
	}
	if s.forUpdate {
		sb.WriteString(" FOR UPDATE")
	}
	return sb.String(), nil
}

type Insert struct {
	table      string
	rows       []string
	conflict   []string
	doUpdateOf []string
}

func NewInsertInto(table string) *Insert {
	return &Insert{table: table}
}

// Rows sets the comma-separated list of columns to insert
func (i *Insert) Rows(rows string) *Insert {
	i.rows = splitColumns(rows)
	return i
}

// OnConflictDoUpdate turns the insert into an upsert on the passed unique columns,
// overwriting the passed columns with the inserted values.
func (i *Insert) OnConflictDoUpdate(conflict string, update string) *Insert {
	i.conflict = splitColumns(conflict)
	i.doUpdateOf = splitColumns(update)
	return i
}

func (i *Insert) Compile() (string, error) {
	if len(i.table) == 0 {
		return "", errors.New("missing table")
	}
	if len(i.rows) == 0 {
		return "", errors.New("missing rows")
	}
	sb := new(strings.Builder)
	sb.WriteString(InsertStatement)
	sb.WriteString(" ")
	sb.WriteString(i.table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(i.rows, ", "))
	sb.WriteString(") VALUES (")
	for j := range i.rows {
		if j > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("$%d", j+1))
	}
	sb.WriteString(")")
	if len(i.conflict) > 0 {
		sb.WriteString(" ON CONFLICT (")
		sb.WriteString(strings.Join(i.conflict, ", "))
		sb.WriteString(") DO UPDATE SET ")
		for j, column := range i.doUpdateOf {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s = excluded.%s", column, column))
		}
	}
	return sb.String(), nil
}

func splitColumns(s string) []string {
	var res []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); len(c) > 0 {
			res = append(res, c)
		}
	}
	return res
}
