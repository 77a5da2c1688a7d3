package snapshot

import (
	"strings"
)

var (
	MySQL   Dialect = &mysqlDialect{}
	SQLite3 Dialect = &sqlite3Dialect{}
)

// Dialect covers the few places where the supported databases disagree.
type Dialect interface {
	quoter() byte
	// buildUpsert 在 INSERT ... VALUES 之后追加冲突处理，
	// keys 是主键列，cols 是需要更新的列
	buildUpsert(sb *strings.Builder, keys []string, cols []string)
}

func quote(sb *strings.Builder, q byte, name string) {
	sb.WriteByte(q)
	sb.WriteString(name)
	sb.WriteByte(q)
}

type mysqlDialect struct{}

func (m *mysqlDialect) quoter() byte {
	return '`'
}

// buildUpsert 使用原本插入的值
// ON DUPLICATE KEY UPDATE `name`=VALUES(`name`),`payload`=VALUES(`payload`)
func (m *mysqlDialect) buildUpsert(sb *strings.Builder, _ []string, cols []string) {
	sb.WriteString(" ON DUPLICATE KEY UPDATE ")
	for idx, col := range cols {
		if idx > 0 {
			sb.WriteByte(',')
		}
		quote(sb, m.quoter(), col)
		sb.WriteString("=VALUES(")
		quote(sb, m.quoter(), col)
		sb.WriteByte(')')
	}
}

type sqlite3Dialect struct{}

func (s *sqlite3Dialect) quoter() byte {
	return '`'
}

// buildUpsert
// ON CONFLICT(`kind`,`id`) DO UPDATE SET `name`=excluded.`name`
func (s *sqlite3Dialect) buildUpsert(sb *strings.Builder, keys []string, cols []string) {
	sb.WriteString(" ON CONFLICT")
	if len(keys) > 0 {
		sb.WriteByte('(')
		for i, key := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			quote(sb, s.quoter(), key)
		}
		sb.WriteByte(')')
	}
	sb.WriteString(" DO UPDATE SET ")
	for idx, col := range cols {
		if idx > 0 {
			sb.WriteByte(',')
		}
		quote(sb, s.quoter(), col)
		sb.WriteString("=excluded.")
		quote(sb, s.quoter(), col)
	}
}

func dialectOf(driver string) (Dialect, bool) {
	switch driver {
	case "mysql":
		return MySQL, true
	case "sqlite3":
		return SQLite3, true
	default:
		return nil, false
	}
}
