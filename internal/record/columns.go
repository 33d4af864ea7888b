package record

import "strings"

// Columns lists the header names accepted for each logical table field.
type Columns struct {
	Domain []string
	Alias  []string
	Group  []string
	Port   []string
}

// DefaultColumns accepts both the English and the Chinese export headers.
var DefaultColumns = Columns{
	Domain: []string{"domain", "域名"},
	Alias:  []string{"remark", "alias", "备注"},
	Group:  []string{"group", "分组"},
	Port:   []string{"port", "端口"},
}

// columnIndex holds the position of each logical field, -1 when absent.
type columnIndex struct {
	domain, alias, group, port int
}

// index resolves the header row once. A repeated header maps to its last column.
func (c Columns) index(header []string) columnIndex {
	idx := columnIndex{domain: -1, alias: -1, group: -1, port: -1}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		switch {
		case oneOf(c.Domain, name):
			idx.domain = i
		case oneOf(c.Alias, name):
			idx.alias = i
		case oneOf(c.Group, name):
			idx.group = i
		case oneOf(c.Port, name):
			idx.port = i
		}
	}
	return idx
}

func oneOf(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
