package record

import (
	"errors"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, seq iter.Seq2[ParsedDomain, error]) ([]ParsedDomain, []error) {
	t.Helper()
	var recs []ParsedDomain
	var errs []error
	for rec, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		recs = append(recs, rec)
	}
	return recs, errs
}

func TestTable_ChineseHeaders(t *testing.T) {
	input := "域名,端口,备注,分组\nhttps://a.b.com,,- note -,-web-\n"

	var p Parser
	recs, errs := collect(t, p.Parse(strings.NewReader(input), FormatTable))
	require.Empty(t, errs)
	require.Len(t, recs, 1)
	assert.Equal(t, ParsedDomain{
		Domain:     "a.b.com",
		RootDomain: "b.com",
		GroupName:  "web",
		Port:       443,
		Alias:      "note",
	}, recs[0])
}

func TestTable_PortSources(t *testing.T) {
	input := strings.Join([]string{
		"domain,port,remark,group",
		"https://example.com:8443/path,,,",
		"https://example.com:8443/path,9443,,",
		"example.org,,,",
	}, "\n")

	var p Parser
	recs, errs := collect(t, p.Parse(strings.NewReader(input), FormatTable))
	require.Empty(t, errs)
	require.Len(t, recs, 3)
	assert.Equal(t, 8443, recs[0].Port)
	assert.Equal(t, 9443, recs[1].Port, "port column overrides host port")
	assert.Equal(t, 443, recs[2].Port)
}

func TestTable_EmptyDomainAndBlankRows(t *testing.T) {
	input := "域名,备注\n,orphan\n\n   ,x\nexample.com,ok\n"

	var p Parser
	recs, errs := collect(t, p.Parse(strings.NewReader(input), FormatTable))
	require.Empty(t, errs)
	require.Len(t, recs, 1)
	assert.Equal(t, "example.com", recs[0].Domain)
	assert.Equal(t, "ok", recs[0].Alias)
}

func TestTable_HeaderQuirks(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		domain string
		alias  string
	}{
		{"BOM", "\ufeffdomain,remark\nexample.com,a\n", "example.com", "a"},
		{"Whitespace and case", " Domain , Remark \nexample.com , a \n", "example.com", "a"},
		{"Duplicate header, last wins", "domain,remark,remark\nexample.com,first,second\n", "example.com", "second"},
		{"Short row", "remark,group,domain\nonly-remark\n", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Parser
			recs, errs := collect(t, p.Parse(strings.NewReader(tt.input), FormatTable))
			require.Empty(t, errs)
			if tt.domain == "" {
				assert.Empty(t, recs)
				return
			}
			require.Len(t, recs, 1)
			assert.Equal(t, tt.domain, recs[0].Domain)
			assert.Equal(t, tt.alias, recs[0].Alias)
		})
	}
}

func TestTable_NoDomainColumn(t *testing.T) {
	var p Parser
	recs, errs := collect(t, p.Parse(strings.NewReader("name,remark\nexample.com,x\n"), FormatTable))
	assert.Empty(t, errs)
	assert.Empty(t, recs)
}

func TestTable_EmptyInput(t *testing.T) {
	var p Parser
	recs, errs := collect(t, p.Parse(strings.NewReader(""), FormatTable))
	assert.Empty(t, errs)
	assert.Empty(t, recs)
}

func TestLines(t *testing.T) {
	input := strings.Join([]string{
		"https://example.com:8443/path",
		"",
		"   ",
		"//cdn.example.co.uk/asset.js",
		"HTTP://Upper.Example.com",
		"192.0.2.1:8080",
		"[2001:db8::1]:9443",
		"/just/a/path",
	}, "\n")

	var p Parser
	recs, errs := collect(t, p.Parse(strings.NewReader(input), FormatLines))
	require.Empty(t, errs)
	require.Len(t, recs, 5)

	assert.Equal(t, ParsedDomain{Domain: "example.com", RootDomain: "example.com", Port: 8443}, recs[0])
	assert.Equal(t, ParsedDomain{Domain: "cdn.example.co.uk", RootDomain: "example.co.uk", Port: 443}, recs[1])
	assert.Equal(t, "Upper.Example.com", recs[2].Domain)
	assert.Equal(t, "Example.com", recs[2].RootDomain)
	assert.Equal(t, ParsedDomain{Domain: "192.0.2.1", Port: 8080}, recs[3])
	assert.Equal(t, ParsedDomain{Domain: "2001:db8::1", Port: 9443}, recs[4])
}

func TestLines_InternationalizedHost(t *testing.T) {
	var p Parser
	input := "https://münchen.de/karte\nhttps://例子.中国/x\nshop.公司.香港:8443\n"
	recs, errs := collect(t, p.Parse(strings.NewReader(input), FormatLines))
	require.Empty(t, errs)
	require.Len(t, recs, 3)
	assert.Equal(t, ParsedDomain{Domain: "münchen.de", RootDomain: "münchen.de", Port: 443}, recs[0])
	assert.Equal(t, ParsedDomain{Domain: "例子.中国", RootDomain: "例子.中国", Port: 443}, recs[1])
	assert.Equal(t, ParsedDomain{Domain: "shop.公司.香港", RootDomain: "shop.公司.香港", Port: 8443}, recs[2])
}

func TestBadPort_ContinuesIteration(t *testing.T) {
	input := "a.example.com:http\nb.example.com:70000\nc.example.com:8443\n"

	var p Parser
	recs, errs := collect(t, p.Parse(strings.NewReader(input), FormatLines))
	require.Len(t, errs, 2)
	require.Len(t, recs, 1)
	assert.Equal(t, "c.example.com", recs[0].Domain)

	var perr *ParseError
	require.True(t, errors.As(errs[0], &perr))
	assert.Equal(t, 1, perr.Line)
	assert.Equal(t, "port", perr.Field)
	assert.Equal(t, "http", perr.Value)
	assert.True(t, errors.Is(errs[0], strconv.ErrSyntax))

	require.True(t, errors.As(errs[1], &perr))
	assert.Equal(t, 2, perr.Line)
	assert.ErrorIs(t, errs[1], ErrPortRange)
}

func TestBadPort_TableLineNumbers(t *testing.T) {
	input := "domain,port\nexample.com,443\nexample.org,abc\n"

	var p Parser
	_, errs := collect(t, p.Parse(strings.NewReader(input), FormatTable))
	require.Len(t, errs, 1)

	var perr *ParseError
	require.ErrorAs(t, errs[0], &perr)
	assert.Equal(t, 3, perr.Line)
	assert.Contains(t, perr.Error(), "<input>:3")
}

func TestEmptyPortAfterColon(t *testing.T) {
	var p Parser
	recs, errs := collect(t, p.Parse(strings.NewReader("example.com:\n"), FormatLines))
	require.Empty(t, errs)
	require.Len(t, recs, 1)
	assert.Equal(t, 443, recs[0].Port)
}

func TestParserOptions(t *testing.T) {
	p := Parser{
		DefaultPort: 8443,
		Columns:     Columns{Domain: []string{"host"}, Alias: []string{"label"}},
		Exclude: func(host string) bool {
			return strings.HasSuffix(host, ".internal")
		},
	}

	input := "host,label\nsvc.internal,skip\napi.example.com,API\n"
	recs, errs := collect(t, p.Parse(strings.NewReader(input), FormatTable))
	require.Empty(t, errs)
	require.Len(t, recs, 1)
	assert.Equal(t, ParsedDomain{Domain: "api.example.com", RootDomain: "example.com", Port: 8443, Alias: "API"}, recs[0])
}

type failingResolver struct{}

func (failingResolver) RootDomain(string) (string, error) {
	return "", errors.New("suffix list unavailable")
}

func TestResolverError_PerRecord(t *testing.T) {
	p := Parser{Resolver: failingResolver{}}
	recs, errs := collect(t, p.Parse(strings.NewReader("a.example.com\nb.example.com\n"), FormatLines))
	assert.Empty(t, recs)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "suffix list unavailable")
}

func TestEarlyBreak(t *testing.T) {
	var p Parser
	n := 0
	for range p.Parse(strings.NewReader("a.com\nb.com\nc.com\n"), FormatLines) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "domains.CSV")
	txtPath := filepath.Join(dir, "domains.txt")
	require.NoError(t, os.WriteFile(csvPath, []byte("域名,分组\nshop.example.com,电商\n"), 0o644))
	require.NoError(t, os.WriteFile(txtPath, []byte("域名,分组\nshop.example.com,电商\n"), 0o644))

	var p Parser

	recs, errs := collect(t, p.ParseFile(csvPath))
	require.Empty(t, errs)
	require.Len(t, recs, 1)
	assert.Equal(t, "电商", recs[0].GroupName)

	// the sequence can be ranged again
	again, _ := collect(t, p.ParseFile(csvPath))
	assert.Equal(t, recs, again)

	// as plain text the header line itself becomes a host token
	recs, errs = collect(t, p.ParseFile(txtPath))
	require.Empty(t, errs)
	require.Len(t, recs, 2)
	assert.Equal(t, "域名", recs[0].Domain)
	assert.Equal(t, "shop.example.com", recs[1].Domain)

	_, errs = collect(t, p.ParseFile(filepath.Join(dir, "missing.csv")))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], os.ErrNotExist)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatTable, FormatFor("list.csv"))
	assert.Equal(t, FormatTable, FormatFor("/tmp/LIST.Csv"))
	assert.Equal(t, FormatLines, FormatFor("list.txt"))
	assert.Equal(t, FormatLines, FormatFor("list"))
	assert.Equal(t, "csv", Ext("a/b.CSV"))
	assert.Equal(t, "table", FormatTable.String())
}

func BenchmarkParseLines(b *testing.B) {
	input := strings.Repeat("https://www.example.com:8443/path\nshop.example.co.uk\n", 500)
	var p Parser
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for range p.Parse(strings.NewReader(input), FormatLines) {
		}
	}
}
