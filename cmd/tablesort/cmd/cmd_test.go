package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tablesort/internal/sorting"
)

const pricesCSV = `Name,Price,Released
Widget,"1,234.56",05.01.2024
Gadget,"12,50",17.03.2023
Doohickey,"$99,00",
`

const sizesHTML = `<table>
<tr><th><a href="?sortcol=1">Name</a></th><th>Size</th></tr>
<tr class="foswikiTableEven"><td>alpha</td><td>4.9GB</td></tr>
<tr class="foswikiTableOdd"><td>beta</td><td>1 KB</td></tr>
<tr class="foswikiTableEven"><td>gamma</td><td>10 MB</td></tr>
</table>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), err
}

// ----------------------------------------------------------------------------
// parseOrders Tests
// ----------------------------------------------------------------------------

func TestParseOrders(t *testing.T) {
	resolve := func(name string) (int, bool) {
		switch name {
		case "Name":
			return 0, true
		case "a:b":
			return 1, true
		}
		return 0, false
	}

	orders, err := parseOrders([]string{"Name:DESC", "a:b", "a:b:asc"}, resolve)
	require.NoError(t, err)
	assert.Equal(t, []sorting.Order{
		{Column: 0, Dir: sorting.Desc},
		{Column: 1, Dir: sorting.Asc},
		{Column: 1, Dir: sorting.Asc},
	}, orders)

	_, err = parseOrders([]string{"Missing"}, resolve)
	assert.ErrorContains(t, err, `unknown column "Missing"`)

	_, err = parseOrders(nil, resolve)
	assert.Error(t, err)
}

// ----------------------------------------------------------------------------
// Command Tests
// ----------------------------------------------------------------------------

func TestDetect(t *testing.T) {
	path := writeFile(t, "prices.csv", pricesCSV)

	out, err := run(t, "", "detect", path, "--date-format", "DD.MM.YYYY")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"Name", "string"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"Price", "currency"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"Released", "moment-DD.MM.YYYY"}, strings.Fields(lines[2]))
}

func TestDetect_Stdin(t *testing.T) {
	out, err := run(t, "1 KB\n2 MB\n", "detect", "-", "--no-header")
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "metric"}, strings.Fields(out))
}

func TestSort(t *testing.T) {
	path := writeFile(t, "prices.csv", pricesCSV)

	out, err := run(t, "", "sort", path, "--by", "price:desc")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Name,Price,Released", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Widget"))
	assert.True(t, strings.HasPrefix(lines[2], "Doohickey"))
	assert.True(t, strings.HasPrefix(lines[3], "Gadget"))
}

func TestSort_DateFormatBlankLast(t *testing.T) {
	path := writeFile(t, "prices.csv", pricesCSV)

	out, err := run(t, "", "sort", path, "--by", "Released", "--date-format", "DD.MM.YYYY")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "Gadget"))
	assert.True(t, strings.HasPrefix(lines[2], "Widget"))
	assert.True(t, strings.HasPrefix(lines[3], "Doohickey"))
}

func TestSort_Profile(t *testing.T) {
	csvPath := writeFile(t, "prices.csv", pricesCSV)
	profiles := writeFile(t, "profiles.yaml", `profiles:
  - name: releases
    options:
      dateTimeFormat: DD.MM.YYYY
`)

	out, err := run(t, "", "sort", csvPath, "--by", "2:desc", "--profile", "releases", "--profiles", profiles)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "Doohickey"), "blank dates sort first descending")
	assert.True(t, strings.HasPrefix(lines[2], "Widget"))
}

func TestSort_Errors(t *testing.T) {
	path := writeFile(t, "prices.csv", pricesCSV)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no by", []string{"sort", path}, "--by"},
		{"unknown column", []string{"sort", path, "--by", "Weight"}, "unknown column"},
		{"bad format", []string{"sort", path, "--by", "Name", "--date-format", "Q YYYY"}, "unsupported date format"},
		{"bad zone", []string{"sort", path, "--by", "Name", "--tz", "Mars/Olympus"}, "--tz"},
		{"profile without file", []string{"sort", path, "--by", "Name", "--profile", "x"}, "--profiles"},
		{"missing file", []string{"sort", filepath.Join(t.TempDir(), "none.csv"), "--by", "Name"}, "no such file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHTML(t *testing.T) {
	path := writeFile(t, "sizes.html", sizesHTML)

	out, err := run(t, "", "html", path, "--by", "Size", "--unlink-headers")
	require.NoError(t, err)

	assert.Less(t, strings.Index(out, "beta"), strings.Index(out, "gamma"))
	assert.Less(t, strings.Index(out, "gamma"), strings.Index(out, "alpha"))
	assert.NotContains(t, out, "sortcol")
	assert.Less(t, strings.Index(out, "<th>"), strings.Index(out, "beta"), "header stays first")
}

func TestHTML_ProfileRules(t *testing.T) {
	path := writeFile(t, "sizes.html", sizesHTML)
	profiles := writeFile(t, "profiles.yaml", `profiles:
  - name: sizes
    options:
      rowClass: 'data["Name"] == "beta" ? "small" : ""'
`)

	out, err := run(t, "", "html", path, "--by", "Size", "--profile", "sizes", "--profiles", profiles)
	require.NoError(t, err)
	assert.Contains(t, out, `class="foswikiTableEven small"`)
}
