package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type item struct {
	AppName  string `json:"appName"`
	Username string `json:"username"`
	Secret   string `json:"password" table:"-"`
	Count    int
	hidden   string
}

type summary struct{ n int }

func (s summary) Table() *Table {
	t := &Table{Headers: []string{"TOTAL"}}
	t.AddRow(strings.Repeat("*", s.n))
	return t
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format Format
		want   Formatter
	}{
		{FormatJSON, &JSONFormatter{}},
		{FormatYAML, &YAMLFormatter{}},
		{FormatTable, &TableFormatter{}},
		{"unknown", &TableFormatter{}},
	}
	for _, tt := range tests {
		got := NewFormatter(tt.format)
		switch tt.want.(type) {
		case *JSONFormatter:
			_, ok := got.(*JSONFormatter)
			if !ok {
				t.Errorf("%s: got %T", tt.format, got)
			}
		case *YAMLFormatter:
			_, ok := got.(*YAMLFormatter)
			if !ok {
				t.Errorf("%s: got %T", tt.format, got)
			}
		default:
			if _, ok := got.(*TableFormatter); !ok {
				t.Errorf("%s: got %T", tt.format, got)
			}
		}
	}
}

func TestTableFormatter(t *testing.T) {
	tests := []struct {
		name    string
		data    any
		want    []string
		notWant []string
	}{
		{
			name:    "slice of structs",
			data:    []item{{AppName: "mail", Username: "ann", Secret: "pw", Count: 2, hidden: "h"}},
			want:    []string{"APP_NAME", "USERNAME", "COUNT", "mail", "ann", "2"},
			notWant: []string{"PASSWORD", "pw", "h"},
		},
		{
			name: "pointer slice with nil",
			data: []*item{{AppName: "git"}, nil},
			want: []string{"git", "-"},
		},
		{
			name: "struct",
			data: item{AppName: "mail"},
			want: []string{"FIELD", "appName", "mail"},
		},
		{
			name: "map sorted by key",
			data: map[string]int{"b": 2, "a": 1},
			want: []string{"KEY", "a  ", "b  "},
		},
		{
			name: "strings",
			data: []string{"x", ""},
			want: []string{"VALUE", "x", "-"},
		},
		{
			name: "tabular",
			data: summary{n: 3},
			want: []string{"TOTAL", "***"},
		},
		{
			name: "fallback to JSON",
			data: 42,
			want: []string{"42"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&TableFormatter{}).Format(&buf, tt.data); err != nil {
				t.Fatal(err)
			}
			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("output contains %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestTableFormatter_MapOrder(t *testing.T) {
	var buf bytes.Buffer
	(&TableFormatter{NoHeaders: true}).Format(&buf, map[string]string{"z": "1", "a": "2", "m": "3"})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "a") || !strings.HasPrefix(lines[2], "z") {
		t.Errorf("lines = %q", lines)
	}
}

func TestTable_Render(t *testing.T) {
	table := &Table{Headers: []string{"NAME", "VALUE"}}
	table.AddRow("long-name", "1")
	table.AddRow("x", "2")

	var buf bytes.Buffer
	if err := table.Render(&buf); err != nil {
		t.Fatal(err)
	}
	want := "NAME       VALUE\nlong-name  1\nx          2\n"
	if buf.String() != want {
		t.Errorf("Render() =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestFormatValue_Time(t *testing.T) {
	var buf bytes.Buffer
	data := []struct {
		At   time.Time `json:"at"`
		Zero time.Time `json:"zero"`
	}{{At: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)}}
	(&TableFormatter{}).Format(&buf, data)
	if !strings.Contains(buf.String(), "2024-05-01 09:30") || !strings.Contains(buf.String(), "-") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestYAMLFormatter_UsesJSONNames(t *testing.T) {
	var buf bytes.Buffer
	err := (&YAMLFormatter{}).Format(&buf, []item{{AppName: "mail", Secret: "pw"}})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, s := range []string{"- Count: 0", "  appName: mail", "  password: pw"} {
		if !strings.Contains(out, s) {
			t.Errorf("YAML missing %q:\n%s", s, out)
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, map[string]int{"key": 123}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"key": 123`) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrinter_Message(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatTable, "Logged out\n"},
		{FormatJSON, "{\n  \"message\": \"Logged out\"\n}\n"},
		{FormatYAML, "message: Logged out\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := NewPrinter(&buf, tt.format).Message("Logged %s", "out"); err != nil {
			t.Fatal(err)
		}
		if buf.String() != tt.want {
			t.Errorf("%s: Message() = %q, want %q", tt.format, buf.String(), tt.want)
		}
	}
}

func TestSpinner(t *testing.T) {
	tests := []struct {
		name string
		stop func(*Spinner)
		want string
	}{
		{"stop", (*Spinner).Stop, "\r\033[K"},
		{"success", func(s *Spinner) { s.Success("done") }, "✓ done\n"},
		{"fail", func(s *Spinner) { s.Fail("boom") }, "✗ boom\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewSpinner(&buf, "Working")
			s.Start()
			time.Sleep(2 * spinnerInterval)
			tt.stop(s)
			tt.stop(s)

			out := buf.String()
			if !strings.Contains(out, "Working") {
				t.Errorf("no frame written: %q", out)
			}
			if !strings.HasSuffix(out, tt.want) {
				t.Errorf("output = %q, want suffix %q", out, tt.want)
			}
		})
	}
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "idle")
	s.Stop()
	if buf.String() != "\r\033[K" {
		t.Errorf("output = %q", buf.String())
	}
}
