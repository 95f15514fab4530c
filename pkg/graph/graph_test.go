package graph

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/family/classify"
	"github.com/matzehuels/lineage/pkg/hierarchy"
	"github.com/matzehuels/lineage/pkg/layout"
)

func sample() Snapshot {
	return Snapshot{
		Persons: []Person{
			{MID: "1", Name: "Ada", Gender: "F", Age: 61},
			{MID: "2", Name: "Bert", Gender: "M", Age: 63},
			{MID: "3", Name: "Cleo", Gender: "F", Age: 30},
		},
		Edges: []Edge{
			{From: "1", To: "2", Relationship: Relationship(family.KindMarriage)},
			{From: "2", To: "1", Relationship: Relationship(family.KindMarriage)},
			{From: "1", To: "3", Relationship: Relationship(family.KindParentChild)},
			{From: "3", To: "1", Relationship: Relationship(family.KindChildParent)},
			{From: "2", To: "3", Relationship: Relationship(family.KindParentChild)},
		},
	}
}

func TestReadSnapshot(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		input     string
		wantPers  int
		wantEdges int
		wantErr   errors.Code
		check     func(t *testing.T, s Snapshot)
	}{
		{
			name:   "JSON",
			format: FormatJSON,
			input: `{
				"persons": [{"mid": "1", "name": "Ada", "gender": "F", "age": 61}, {"mid": "2", "name": "Bert", "gender": "M", "age": 63}],
				"edges": [{"from": "1", "to": "2", "relationship": 11}]
			}`,
			wantPers:  2,
			wantEdges: 1,
			check: func(t *testing.T, s Snapshot) {
				if s.Edges[0].Relationship.Kind() != family.KindMarriage {
					t.Errorf("relationship = %v, want Married", s.Edges[0].Relationship.Kind())
				}
			},
		},
		{
			name:      "JSONLabels",
			format:    FormatJSON,
			input:     `{"persons": [], "edges": [{"from": "1", "to": "2", "relationship": "Parent"}, {"from": "1", "to": "2", "relationship": "11"}]}`,
			wantEdges: 2,
			check: func(t *testing.T, s Snapshot) {
				if s.Edges[0].Relationship.Kind() != family.KindParentChild {
					t.Errorf("label Parent decoded as %v", s.Edges[0].Relationship.Kind())
				}
				if s.Edges[1].Relationship.Kind() != family.KindMarriage {
					t.Errorf("quoted code decoded as %v", s.Edges[1].Relationship.Kind())
				}
			},
		},
		{
			name:   "YAML",
			format: FormatYAML,
			input: `
persons:
  - {mid: "1", name: Ada, gender: F, age: 61}
  - {mid: "2", name: Bert, gender: M, age: 63}
edges:
  - {from: "1", to: "2", relationship: Married}
  - {from: "2", to: "1", relationship: 11}
`,
			wantPers:  2,
			wantEdges: 2,
			check: func(t *testing.T, s Snapshot) {
				for _, e := range s.Edges {
					if e.Relationship.Kind() != family.KindMarriage {
						t.Errorf("relationship = %v, want Married", e.Relationship.Kind())
					}
				}
			},
		},
		{
			name:   "EmptyYAML",
			format: FormatYAML,
			input:  "",
		},
		{
			name:    "InvalidJSON",
			format:  FormatJSON,
			input:   `{invalid json}`,
			wantErr: errors.ErrCodeInvalidFormat,
		},
		{
			name:    "UnknownLabel",
			format:  FormatJSON,
			input:   `{"edges": [{"from": "1", "to": "2", "relationship": "Cousin"}]}`,
			wantErr: errors.ErrCodeInvalidFormat,
		},
		{
			name:    "UnknownFormat",
			format:  "xml",
			input:   `<persons/>`,
			wantErr: errors.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ReadSnapshot(strings.NewReader(tt.input), tt.format)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadSnapshot: %v", err)
			}
			if got := len(s.Persons); got != tt.wantPers {
				t.Errorf("persons = %d, want %d", got, tt.wantPers)
			}
			if got := len(s.Edges); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, s)
			}
		})
	}
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	for _, name := range []string{"family.json", "family.yaml", "family.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := sample()
			if err := WriteSnapshotFile(want, path); err != nil {
				t.Fatalf("WriteSnapshotFile: %v", err)
			}
			got, err := ReadSnapshotFile(path)
			if err != nil {
				t.Fatalf("ReadSnapshotFile: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip = %+v, want %+v", got, want)
			}
		})
	}
}

func TestReadSnapshotFileMissing(t *testing.T) {
	_, err := ReadSnapshotFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeNotFound)
	}
}

func TestMarshalSnapshotWritesCodes(t *testing.T) {
	data, err := MarshalSnapshot(sample())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"relationship": 11`) {
		t.Errorf("relationship should be written as a numeric code:\n%s", data)
	}
}

func TestSnapshotConversion(t *testing.T) {
	s := sample()
	members := s.Members()
	if len(members) != 3 || members[0].Gender != family.GenderFemale || members[1].Gender != family.GenderMale {
		t.Errorf("Members() = %+v", members)
	}
	edges := s.FamilyEdges()
	if len(edges) != 5 || edges[3].Kind != family.KindChildParent {
		t.Errorf("FamilyEdges() = %+v", edges)
	}
	if back := FromFamily(members, edges); !reflect.DeepEqual(back, s) {
		t.Errorf("FromFamily(Members(), FamilyEdges()) = %+v, want %+v", back, s)
	}
}

func TestSnapshotValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Snapshot)
		wantErr bool
	}{
		{"valid", func(*Snapshot) {}, false},
		{"dangling edge is fine", func(s *Snapshot) {
			s.Edges = append(s.Edges, Edge{From: "1", To: "ghost", Relationship: 13})
		}, false},
		{"missing mid", func(s *Snapshot) { s.Persons[0].MID = "" }, true},
		{"control char in mid", func(s *Snapshot) { s.Persons[0].MID = "a\nb" }, true},
		{"negative age", func(s *Snapshot) { s.Persons[1].Age = -3 }, true},
		{"edge without target is fine", func(s *Snapshot) { s.Edges[0].To = "" }, false},
		{"implausible age", func(s *Snapshot) { s.Persons[0].Age = 201 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sample()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidMember) {
				t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidMember)
			}
		})
	}
}

func TestSnapshotHash(t *testing.T) {
	a, b := sample(), sample()
	if a.Hash() != b.Hash() {
		t.Error("equal snapshots must hash equally")
	}
	b.Persons[0].Age++
	if a.Hash() == b.Hash() {
		t.Error("different snapshots should hash differently")
	}
	if len(a.Hash()) != 64 {
		t.Errorf("hash length = %d, want 64", len(a.Hash()))
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"a.json":       FormatJSON,
		"a.YAML":       FormatYAML,
		"dir/a.yml":    FormatYAML,
		"no-extension": FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func computed(t *testing.T) *layout.Layout {
	t.Helper()
	s := sample()
	g := family.Build(s.Members(), s.FamilyEdges())
	root, err := hierarchy.Build(g, classify.Classify(g))
	if err != nil {
		t.Fatal(err)
	}
	l, err := layout.Compute(root, layout.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestLayoutRoundTrip(t *testing.T) {
	l := computed(t)
	data, err := MarshalLayout(FromLayout(l))
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	parsed, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if parsed.Nodes[0].Kind != KindCouple || parsed.Nodes[1].Kind != KindPerson {
		t.Errorf("kinds = %s, %s", parsed.Nodes[0].Kind, parsed.Nodes[1].Kind)
	}
	back, err := ToLayout(parsed)
	if err != nil {
		t.Fatalf("ToLayout: %v", err)
	}
	if !reflect.DeepEqual(back, l) {
		t.Errorf("round trip = %+v, want %+v", back, l)
	}
}

func TestLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	want := FromLayout(computed(t))
	if err := WriteLayoutFile(want, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadLayoutFile = %+v, want %+v", got, want)
	}
}

func TestUnmarshalLayoutErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"invalid json", `{`},
		{"no viewport", `{"nodes": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalLayout([]byte(tt.input)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidFormat)
			}
		})
	}

	if _, err := ToLayout(Layout{Width: 1, Height: 1, Nodes: []Node{{ID: "x", Kind: "alien"}}}); err == nil {
		t.Error("ToLayout should reject unknown kinds")
	}
}
