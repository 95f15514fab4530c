package graph

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Serialization formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Node kinds as they appear in serialized layouts.
const (
	KindRoot   = "root"
	KindCouple = "couple"
	KindPerson = "person"
)

// =============================================================================
// Snapshot - Provider Export Format
// =============================================================================

// Snapshot is one consistent read of the graph provider: every member and
// every relationship edge, in the provider's export format.
//
//	{
//	  "persons": [{"mid": "1", "name": "Ada", "gender": "F", "age": 61}],
//	  "edges":   [{"from": "1", "to": "2", "relationship": 11}]
//	}
type Snapshot struct {
	Persons []Person `json:"persons" yaml:"persons" bson:"persons" validate:"dive"`
	Edges   []Edge   `json:"edges" yaml:"edges" bson:"edges" validate:"dive"`
}

// Person is a member record.
type Person struct {
	MID    string `json:"mid" yaml:"mid" bson:"mid" validate:"required,max=128"`
	Name   string `json:"name" yaml:"name" bson:"name" validate:"max=256"`
	Gender string `json:"gender,omitempty" yaml:"gender,omitempty" bson:"gender,omitempty" validate:"max=16"`
	Age    int    `json:"age" yaml:"age" bson:"age" validate:"gte=0,lte=200"`
}

// Edge is a relationship record. The provider stores complementary edges
// (a Parent edge plus the matching Son-Daughter edge) side by side.
type Edge struct {
	From         string       `json:"from" yaml:"from" bson:"from"`
	To           string       `json:"to" yaml:"to" bson:"to"`
	Relationship Relationship `json:"relationship" yaml:"relationship" bson:"relationship"`
}

// Relationship is a relationship code. It decodes from the numeric code or
// from its label ("Married", "Parent", ...).
type Relationship family.Kind

// Kind returns the family edge kind.
func (r Relationship) Kind() family.Kind { return family.Kind(r) }

// MarshalJSON always writes the numeric code.
func (r Relationship) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(r))), nil
}

// UnmarshalJSON accepts a number or a label.
func (r *Relationship) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var label string
		if err := json.Unmarshal(data, &label); err != nil {
			return err
		}
		return r.parse(label)
	}
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("relationship: %w", err)
	}
	*r = Relationship(code)
	return nil
}

// UnmarshalYAML accepts a number or a label.
func (r *Relationship) UnmarshalYAML(value *yaml.Node) error {
	var code int
	if err := value.Decode(&code); err == nil {
		*r = Relationship(code)
		return nil
	}
	var label string
	if err := value.Decode(&label); err != nil {
		return fmt.Errorf("relationship: %w", err)
	}
	return r.parse(label)
}

func (r *Relationship) parse(label string) error {
	if code, err := strconv.Atoi(label); err == nil {
		*r = Relationship(code)
		return nil
	}
	k, ok := family.ParseKind(label)
	if !ok {
		return fmt.Errorf("unknown relationship %q", label)
	}
	*r = Relationship(k)
	return nil
}

// =============================================================================
// Snapshot ↔ family Conversion
// =============================================================================

// FromFamily builds a Snapshot from core records.
func FromFamily(members []family.Member, edges []family.Edge) Snapshot {
	s := Snapshot{
		Persons: make([]Person, len(members)),
		Edges:   make([]Edge, len(edges)),
	}
	for i, m := range members {
		s.Persons[i] = Person{MID: m.ID, Name: m.Name, Gender: m.Gender.Code(), Age: m.Age}
	}
	for i, e := range edges {
		s.Edges[i] = Edge{From: e.From, To: e.To, Relationship: Relationship(e.Kind)}
	}
	return s
}

// Members converts the persons to core member records in order.
func (s Snapshot) Members() []family.Member {
	out := make([]family.Member, len(s.Persons))
	for i, p := range s.Persons {
		out[i] = p.Member()
	}
	return out
}

// Member converts p to a core member record.
func (p Person) Member() family.Member {
	return family.Member{ID: p.MID, Name: p.Name, Gender: family.ParseGender(p.Gender), Age: p.Age}
}

// FamilyEdges converts every edge to a core edge in order. Kinds the core
// ignores are kept so that exports stay complete.
func (s Snapshot) FamilyEdges() []family.Edge {
	out := make([]family.Edge, len(s.Edges))
	for i, e := range s.Edges {
		out[i] = family.Edge{From: e.From, To: e.To, Kind: e.Relationship.Kind()}
	}
	return out
}

// Validate checks record shapes and member IDs. Dangling or empty edge
// endpoints are not an error; the core drops those edges. The pipeline logs
// a failed check and lays out the snapshot anyway.
func (s Snapshot) Validate() error {
	if err := errors.ValidateStructCode(errors.ErrCodeInvalidMember, s); err != nil {
		return err
	}
	for _, p := range s.Persons {
		if err := errors.ValidateMemberID(p.MID); err != nil {
			return err
		}
	}
	return nil
}

// Hash returns a stable hex digest of the snapshot's canonical JSON
// encoding. Equal snapshots hash equally.
func (s Snapshot) Hash() string {
	data, _ := json.Marshal(s)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
