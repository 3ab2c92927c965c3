// Package skills reads the skill list out of skills.mul/skills.idx.
//
// Each record is |clickable:u8|name:cstring|.
package skills

import (
	"errors"
	"fmt"

	"github.com/rcarmo/uomul/internal/cstring"
	"github.com/rcarmo/uomul/internal/mul"
)

// ErrEmptyRecord is returned for a skill record with no bytes.
var ErrEmptyRecord = errors.New("skills: empty record")

// Skill is one entry of the skills menu.
type Skill struct {
	Clickable bool
	Name      string
}

// Encode returns the record bytes for the skill.
func (s Skill) Encode() []byte {
	var flag byte
	if s.Clickable {
		flag = 1
	}
	return append([]byte{flag}, cstring.Terminated(s.Name)...)
}

// Decode parses one skill record.
func Decode(data []byte) (Skill, error) {
	if len(data) == 0 {
		return Skill{}, ErrEmptyRecord
	}
	return Skill{
		Clickable: data[0] == 1,
		Name:      cstring.CString(data[1:]).String(),
	}, nil
}

// ReadAll reads skills from id 0 until the first absent record or the end of
// the index.
func ReadAll(r *mul.Reader) ([]Skill, error) {
	n, err := r.Len()
	if err != nil {
		return nil, err
	}

	var out []Skill
	for id := 0; id < n; id++ {
		rec, err := r.Read(uint32(id))
		if errors.Is(err, mul.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("skills: %w", err)
		}

		s, err := Decode(rec.Data)
		if err != nil {
			return nil, fmt.Errorf("skill %d: %w", id, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Open reads every skill from skills.idx and skills.mul.
func Open(idxPath, mulPath string) ([]Skill, error) {
	r, err := mul.Open(idxPath, mulPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadAll(r)
}

// WriteAll appends every skill to w.
func WriteAll(w *mul.Writer, skills []Skill) error {
	for i, s := range skills {
		if err := w.Append(s.Encode()); err != nil {
			return fmt.Errorf("skill %d: %w", i, err)
		}
	}
	return nil
}
