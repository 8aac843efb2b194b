package lk

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
	"github.com/lk-schedule/schedule-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LESSONS API DTO
// ══════════════════════════════════════════════════════════════════════════════

// LessonDTO is one element of the /api/common/distancelearning response.
// Fields are pointers so that an absent field can be told apart from an
// empty one. The API sends more fields; only these four are read.
type LessonDTO struct {
	Title       *string `json:"title"`
	Start       *string `json:"start"`
	End         *string `json:"end"`
	Description *string `json:"description"`
}

// ToRecord converts the DTO into a raw record, failing on the first absent field.
func (d LessonDTO) ToRecord() (lesson.RawRecord, error) {
	fields := []struct {
		name  string
		value *string
	}{
		{"title", d.Title},
		{"start", d.Start},
		{"end", d.End},
		{"description", d.Description},
	}
	for _, f := range fields {
		if f.value == nil {
			return lesson.RawRecord{}, fmt.Errorf("field %q is missing", f.name)
		}
	}

	return lesson.RawRecord{
		Title:       *d.Title,
		Start:       *d.Start,
		End:         *d.End,
		Description: *d.Description,
	}, nil
}

// DecodeLessons reads a JSON array of lesson objects.
// The same format is accepted from the API and from exported files.
func DecodeLessons(r io.Reader) ([]lesson.RawRecord, error) {
	var dtos []LessonDTO
	if err := json.NewDecoder(r).Decode(&dtos); err != nil {
		return nil, shared.WrapError("lk", "DecodeLessons", shared.ErrInvalidFormat, "lessons payload is not a JSON array of objects", err)
	}

	records := make([]lesson.RawRecord, 0, len(dtos))
	for i, dto := range dtos {
		rec, err := dto.ToRecord()
		if err != nil {
			return nil, shared.WrapError("lk", "DecodeLessons", shared.ErrInvalidInput, fmt.Sprintf("record %d", i), err)
		}
		records = append(records, rec)
	}

	return records, nil
}
