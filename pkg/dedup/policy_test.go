package dedup

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/skusweep/internal/utils/ptr"
	"github.com/agentstation/skusweep/pkg/catalog"
)

func at(year int, month time.Month, day int) *utc.Time {
	return ptr.To(utc.New(time.Date(year, month, day, 0, 0, 0, 0, time.UTC)))
}

func rec(id string, state catalog.LifecycleState, complete bool, published *utc.Time) catalog.Record {
	r := catalog.Record{ID: id, IdentifierValue: "SKU", State: state, PublishedAt: published}
	if complete {
		r.Title = "Title " + id
		r.Description = "Description " + id
		r.VariantCount = 1
	}
	return r
}

func TestSelectCanonical(t *testing.T) {
	tests := []struct {
		name       string
		records    []catalog.Record
		wantID     string
		wantReason Reason
	}{
		{
			name: "active complete beats earlier active",
			records: []catalog.Record{
				rec("1", catalog.StateDraft, true, at(2024, 1, 1)),
				rec("2", catalog.StateActive, false, nil),
				rec("3", catalog.StateActive, true, nil),
				rec("4", catalog.StateActive, true, nil),
			},
			wantID:     "3",
			wantReason: ReasonActiveComplete,
		},
		{
			name: "first active when none complete",
			records: []catalog.Record{
				rec("1", catalog.StateDraft, true, at(2024, 6, 1)),
				rec("2", catalog.StateActive, false, nil),
				rec("3", catalog.StateActive, false, at(2025, 1, 1)),
			},
			wantID:     "2",
			wantReason: ReasonActive,
		},
		{
			name: "latest published among inactive",
			records: []catalog.Record{
				rec("1", catalog.StateDraft, true, at(2023, 1, 1)),
				rec("2", catalog.StateArchived, false, at(2023, 9, 1)),
				rec("3", catalog.StateDraft, true, at(2023, 3, 1)),
			},
			wantID:     "2",
			wantReason: ReasonLatestPublished,
		},
		{
			name: "absent publish time ranks lowest",
			records: []catalog.Record{
				rec("1", catalog.StateDraft, true, nil),
				rec("2", catalog.StateDraft, true, at(2020, 1, 1)),
			},
			wantID:     "2",
			wantReason: ReasonLatestPublished,
		},
		{
			name: "equal publish times keep the first",
			records: []catalog.Record{
				rec("1", catalog.StateDraft, false, at(2023, 6, 1)),
				rec("2", catalog.StateDraft, true, at(2023, 6, 1)),
			},
			wantID:     "1",
			wantReason: ReasonLatestPublished,
		},
		{
			name: "identical records keep the first",
			records: []catalog.Record{
				rec("1", catalog.StateOther, false, nil),
				rec("2", catalog.StateOther, false, nil),
				rec("3", catalog.StateOther, false, nil),
			},
			wantID:     "1",
			wantReason: ReasonFirst,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, reason := SelectCanonical(tt.records)
			assert.Equal(t, tt.wantID, tt.records[idx].ID)
			assert.Equal(t, tt.wantReason, reason)
		})
	}

	t.Run("empty", func(t *testing.T) {
		idx, _ := SelectCanonical(nil)
		assert.Equal(t, -1, idx)
	})
}

func TestSelectCanonicalDeterministic(t *testing.T) {
	records := []catalog.Record{
		rec("1", catalog.StateDraft, true, at(2023, 6, 1)),
		rec("2", catalog.StateArchived, true, at(2023, 6, 1)),
		rec("3", catalog.StateDraft, false, at(2022, 6, 1)),
	}
	first, _ := SelectCanonical(records)
	for i := 0; i < 10; i++ {
		got, _ := SelectCanonical(records)
		assert.Equal(t, first, got)
	}
}

func TestActiveCompleteAlwaysKept(t *testing.T) {
	// Place the only ACTIVE+complete record at every position among noise.
	noise := []catalog.Record{
		rec("d1", catalog.StateDraft, true, at(2025, 1, 1)),
		rec("a1", catalog.StateActive, false, at(2025, 2, 1)),
		rec("x1", catalog.StateArchived, true, nil),
		rec("a2", catalog.StateActive, false, nil),
	}
	winner := rec("win", catalog.StateActive, true, at(2000, 1, 1))

	for pos := 0; pos <= len(noise); pos++ {
		group := append([]catalog.Record{}, noise[:pos]...)
		group = append(group, winner)
		group = append(group, noise[pos:]...)

		idx, reason := SelectCanonical(group)
		assert.Equal(t, "win", group[idx].ID, "position %d", pos)
		assert.Equal(t, ReasonActiveComplete, reason)
	}
}

func TestNewPlan(t *testing.T) {
	t.Run("singleton needs no plan", func(t *testing.T) {
		assert.Nil(t, NewPlan(Group{Identifier: "A", Records: []catalog.Record{rec("1", catalog.StateActive, true, nil)}}))
		assert.Nil(t, NewPlan(Group{Identifier: "A"}))
	})

	t.Run("scenario B", func(t *testing.T) {
		g := Group{Identifier: "C", Records: []catalog.Record{
			rec("c1", catalog.StateDraft, true, at(2023, 1, 1)),
			rec("c2", catalog.StateDraft, true, at(2023, 6, 1)),
			rec("c3", catalog.StateDraft, true, at(2023, 6, 1)),
		}}
		want := &Plan{
			Identifier: "C",
			Keep:       "c2",
			Drop:       []string{"c1", "c3"},
			GroupSize:  3,
			Reason:     ReasonLatestPublished,
		}
		got := NewPlan(g)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("NewPlan() mismatch (-want +got):\n%s", diff)
		}
		assert.NoError(t, got.Validate())
	})

	t.Run("plan shape", func(t *testing.T) {
		for n := 2; n <= 6; n++ {
			g := Group{Identifier: "S"}
			for i := 0; i < n; i++ {
				g.Records = append(g.Records, rec(string(rune('a'+i)), catalog.StateDraft, false, nil))
			}
			p := NewPlan(g)
			assert.Len(t, p.Drop, n-1)
			assert.NotContains(t, p.Drop, p.Keep)
			assert.NoError(t, p.Validate())
		}
	})
}

func TestPlanValidate(t *testing.T) {
	assert.Error(t, Plan{Keep: "", Drop: []string{"1"}, GroupSize: 2}.Validate())
	assert.Error(t, Plan{Keep: "1", Drop: []string{"2"}, GroupSize: 3}.Validate())
	assert.Error(t, Plan{Keep: "1", Drop: []string{"1"}, GroupSize: 2}.Validate())
	assert.NoError(t, Plan{Keep: "1", Drop: []string{"2"}, GroupSize: 2}.Validate())
}
