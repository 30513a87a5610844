package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxtrail/planner/internal/clock"
	"github.com/foxtrail/planner/internal/model"
)

var baseTime = time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(t *testing.T, path string, clk clock.Clock) *Store {
	t.Helper()
	s := New(path, WithClock(clk), WithIDGenerator(sequentialIDs()))
	require.NoError(t, s.Init())
	return s
}

// emptyStore returns an initialized store whose document starts out empty.
func emptyStore(t *testing.T) (*Store, *clock.Fake, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "itineraries.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	clk := clock.NewFake(baseTime)
	return newTestStore(t, path, clk), clk, path
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestInit_SeedsMissingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "itineraries.json")
	s := newTestStore(t, path, clock.NewFake(baseTime))

	assert.True(t, s.Loaded())
	_, err := os.Stat(path)
	require.NoError(t, err, "seed should be written to disk")

	list := s.List()
	require.Len(t, list, 1)

	seed := list[0]
	assert.Equal(t, "Kyoto Culture & Study Retreat", seed.Title)
	assert.Equal(t, model.ItineraryTypeTrip, seed.Type)
	assert.Equal(t, "Kyoto, Japan", seed.Destination)
	assert.True(t, seed.AIGenerated)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), seed.StartDate)
	assert.Equal(t, time.Date(2024, 5, 17, 23, 59, 59, int(999*time.Millisecond), time.UTC), seed.EndDate)
	assert.Equal(t, []string{"culture", "food"}, seed.Preferences.Focus())
	assert.Equal(t, baseTime, seed.CreatedAt)
	assert.Equal(t, seed.CreatedAt, seed.UpdatedAt)

	require.Len(t, seed.Items, 3)
	assert.Equal(t, "Kiyomizu-dera Temple visit", seed.Items[0].Name)
	assert.Equal(t, model.TravelModePublicTransit, seed.Items[0].TravelMode)
	assert.Equal(t, time.Date(2024, 5, 13, 9, 0, 0, 0, time.UTC), *seed.Items[0].StartTime)
	assert.Equal(t, time.Date(2024, 5, 13, 20, 0, 0, 0, time.UTC), *seed.Items[2].EndTime)
	for _, item := range seed.Items {
		require.NotNil(t, item.Day)
		assert.Equal(t, 1, *item.Day)
		assert.NotEmpty(t, item.ID)
	}
}

func TestInit_DoesNotReseedExistingDocument(t *testing.T) {
	s, _, path := emptyStore(t)
	assert.Empty(t, s.List())

	reopened := newTestStore(t, path, clock.NewFake(baseTime))
	assert.Empty(t, reopened.List())
}

func TestInit_MalformedDocument(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "this is not json"},
		{"wrong shape", `{"id":"x"}`},
		{"entry without id", `[{"title":"orphan"}]`},
		{"null entry", `[null]`},
		{"bad timestamp", `[{"id":"a","startDate":"yesterday"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "itineraries.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			s := New(path)
			err := s.Init()
			require.ErrorIs(t, err, ErrMalformedState)
			assert.False(t, s.Loaded())

			data, readErr := os.ReadFile(path)
			require.NoError(t, readErr)
			assert.Equal(t, tt.content, string(data), "a malformed document must not be overwritten")
		})
	}
}

func TestInit_FillsMissingCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "itineraries.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"legacy","title":"Old"}]`), 0o644))

	s := newTestStore(t, path, clock.NewFake(baseTime))
	it, err := s.Get("legacy")
	require.NoError(t, err)
	assert.NotNil(t, it.Items)
	assert.NotNil(t, it.Collaborators)
	assert.NotNil(t, it.Preferences)
}

func TestCreate_AppliesDefaults(t *testing.T) {
	s, _, _ := emptyStore(t)

	it, err := s.Create(model.CreateItineraryRequest{})
	require.NoError(t, err)

	assert.NotEmpty(t, it.ID)
	assert.Equal(t, model.DefaultItineraryTitle, it.Title)
	assert.Equal(t, model.ItineraryTypeCustom, it.Type)
	assert.Equal(t, baseTime, it.StartDate)
	assert.Equal(t, baseTime, it.EndDate)
	assert.Equal(t, baseTime, it.CreatedAt)
	assert.Equal(t, it.CreatedAt, it.UpdatedAt)
	assert.NotNil(t, it.Items)
	assert.Empty(t, it.Items)
	assert.NotNil(t, it.Collaborators)
	assert.NotNil(t, it.Preferences)
	assert.False(t, it.AIGenerated)
}

func TestCreate_KeepsProvidedFields(t *testing.T) {
	s, _, _ := emptyStore(t)
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.FixedZone("JST", 9*3600))

	it, err := s.Create(model.CreateItineraryRequest{
		Title:         "Lisbon",
		Type:          model.ItineraryTypeTrip,
		Destination:   "Lisbon, Portugal",
		StartDate:     &start,
		Collaborators: []string{"ana@example.com"},
		Preferences:   model.Preferences{model.PrefBudget: model.StringValue("low")},
		AIGenerated:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Lisbon", it.Title)
	assert.Equal(t, model.ItineraryTypeTrip, it.Type)
	assert.Equal(t, start.UTC(), it.StartDate)
	assert.Equal(t, time.UTC, it.StartDate.Location())
	assert.Equal(t, baseTime, it.EndDate)
	assert.Equal(t, []string{"ana@example.com"}, it.Collaborators)
	assert.True(t, it.AIGenerated)
}

func TestCreate_InvalidTypeFallsBackToCustom(t *testing.T) {
	s, _, _ := emptyStore(t)

	it, err := s.Create(model.CreateItineraryRequest{Type: "cruise"})
	require.NoError(t, err)
	assert.Equal(t, model.ItineraryTypeCustom, it.Type)
}

func TestGet_ReturnsCopy(t *testing.T) {
	s, _, _ := emptyStore(t)
	created, err := s.Create(model.CreateItineraryRequest{Title: "Original"})
	require.NoError(t, err)

	got, err := s.Get(created.ID)
	require.NoError(t, err)
	got.Title = "Mutated"

	again, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Title)
}

func TestGet_NotFound(t *testing.T) {
	s, _, _ := emptyStore(t)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_MergesPatch(t *testing.T) {
	s, clk, _ := emptyStore(t)
	created, err := s.Create(model.CreateItineraryRequest{
		Title:       "Before",
		Destination: "Osaka",
		Preferences: model.Preferences{model.PrefBudget: model.StringValue("high")},
	})
	require.NoError(t, err)

	clk.Advance(time.Minute)
	updated, err := s.Update(created.ID, model.UpdateItineraryRequest{
		Title:       strPtr("After"),
		Preferences: model.Preferences{model.PrefFocus: model.ListValue([]string{"food"})},
	})
	require.NoError(t, err)

	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, "Osaka", updated.Destination, "absent fields stay untouched")
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, baseTime.Add(time.Minute), updated.UpdatedAt)

	_, hasBudget := updated.Preferences[model.PrefBudget]
	assert.False(t, hasBudget, "preferences are replaced wholesale")
	assert.Equal(t, []string{"food"}, updated.Preferences.Focus())
}

func TestUpdate_UpdatedAtStrictlyIncreases(t *testing.T) {
	s, _, _ := emptyStore(t)
	created, err := s.Create(model.CreateItineraryRequest{})
	require.NoError(t, err)

	// The fake clock never moves here.
	first, err := s.Update(created.ID, model.UpdateItineraryRequest{Title: strPtr("one")})
	require.NoError(t, err)
	second, err := s.Update(created.ID, model.UpdateItineraryRequest{Title: strPtr("two")})
	require.NoError(t, err)

	assert.True(t, first.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestUpdate_NotFound(t *testing.T) {
	s, _, _ := emptyStore(t)

	_, err := s.Update("missing", model.UpdateItineraryRequest{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemove_CascadesItems(t *testing.T) {
	s, _, path := emptyStore(t)
	it, err := s.Create(model.CreateItineraryRequest{Title: "Doomed"})
	require.NoError(t, err)
	item, err := s.AddItem(it.ID, model.CreateActivityRequest{Name: "Walk"})
	require.NoError(t, err)

	removed, err := s.Remove(it.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = s.Get(it.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateItem(it.ID, item.ID, model.UpdateActivityRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err = s.Remove(it.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	reopened := newTestStore(t, path, clock.NewFake(baseTime))
	assert.Empty(t, reopened.List())
}

func TestAddItem_AppliesDefaults(t *testing.T) {
	s, clk, _ := emptyStore(t)
	it, err := s.Create(model.CreateItineraryRequest{})
	require.NoError(t, err)

	clk.Advance(time.Second)
	item, err := s.AddItem(it.ID, model.CreateActivityRequest{
		Category:   "shopping",
		TravelMode: "teleport",
		Day:        intPtr(0),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, model.DefaultActivityName, item.Name)
	assert.Equal(t, model.CategoryGeneral, item.Category)
	assert.Equal(t, model.TravelModeWalk, item.TravelMode)
	assert.Nil(t, item.Day, "non-positive days are dropped")
	assert.Nil(t, item.Sequence)

	got, err := s.Get(it.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, item.ID, got.Items[0].ID)
	assert.Equal(t, baseTime.Add(time.Second), got.UpdatedAt)
}

func TestAddItem_AppendsInOrder(t *testing.T) {
	s, _, _ := emptyStore(t)
	it, err := s.Create(model.CreateItineraryRequest{})
	require.NoError(t, err)

	for _, name := range []string{"first", "second", "third"} {
		_, err := s.AddItem(it.ID, model.CreateActivityRequest{Name: name})
		require.NoError(t, err)
	}

	got, err := s.Get(it.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, "first", got.Items[0].Name)
	assert.Equal(t, "second", got.Items[1].Name)
	assert.Equal(t, "third", got.Items[2].Name)
}

func TestAddItem_NotFound(t *testing.T) {
	s, _, _ := emptyStore(t)

	_, err := s.AddItem("missing", model.CreateActivityRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateItem_MergesPatch(t *testing.T) {
	s, _, _ := emptyStore(t)
	it, err := s.Create(model.CreateItineraryRequest{})
	require.NoError(t, err)
	start := time.Date(2024, 5, 11, 10, 0, 0, 0, time.UTC)
	item, err := s.AddItem(it.ID, model.CreateActivityRequest{
		Name:      "Museum",
		Location:  "Downtown",
		StartTime: &start,
	})
	require.NoError(t, err)

	later := start.Add(2 * time.Hour)
	updated, err := s.UpdateItem(it.ID, item.ID, model.UpdateActivityRequest{
		EndTime:  &later,
		Notes:    strPtr("bring ticket"),
		Sequence: intPtr(4),
	})
	require.NoError(t, err)

	assert.Equal(t, item.ID, updated.ID)
	assert.Equal(t, "Museum", updated.Name)
	assert.Equal(t, "Downtown", updated.Location)
	assert.Equal(t, start, *updated.StartTime)
	assert.Equal(t, later, *updated.EndTime)
	assert.Equal(t, "bring ticket", updated.Notes)
	require.NotNil(t, updated.Sequence)
	assert.Equal(t, 4, *updated.Sequence)
}

func TestUpdateItem_NotFound(t *testing.T) {
	s, _, _ := emptyStore(t)
	it, err := s.Create(model.CreateItineraryRequest{})
	require.NoError(t, err)

	_, err = s.UpdateItem(it.ID, "missing", model.UpdateActivityRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateItem("missing", "missing", model.UpdateActivityRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveItem(t *testing.T) {
	s, _, _ := emptyStore(t)
	it, err := s.Create(model.CreateItineraryRequest{})
	require.NoError(t, err)
	keep, err := s.AddItem(it.ID, model.CreateActivityRequest{Name: "keep"})
	require.NoError(t, err)
	drop, err := s.AddItem(it.ID, model.CreateActivityRequest{Name: "drop"})
	require.NoError(t, err)

	removed, err := s.RemoveItem(it.ID, drop.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	got, err := s.Get(it.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, keep.ID, got.Items[0].ID)

	removed, err = s.RemoveItem(it.ID, drop.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = s.RemoveItem("missing", keep.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestReplaceItems_AssignsMissingAndDuplicateIDs(t *testing.T) {
	s, _, _ := emptyStore(t)
	it, err := s.Create(model.CreateItineraryRequest{})
	require.NoError(t, err)

	items, err := s.ReplaceItems(it.ID, []model.Activity{
		{ID: "keep", Name: "a"},
		{Name: "b"},
		{ID: "keep", Name: "c"},
		{ID: "other", Name: ""},
	})
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, "keep", items[0].ID)
	assert.NotEmpty(t, items[1].ID)
	assert.NotEqual(t, "keep", items[2].ID)
	assert.Equal(t, "other", items[3].ID)
	assert.Equal(t, model.DefaultActivityName, items[3].Name)

	seen := map[string]bool{}
	for _, item := range items {
		assert.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true
		assert.Equal(t, model.CategoryGeneral, item.Category)
		assert.Equal(t, model.TravelModeWalk, item.TravelMode)
	}
}

func TestReplaceItems_NotFound(t *testing.T) {
	s, _, _ := emptyStore(t)

	_, err := s.ReplaceItems("missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReorderItems(t *testing.T) {
	s, clk, path := emptyStore(t)
	it, err := s.Create(model.CreateItineraryRequest{})
	require.NoError(t, err)
	_, err = s.AddItem(it.ID, model.CreateActivityRequest{Name: "first"})
	require.NoError(t, err)
	_, err = s.AddItem(it.ID, model.CreateActivityRequest{Name: "second"})
	require.NoError(t, err)
	clk.Advance(time.Second)

	var seen []string
	reordered, err := s.ReorderItems(it.ID, func(items []model.Activity) []model.Activity {
		for _, item := range items {
			seen = append(seen, item.Name)
		}
		return []model.Activity{items[1], items[0]}
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, seen)
	require.Len(t, reordered.Items, 2)
	assert.Equal(t, "second", reordered.Items[0].Name)
	assert.Equal(t, baseTime.Add(time.Second), reordered.UpdatedAt)

	reloaded := newTestStore(t, path, clk)
	stored, err := reloaded.Get(it.ID)
	require.NoError(t, err)
	assert.Equal(t, reordered.Items, stored.Items)
}

func TestReorderItems_NotFound(t *testing.T) {
	s, _, _ := emptyStore(t)

	called := false
	_, err := s.ReorderItems("missing", func(items []model.Activity) []model.Activity {
		called = true
		return items
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, called)
}

func TestReorderItems_KeepsConcurrentAdds(t *testing.T) {
	s, _, _ := emptyStore(t)
	it, err := s.Create(model.CreateItineraryRequest{})
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := s.AddItem(it.ID, model.CreateActivityRequest{Name: fmt.Sprintf("item-%02d", i)})
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			_, err := s.ReorderItems(it.ID, func(items []model.Activity) []model.Activity {
				for l, r := 0, len(items)-1; l < r; l, r = l+1, r-1 {
					items[l], items[r] = items[r], items[l]
				}
				return items
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := s.Get(it.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, writers)
}

func TestPersistence_RoundTrip(t *testing.T) {
	s, clk, path := emptyStore(t)

	start := time.Date(2024, 7, 1, 9, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	it, err := s.Create(model.CreateItineraryRequest{
		Title:         "Alps",
		Type:          model.ItineraryTypeTrip,
		Collaborators: []string{"a", "b"},
		Preferences: model.Preferences{
			model.PrefFocus:  model.ListValue([]string{"nature"}),
			model.PrefBudget: model.StringValue("moderate"),
			"maxWalkKm":      model.NumberValue(12.5),
		},
	})
	require.NoError(t, err)
	clk.Advance(time.Millisecond)
	_, err = s.AddItem(it.ID, model.CreateActivityRequest{Name: "Hike", Day: intPtr(2), StartTime: timePtr(start)})
	require.NoError(t, err)
	_, err = s.AddItem(it.ID, model.CreateActivityRequest{Name: "Rest"})
	require.NoError(t, err)
	_, err = s.Create(model.CreateItineraryRequest{Title: "Second"})
	require.NoError(t, err)

	before, err := json.Marshal(s.List())
	require.NoError(t, err)

	reopened := newTestStore(t, path, clock.NewFake(baseTime))
	after, err := json.Marshal(reopened.List())
	require.NoError(t, err)

	assert.JSONEq(t, string(before), string(after))
}

func TestPersistence_DocumentIsIndentedJSONArray(t *testing.T) {
	s, _, path := emptyStore(t)
	_, err := s.Create(model.CreateItineraryRequest{Title: "Pretty"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[\n  {\n    \"id\":")

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "Pretty", raw[0]["title"])
	assert.Contains(t, raw[0], "createdAt")
	assert.Contains(t, raw[0], "aiGenerated")
}

func TestPersistence_NoTempFilesLeftBehind(t *testing.T) {
	s, _, path := emptyStore(t)
	for i := 0; i < 3; i++ {
		_, err := s.Create(model.CreateItineraryRequest{})
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "itineraries.json", entries[0].Name())
}

func TestInit_UnwritableLocation(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file, not a directory"), 0o644))

	s := New(filepath.Join(blocker, "itineraries.json"))
	err := s.Init()
	assert.ErrorIs(t, err, ErrPersist)
	assert.False(t, s.Loaded())
}

func TestWriteFileAtomic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	path := filepath.Join(dir, "itineraries.json")

	require.NoError(t, writeFileAtomic(path, []byte("[]"), 0o640))
	require.NoError(t, writeFileAtomic(path, []byte(`[{"id":"a"}]`), 0o640))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestSyncDir(t *testing.T) {
	assert.NoError(t, syncDir(t.TempDir()))
	assert.Error(t, syncDir(filepath.Join(t.TempDir(), "missing")))
}
