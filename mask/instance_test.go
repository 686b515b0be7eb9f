package mask_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entitymask/mask"
	"entitymask/maskspec"
	"entitymask/resolve"
	"entitymask/store"
)

func newRegistry(t *testing.T) *maskspec.Registry {
	t.Helper()

	reg := maskspec.NewRegistry()

	require.NoError(t, reg.Register(store.User{}, &maskspec.Spec{
		Name: "Api",
		Fields: map[string]*maskspec.FieldRule{
			"PasswordHash": {Hidden: true},
			"IsActive": {
				Rename:    "State",
				Converter: store.StateConverter{},
				TagRules:  []maskspec.TagRule{maskspec.SetTag("json", "state")},
			},
		},
	}))

	require.NoError(t, reg.Register(store.Project{}, &maskspec.Spec{
		Name: "Simple",
		Fields: map[string]*maskspec.FieldRule{
			"Description": {Hidden: true},
			"Owner":       {Hidden: true},
			"Users":       {Hidden: true},
			"PlanedEnd":   {Rename: "End"},
		},
	}))

	require.NoError(t, reg.Register(store.Project{}, &maskspec.Spec{
		Name:        "Api",
		DeepMapping: true,
		Fields: map[string]*maskspec.FieldRule{
			"Description": {Hidden: true},
		},
	}))

	return reg
}

func newMaterializer(t *testing.T, opts ...mask.Option) *mask.Materializer {
	t.Helper()
	return mask.New(resolve.New(newRegistry(t)), opts...)
}

func sampleProject() *store.Project {
	return &store.Project{
		ID:          7,
		Title:       "Rollout",
		Description: "internal notes",
		Owner: &store.User{
			ID: 1, Name: "Ada", PasswordHash: "h1",
			Email: "ada@example.com", IsActive: true,
		},
		Users: []store.User{
			{ID: 2, Name: "Grace", PasswordHash: "h2", Email: "grace@example.com", IsActive: true},
			{ID: 3, Name: "Alan", PasswordHash: "h3", Email: "alan@example.com", IsActive: false},
		},
		Start:     time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
		PlanedEnd: time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestProjectRequiresEntityPointer(t *testing.T) {
	m := newMaterializer(t)

	_, err := m.Project(store.Project{}, "Simple")
	assert.Error(t, err)

	_, err = m.Project((*store.Project)(nil), "Simple")
	assert.Error(t, err)

	_, err = m.Project(nil, "Simple")
	assert.Error(t, err)
}

func TestSimpleMaskShapeAndSnapshot(t *testing.T) {
	m := newMaterializer(t)
	project := sampleProject()

	view, err := m.Project(project, "Simple")
	require.NoError(t, err)

	assert.Equal(t, "Simple", view.Name())
	assert.Equal(t, "ProjectSimple", view.TargetName())
	assert.Equal(t, []string{"ID", "Title", "Start", "End"}, view.Fields())

	snapshot, err := view.AsMap()
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"ID":    int64(7),
		"Title": "Rollout",
		"Start": project.Start,
		"End":   project.PlanedEnd,
	}, snapshot)
}

func TestMaskReadsAreLive(t *testing.T) {
	m := newMaterializer(t)
	project := sampleProject()

	view, err := m.Project(project, "Simple")
	require.NoError(t, err)

	project.Title = "Rollout v2"

	got, err := view.Get("Title")
	require.NoError(t, err)
	assert.Equal(t, "Rollout v2", got)
}

func TestGetUnknownField(t *testing.T) {
	m := newMaterializer(t)

	view, err := m.Project(sampleProject(), "Simple")
	require.NoError(t, err)

	_, err = view.Get("Description")

	var unsupported *resolve.UnsupportedOperationError
	assert.ErrorAs(t, err, &unsupported)
}

func TestConvertedFieldReadAndWrite(t *testing.T) {
	m := newMaterializer(t)
	user := &store.User{ID: 1, Name: "Ada", IsActive: true}

	view, err := m.Project(user, "Api")
	require.NoError(t, err)

	state, err := view.Get("State")
	require.NoError(t, err)
	assert.Equal(t, "active", state)

	require.NoError(t, view.Set("State", "inactive"))
	assert.False(t, user.IsActive)

	state, err = view.Get("State")
	require.NoError(t, err)
	assert.Equal(t, "inactive", state)
}

func TestSetWritesThrough(t *testing.T) {
	m := newMaterializer(t)
	project := sampleProject()

	view, err := m.Project(project, "Simple")
	require.NoError(t, err)

	require.NoError(t, view.Set("Title", "Renamed"))
	assert.Equal(t, "Renamed", project.Title)

	end := time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, view.Set("End", end))
	assert.Equal(t, end, project.PlanedEnd)
}

func TestSetRejectsWrongType(t *testing.T) {
	m := newMaterializer(t)

	view, err := m.Project(sampleProject(), "Simple")
	require.NoError(t, err)

	assert.ErrorContains(t, view.Set("Title", 42), "cannot assign")
}

func TestTransformedFieldIsForwardOnly(t *testing.T) {
	reg := newRegistry(t)
	require.NoError(t, reg.Register(store.User{}, &maskspec.Spec{
		Name: "Audit",
		Fields: map[string]*maskspec.FieldRule{
			"PasswordHash": {Hidden: true},
			"Email": {
				Transformer: func(s string) int { return len(s) },
			},
		},
	}))

	m := mask.New(resolve.New(reg))
	user := &store.User{Email: "ada@example.com"}

	view, err := m.Project(user, "Audit")
	require.NoError(t, err)

	got, err := view.Get("Email")
	require.NoError(t, err)
	assert.Equal(t, len("ada@example.com"), got)

	err = view.Set("Email", 3)

	var unsupported *resolve.UnsupportedOperationError
	require.ErrorAs(t, err, &unsupported)
	assert.Contains(t, unsupported.Reason, "forward-only")
	assert.Equal(t, "ada@example.com", user.Email)
}

func TestDeepSingleRead(t *testing.T) {
	m := newMaterializer(t)
	project := sampleProject()

	view, err := m.Project(project, "Api")
	require.NoError(t, err)

	got, err := view.Get("Owner")
	require.NoError(t, err)

	owner, ok := got.(*mask.Mask)
	require.True(t, ok)
	assert.Equal(t, "Api", owner.Name())

	// The nested mask is a live view over the same User instance.
	assert.Same(t, project.Owner, owner.Entity())

	project.Owner.Name = "Ada L."

	name, err := owner.Get("Name")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", name)

	state, err := owner.Get("State")
	require.NoError(t, err)
	assert.Equal(t, "active", state)
}

func TestDeepSingleReadAbsent(t *testing.T) {
	m := newMaterializer(t)
	project := sampleProject()
	project.Owner = nil

	view, err := m.Project(project, "Api")
	require.NoError(t, err)

	got, err := view.Get("Owner")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeepSingleWrite(t *testing.T) {
	m := newMaterializer(t)
	project := sampleProject()

	view, err := m.Project(project, "Api")
	require.NoError(t, err)

	// nil clears a nullable reference.
	require.NoError(t, view.Set("Owner", nil))
	assert.Nil(t, project.Owner)

	// A raw entity pointer is adopted directly.
	replacement := &store.User{ID: 9, Name: "Lin"}
	require.NoError(t, view.Set("Owner", replacement))
	assert.Same(t, replacement, project.Owner)

	// A live mask unwraps to its backing reference, zero-copy.
	other := &store.User{ID: 10, Name: "Mo"}
	otherView, err := m.Project(other, "Api")
	require.NoError(t, err)

	require.NoError(t, view.Set("Owner", otherView))
	assert.Same(t, other, project.Owner)
}

func TestDeepSingleWriteRejectsForeignMask(t *testing.T) {
	m := newMaterializer(t)
	project := sampleProject()

	view, err := m.Project(project, "Api")
	require.NoError(t, err)

	wrong, err := m.Project(sampleProject(), "Simple")
	require.NoError(t, err)

	assert.ErrorContains(t, view.Set("Owner", wrong), "cannot back field")
}

func TestEntityUnwrapsZeroCopy(t *testing.T) {
	m := newMaterializer(t)
	project := sampleProject()

	view, err := m.Project(project, "Simple")
	require.NoError(t, err)

	assert.Same(t, project, view.Entity())
}
