package store_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entitymask/mask"
	"entitymask/maskspec"
	"entitymask/query"
	"entitymask/resolve"
	"entitymask/store"
)

// The project-tracker walkthrough: one entity graph, two masks per entity,
// declared in YAML, exercised end to end over live views, write-back and
// query emission.
const trackerDecls = `
version: "1"
masks:
  - entity: User
    name: Api
    fields:
      PasswordHash:
        hide: true
      IsActive:
        rename: State
        convert: state
        tags:
          - op: set
            key: json
            value: state
  - entity: Project
    name: Simple
    fields:
      Description:
        hide: true
      Owner:
        hide: true
      Users:
        hide: true
      PlanedEnd:
        rename: End
  - entity: Project
    name: Api
    deep: true
`

func trackerMaterializer(t *testing.T) *mask.Materializer {
	t.Helper()

	sf, err := maskspec.Parse([]byte(trackerDecls))
	require.NoError(t, err)

	bindings := maskspec.NewBindingTable()
	bindings.RegisterConverter("state", store.StateConverter{})

	reg := maskspec.NewRegistry()
	require.NoError(t, reg.BindEntity(store.User{}))
	require.NoError(t, reg.BindEntity(store.Project{}))

	diags := maskspec.Validate(sf, reg, bindings)
	require.NoError(t, diags.Error())
	assert.Empty(t, diags.Warnings)

	require.NoError(t, maskspec.RegisterFile(sf, reg, bindings))

	return mask.New(resolve.New(reg))
}

func trackerProject() *store.Project {
	return &store.Project{
		ID:          1,
		Title:       "Launch",
		Description: "confidential",
		Owner: &store.User{
			ID: 10, Name: "Ada", PasswordHash: "secret-a",
			Email: "ada@example.com", IsActive: true,
		},
		Users: []store.User{
			{ID: 11, Name: "Grace", PasswordHash: "secret-g", Email: "grace@example.com", IsActive: true},
			{ID: 12, Name: "Alan", PasswordHash: "secret-l", Email: "alan@example.com", IsActive: false},
		},
		Start:     time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		PlanedEnd: time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestTrackerScenario(t *testing.T) {
	m := trackerMaterializer(t)
	project := trackerProject()

	// The Simple mask exposes the flat summary shape.
	simple, err := m.Project(project, "Simple")
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Title", "Start", "End"}, simple.Fields())

	snapshot, err := simple.AsMap()
	require.NoError(t, err)
	assert.NotContains(t, snapshot, "Description")
	assert.Equal(t, project.PlanedEnd, snapshot["End"])

	// The Api mask projects the graph: owner state converted, member
	// collection lazy, password hashes unreachable.
	api, err := m.Project(project, "Api")
	require.NoError(t, err)

	ownerAny, err := api.Get("Owner")
	require.NoError(t, err)
	owner := ownerAny.(*mask.Mask)

	state, err := owner.Get("State")
	require.NoError(t, err)
	assert.Equal(t, "active", state)

	_, err = owner.Get("PasswordHash")
	assert.Error(t, err)

	usersAny, err := api.Get("Users")
	require.NoError(t, err)
	users := usersAny.(*mask.Proxy)
	assert.Equal(t, 2, users.Len())

	// Edits through the view land on the entities.
	require.NoError(t, owner.Set("State", "inactive"))
	assert.False(t, project.Owner.IsActive)

	second, err := users.At(1)
	require.NoError(t, err)
	require.NoError(t, second.Set("Email", "alan@tracker.dev"))
	assert.Equal(t, "alan@tracker.dev", project.Users[1].Email)

	// The deep mask keeps Description; hidden fields never serialize.
	data, err := json.Marshal(api)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), "confidential")
	assert.Contains(t, string(data), "alan@tracker.dev")
}

func TestTrackerWriteBack(t *testing.T) {
	m := trackerMaterializer(t)
	edited := trackerProject()
	edited.Title = "Launch v2"

	view, err := m.Project(edited, "Api")
	require.NoError(t, err)

	stored := trackerProject()
	stored.Owner.PasswordHash = "stored-hash"

	require.NoError(t, view.ApplyChangesTo(stored))

	assert.Equal(t, "Launch v2", stored.Title)
	assert.Equal(t, "stored-hash", stored.Owner.PasswordHash)
	assert.Equal(t, "secret-g", stored.Users[0].PasswordHash)
}

func TestTrackerQueryEmission(t *testing.T) {
	m := trackerMaterializer(t)
	r := m.Resolver()

	simplePlan, err := r.ResolveFor(store.Project{}, "Simple")
	require.NoError(t, err)

	exprs := query.EmitSlim(simplePlan)
	cols := query.Columns(simplePlan, exprs, "db")
	assert.Equal(t, []string{"id", "title", "start", "planed_end"}, cols)

	apiPlan, err := r.ResolveFor(store.Project{}, "Api")
	require.NoError(t, err)

	full, paths, err := query.EmitFull(r, apiPlan)
	require.NoError(t, err)
	assert.Equal(t, []string{"Owner"}, paths)

	var fields []string
	for _, e := range full {
		fields = append(fields, e.Field)
	}

	assert.Contains(t, fields, "Owner.Email")
	assert.NotContains(t, fields, "Owner.State")
}
