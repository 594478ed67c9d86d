package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/mocks"
)

func record(t *testing.T, js string) entities.Record {
	t.Helper()
	var rec entities.Record
	require.NoError(t, json.Unmarshal([]byte(js), &rec))
	return rec
}

func project(t *testing.T, js string) entities.Project {
	t.Helper()
	return entities.ProjectFromRecord(record(t, js))
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func testReconcileOptions() ReconcileOptions {
	return ReconcileOptions{
		StudioName:       "Posta Vermaas",
		PlaceholderImage: "/images/people/placeholder.jpg",
		NewID:            sequentialIDs(),
	}
}

func names(people []entities.Person) []string {
	out := make([]string, 0, len(people))
	for _, p := range people {
		out = append(out, p.Name)
	}
	return out
}

func TestParseSyncMode(t *testing.T) {
	mode, err := ParseSyncMode("people")
	require.NoError(t, err)
	assert.Equal(t, SyncPeople, mode)
	assert.Equal(t, entities.CollectionPeople, mode.Target())
	assert.Equal(t, "Collaborator", mode.RoleLabel())

	mode, err = ParseSyncMode("freelancers")
	require.NoError(t, err)
	assert.Equal(t, entities.CollectionFreelancers, mode.Target())
	assert.Equal(t, "Freelancer", mode.RoleLabel())

	_, err = ParseSyncMode("staff")
	assert.Error(t, err)
}

func TestReconcile_FreelancersModeSkipsKnownFreelancer(t *testing.T) {
	projects := []entities.Project{project(t, `{"id":"p1","credits":{"adr":["Bob","Carol"]}}`)}
	freelancers := []entities.Person{{ID: "f1", Name: "Bob"}}

	result := Reconcile(projects, nil, freelancers, SyncFreelancers, testReconcileOptions())

	require.Len(t, result.NewPeople, 1)
	carol := result.NewPeople[0]
	assert.Equal(t, "Carol", carol.Name)
	assert.Equal(t, "Freelancer", carol.Role)
	assert.Equal(t, []string{"Freelancer"}, carol.Roles)
	assert.Equal(t, "Freelancer on Posta Vermaas projects", carol.Bio)
	assert.Equal(t, "/images/people/placeholder.jpg", carol.Image)
	assert.Equal(t, 2, carol.Order)
	assert.Equal(t, "id-1", carol.ID)
	assert.False(t, carol.Featured)
	assert.Empty(t, carol.Email)
}

func TestReconcile_CaseAndWhitespaceVariantsCreateOnce(t *testing.T) {
	projects := []entities.Project{
		project(t, `{"id":"p1","credits":{"soundDesign":["Dana "]}}`),
		project(t, `{"id":"p2","credits":{"foley":["dana"]}}`),
	}

	result := Reconcile(projects, nil, nil, SyncPeople, testReconcileOptions())

	require.Len(t, result.NewPeople, 1)
	assert.Equal(t, "Dana", result.NewPeople[0].Name)
	assert.Equal(t, "Collaborator", result.NewPeople[0].Role)
	assert.Equal(t, 1, result.NewPeople[0].Order)
}

func TestReconcile_NeverDuplicatesKnownNames(t *testing.T) {
	projects := []entities.Project{
		project(t, `{"id":"p1","credits":{"soundDesign":["  ALICE  ", "bob"],"additionalRoles":{"Boom Op":["Carol"]}}}`),
	}
	people := []entities.Person{{ID: "1", Name: "Alice"}}
	freelancers := []entities.Person{{ID: "2", Name: "Bob"}, {ID: "3", Name: "carol "}}

	tests := []struct {
		name     string
		mode     SyncMode
		expected []string
	}{
		{name: "freelancers mode knows both collections", mode: SyncFreelancers, expected: nil},
		{name: "people mode knows only people", mode: SyncPeople, expected: []string{"bob", "Carol"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Reconcile(projects, people, freelancers, tt.mode, testReconcileOptions())
			if tt.expected == nil {
				assert.Empty(t, result.NewPeople)
				return
			}
			assert.Equal(t, tt.expected, names(result.NewPeople))
		})
	}
}

func TestReconcile_CompletenessIncludesAdditionalRoles(t *testing.T) {
	projects := []entities.Project{
		project(t, `{"id":"p1","credits":{"soundDesign":["A", "", "   "],"additionalRoles":{"Boom Op":["B"],"Runner":["C","A"]}}}`),
		project(t, `{"id":"p2","credits":{"mix":"not a list","adr":["D", 7]}}`),
		project(t, `{"id":"p3"}`),
		project(t, `{"id":"p4","credits":["E"]}`),
	}
	people := []entities.Person{{Name: "x"}, {Name: "y"}}

	result := Reconcile(projects, people, nil, SyncPeople, testReconcileOptions())

	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, names(result.NewPeople))
	for i, p := range result.NewPeople {
		assert.Equal(t, len(people)+i+1, p.Order)
	}
}

func TestReconcile_DeterministicOrder(t *testing.T) {
	projects := []entities.Project{
		project(t, `{"id":"p1","credits":{"soundDesign":["Zed"],"adr":["Amy"],"foley":["Mo"]}}`),
	}

	first := Reconcile(projects, nil, nil, SyncPeople, testReconcileOptions())
	second := Reconcile(projects, nil, nil, SyncPeople, testReconcileOptions())

	assert.Equal(t, []string{"Amy", "Mo", "Zed"}, names(first.NewPeople))
	assert.Equal(t, names(first.NewPeople), names(second.NewPeople))
}

func TestReconcile_DefaultIDsAreUnique(t *testing.T) {
	projects := []entities.Project{project(t, `{"id":"p1","credits":{"adr":["A","B","C"]}}`)}

	result := Reconcile(projects, nil, nil, SyncPeople, ReconcileOptions{StudioName: "S"})

	seen := map[string]bool{}
	for _, p := range result.NewPeople {
		assert.Len(t, p.ID, 36)
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}

func TestListKnownPersonNames(t *testing.T) {
	collections := map[entities.Collection][]entities.Record{
		entities.CollectionPeople:      {record(t, `{"id":"1","name":"alice"}`)},
		entities.CollectionFreelancers: {record(t, `{"id":"2","name":" Bob "}`)},
		entities.CollectionProjects: {
			record(t, `{"id":"p","credits":{"adr":["ALICE","Carol"],"additionalRoles":{"Runner":["Dave"]}}}`),
		},
		entities.CollectionFacilities: {record(t, `{"id":"f","contact":"erin"}`), record(t, `{"id":"g"}`)},
		entities.CollectionNews:       {record(t, `{"id":"n","author":"Frank"}`)},
	}

	assert.Equal(t, []string{"alice", "Bob", "Carol", "Dave", "erin", "Frank"}, ListKnownPersonNames(collections))
	assert.Empty(t, ListKnownPersonNames(nil))
}

func TestReconcileService_Sync(t *testing.T) {
	store := mocks.NewAuditingStore()
	store.Seed(entities.CollectionProjects, record(t, `{"id":"p1","title":"Film","credits":{"adr":["Bob","Carol"]}}`))
	store.Seed(entities.CollectionFreelancers, record(t, `{"id":"f1","name":"Bob"}`))

	service := NewReconcileService(store.CollectionStore, testReconcileOptions(), nil)
	result, err := service.Sync(context.Background(), SyncFreelancers, SyncOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, []string{"Carol"}, result.Names)

	freelancers := store.Data[entities.CollectionFreelancers]
	require.Len(t, freelancers, 2)
	assert.Equal(t, "Bob", freelancers[0].String("name"))
	assert.Equal(t, "Carol", freelancers[1].String("name"))
	assert.Equal(t, "Freelancer", freelancers[1].String("role"))

	again, err := service.Sync(context.Background(), SyncFreelancers, SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
}

func TestReconcileService_Sync_WritesAuditEntry(t *testing.T) {
	store := mocks.NewAuditingStore()
	store.Seed(entities.CollectionProjects, record(t, `{"id":"p1","credits":{"adr":["Carol"]}}`))

	service := NewReconcileService(store, testReconcileOptions(), nil)
	_, err := service.Sync(context.Background(), SyncPeople, SyncOptions{})

	require.NoError(t, err)
	require.Len(t, store.Entries, 1)
	assert.Equal(t, entities.AuditSyncPeople, store.Entries[0].Action)
	assert.Equal(t, "people", store.Entries[0].Collection)
	assert.Equal(t, 1, store.Entries[0].Details["created"])
}

func TestReconcileService_Sync_FailedWriteContinues(t *testing.T) {
	store := mocks.NewCollectionStore()
	store.Seed(entities.CollectionProjects, record(t, `{"id":"p1","credits":{"adr":["A","B","C"]}}`))
	store.CreateFailFor = map[string]error{"B": errors.New("disk full")}

	service := NewReconcileService(store, testReconcileOptions(), nil)
	result, err := service.Sync(context.Background(), SyncPeople, SyncOptions{})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Candidates)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"A", "C"}, result.Names)
	assert.Equal(t, 3, store.CreateCalls)
}

func TestReconcileService_Sync_UnreadableCollectionIsEmpty(t *testing.T) {
	store := mocks.NewCollectionStore()
	store.Seed(entities.CollectionProjects, record(t, `{"id":"p1","credits":{"adr":["Bob"]}}`))
	store.Seed(entities.CollectionPeople, record(t, `{"id":"1","name":"Bob"}`))
	store.ListErr = map[entities.Collection]error{entities.CollectionPeople: errors.New("permission denied")}

	service := NewReconcileService(store, testReconcileOptions(), nil)
	result, err := service.Sync(context.Background(), SyncPeople, SyncOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Candidates)
}

func TestReconcileService_Sync_DryRun(t *testing.T) {
	store := mocks.NewCollectionStore()
	store.Seed(entities.CollectionProjects, record(t, `{"id":"p1","credits":{"adr":["Carol"]}}`))

	service := NewReconcileService(store, testReconcileOptions(), nil)
	result, err := service.Sync(context.Background(), SyncPeople, SyncOptions{DryRun: true})

	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, []string{"Carol"}, result.Names)
	assert.Equal(t, 0, store.CreateCalls)
}

func TestReconcileService_Sync_InvalidMode(t *testing.T) {
	service := NewReconcileService(mocks.NewCollectionStore(), testReconcileOptions(), nil)
	_, err := service.Sync(context.Background(), SyncMode("staff"), SyncOptions{})
	assert.Error(t, err)
}

func TestReconcileService_ListKnownNames(t *testing.T) {
	store := mocks.NewCollectionStore()
	store.Seed(entities.CollectionPeople, record(t, `{"id":"1","name":"Zoe"}`))
	store.Seed(entities.CollectionNews, record(t, `{"id":"n","author":"amy"}`))
	store.ListErr = map[entities.Collection]error{entities.CollectionProjects: errors.New("boom")}

	service := NewReconcileService(store, testReconcileOptions(), nil)

	assert.Equal(t, []string{"amy", "Zoe"}, service.ListKnownNames(context.Background()))
}
