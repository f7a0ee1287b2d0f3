package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/repository"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/service"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/testutil"
)

func setupProjectRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	projects := service.NewProjectService(repos.Project, repository.NewSnapshotStore(nil, ""), zap.NewNop())
	models := service.NewModelService(projects, zap.NewNop())

	ph := NewProjectHandler(projects)
	mh := NewModelHandler(models)

	r := testutil.SetupRouter()
	v1 := r.Group("/api/v1")
	v1.POST("/projects", ph.Create)
	v1.GET("/projects", ph.List)
	v1.GET("/projects/:id", ph.Get)
	v1.DELETE("/projects/:id", ph.Delete)
	v1.POST("/projects/:id/timeline/maintenance", ph.AddCustomMaintenance)
	v1.DELETE("/projects/:id/timeline/maintenance", ph.DeleteCustomMaintenance)
	v1.POST("/projects/:id/part-models", mh.CreatePartModel)
	v1.POST("/projects/:id/component-types", mh.CreateComponentType)
	v1.DELETE("/projects/:id/component-types/:typeId", mh.DeleteComponentType)
	return r
}

func createProject(t *testing.T, r *gin.Engine, name string) string {
	t.Helper()
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/projects", gin.H{"name": name})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	return data["id"].(string)
}

func TestProjectCRUDScenario(t *testing.T) {
	r := setupProjectRouter(t)

	id := createProject(t, r, "KS-7 plan")

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/projects/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["name"] != "KS-7 plan" {
		t.Errorf("name = %v", data["name"])
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/projects", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}

	w = testutil.DoRequest(r, http.MethodDelete, "/api/v1/projects/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/projects/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40400 {
		t.Errorf("envelope code = %v", resp["code"])
	}
}

func TestAddCustomMaintenanceScenario(t *testing.T) {
	r := setupProjectRouter(t)
	id := createProject(t, r, "custom events")

	// Attach a part model so the event has something to reference.
	w := testutil.DoRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/projects/%s/part-models", id), gin.H{
		"name": "NK-16ST",
		"maintenanceTypes": []gin.H{
			{"id": "mt-1", "name": "Overhaul", "duration": 10, "priority": 1, "interval": 180, "deviation": 15},
		},
		"units": []gin.H{
			{"id": "unit-1", "name": "Engine #1"},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add part model status = %d, body = %s", w.Code, w.Body.String())
	}

	event := gin.H{
		"maintenanceTypeId": "mt-1",
		"unitId":            "unit-1",
		"dateTime":          "2025-06-01T00:00:00Z",
	}
	w = testutil.DoRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/projects/%s/timeline/maintenance", id), event)
	if w.Code != http.StatusCreated {
		t.Fatalf("add maintenance status = %d, body = %s", w.Code, w.Body.String())
	}
	tl := testutil.ParseResponse(w)["data"].(map[string]interface{})
	events := tl["maintenanceEvents"].([]interface{})
	if len(events) != 1 {
		t.Fatalf("maintenance events = %d", len(events))
	}
	if events[0].(map[string]interface{})["custom"] != true {
		t.Error("custom flag not set on stored event")
	}

	// Dangling unit reference is a 404, not a silent insert.
	w = testutil.DoRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/projects/%s/timeline/maintenance", id), gin.H{
		"maintenanceTypeId": "mt-1",
		"unitId":            "no-such-unit",
		"dateTime":          "2025-06-01T00:00:00Z",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("dangling unit status = %d, want 404", w.Code)
	}

	// The same body removes the event again.
	w = testutil.DoRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/projects/%s/timeline/maintenance", id), event)
	if w.Code != http.StatusOK {
		t.Fatalf("delete maintenance status = %d, body = %s", w.Code, w.Body.String())
	}
	tl = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if events, ok := tl["maintenanceEvents"].([]interface{}); ok && len(events) != 0 {
		t.Fatalf("maintenance events after delete = %d", len(events))
	}

	// A second delete finds nothing.
	w = testutil.DoRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/projects/%s/timeline/maintenance", id), event)
	if w.Code != http.StatusNotFound {
		t.Fatalf("repeat delete status = %d, want 404", w.Code)
	}
}

func TestDeleteReferencedComponentTypeConflicts(t *testing.T) {
	r := setupProjectRouter(t)
	id := createProject(t, r, "referential integrity")

	w := testutil.DoRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/projects/%s/component-types", id), gin.H{
		"id":   "ct-1",
		"name": "Engine",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add component type status = %d, body = %s", w.Code, w.Body.String())
	}

	// A part model referencing the type blocks its deletion.
	w = testutil.DoRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/projects/%s/part-models", id), gin.H{
		"name":            "NK-16ST",
		"componentTypeId": "ct-1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add part model status = %d", w.Code)
	}

	w = testutil.DoRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/projects/%s/component-types/ct-1", id), nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("deleting a referenced type: status = %d, want 409", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40900 {
		t.Errorf("envelope code = %v", resp["code"])
	}

	w = testutil.DoRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/projects/%s/component-types/ct-absent", id), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleting an absent type: status = %d, want 404", w.Code)
	}
}
