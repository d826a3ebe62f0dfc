package handler

import (
	"net/http"
	"testing"

	"github.com/fabworks/moldline/internal/repository"
	"github.com/fabworks/moldline/internal/service"
	"github.com/fabworks/moldline/internal/testutil"
	"github.com/gin-gonic/gin"
)

func setupRunTest(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svcs := service.NewServices(repos, nil)

	router := testutil.SetupRouter()

	mh := NewMachineHandler(svcs.Machine)
	machines := router.Group("/machines")
	machines.POST("", mh.Create)
	machines.DELETE("/:id", mh.Delete)

	rh := NewProductionRunHandler(svcs.ProductionRun)
	runs := router.Group("/production-runs")
	runs.GET("", rh.List)
	runs.POST("", rh.Create)
	runs.GET("/:id", rh.Get)
	runs.PUT("/:id", rh.Update)
	runs.DELETE("/:id", rh.Delete)

	return router
}

func createRun(t *testing.T, router *gin.Engine, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/production-runs", body, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return testutil.ParseDoc(t, w)
}

func TestProductionRunCreate(t *testing.T) {
	router := setupRunTest(t)

	machine := createMachine(t, router, map[string]interface{}{
		"machineId": "IM-001", "name": "Press 1",
	})

	doc := createRun(t, router, map[string]interface{}{
		"runId":          "RUN-2026-001",
		"machineId":      machine["id"],
		"partNumber":     "PN-4411",
		"partName":       "Housing Cover",
		"material":       "ABS",
		"targetQuantity": 5000,
	})

	if doc["status"] != "scheduled" {
		t.Errorf("Expected default status 'scheduled', got %v", doc["status"])
	}
	if doc["actualQuantity"] != 0.0 {
		t.Errorf("Expected actualQuantity 0, got %v", doc["actualQuantity"])
	}
	// Create returns the populated document
	machineDoc, ok := doc["machine"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected embedded machine, got %v", doc["machine"])
	}
	if machineDoc["machineId"] != "IM-001" {
		t.Errorf("Expected embedded machineId 'IM-001', got %v", machineDoc["machineId"])
	}
}

func TestProductionRunCreateDanglingMachine(t *testing.T) {
	router := setupRunTest(t)

	w := testutil.DoRequest(router, "POST", "/production-runs", map[string]interface{}{
		"runId":          "RUN-2026-002",
		"machineId":      "c2c9a1f0-0000-4000-8000-000000000009",
		"partNumber":     "PN-4412",
		"partName":       "Bezel",
		"material":       "PC",
		"targetQuantity": 100,
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseDoc(t, w)
	if resp["error"] != "DanglingReference" {
		t.Errorf("Expected error 'DanglingReference', got %v", resp["error"])
	}
	fields, _ := resp["fields"].([]interface{})
	if len(fields) != 1 || fields[0] != "machineId" {
		t.Errorf("Expected fields [machineId], got %v", resp["fields"])
	}
}

func TestProductionRunCreateNonPositiveTarget(t *testing.T) {
	router := setupRunTest(t)

	machine := createMachine(t, router, map[string]interface{}{
		"machineId": "IM-002", "name": "Press 2",
	})

	w := testutil.DoRequest(router, "POST", "/production-runs", map[string]interface{}{
		"runId":          "RUN-2026-003",
		"machineId":      machine["id"],
		"partNumber":     "PN-4413",
		"partName":       "Clip",
		"material":       "POM",
		"targetQuantity": 0,
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseDoc(t, w)
	if resp["error"] != "InvalidNumber" {
		t.Errorf("Expected error 'InvalidNumber', got %v", resp["error"])
	}
}

func TestProductionRunListFilters(t *testing.T) {
	router := setupRunTest(t)

	m1 := createMachine(t, router, map[string]interface{}{
		"machineId": "IM-003", "name": "Press 3",
	})
	m2 := createMachine(t, router, map[string]interface{}{
		"machineId": "IM-004", "name": "Press 4",
	})

	createRun(t, router, map[string]interface{}{
		"runId": "RUN-A", "machineId": m1["id"], "partNumber": "PN-01",
		"partName": "Part A", "material": "ABS", "targetQuantity": 10,
		"status": "in-progress",
	})
	createRun(t, router, map[string]interface{}{
		"runId": "RUN-B", "machineId": m2["id"], "partNumber": "PN-02",
		"partName": "Part B", "material": "PC", "targetQuantity": 20,
	})

	w := testutil.DoRequest(router, "GET", "/production-runs?status=in-progress", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	list := testutil.ParseList(t, w)
	if len(list) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(list))
	}

	w2 := testutil.DoRequest(router, "GET", "/production-runs?machineId="+m2["id"].(string), nil, "")
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
	list2 := testutil.ParseList(t, w2)
	if len(list2) != 1 {
		t.Fatalf("Expected 1 run for machine filter, got %d", len(list2))
	}
	if list2[0].(map[string]interface{})["runId"] != "RUN-B" {
		t.Errorf("Expected runId 'RUN-B', got %v", list2[0])
	}
}

func TestProductionRunUpdateProgress(t *testing.T) {
	router := setupRunTest(t)

	machine := createMachine(t, router, map[string]interface{}{
		"machineId": "IM-005", "name": "Press 5",
	})
	doc := createRun(t, router, map[string]interface{}{
		"runId": "RUN-C", "machineId": machine["id"], "partNumber": "PN-03",
		"partName": "Part C", "material": "PA66", "targetQuantity": 1000,
	})
	id := doc["id"].(string)

	w := testutil.DoRequest(router, "PUT", "/production-runs/"+id, map[string]interface{}{
		"status":         "completed",
		"actualQuantity": 987,
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	got := testutil.ParseDoc(t, w)
	if got["status"] != "completed" {
		t.Errorf("Expected status 'completed', got %v", got["status"])
	}
	if got["actualQuantity"] != 987.0 {
		t.Errorf("Expected actualQuantity 987, got %v", got["actualQuantity"])
	}
}

func TestProductionRunSurvivesMachineDelete(t *testing.T) {
	router := setupRunTest(t)

	machine := createMachine(t, router, map[string]interface{}{
		"machineId": "IM-006", "name": "Press 6",
	})
	doc := createRun(t, router, map[string]interface{}{
		"runId": "RUN-D", "machineId": machine["id"], "partNumber": "PN-04",
		"partName": "Part D", "material": "PP", "targetQuantity": 50,
	})

	// Deleting the machine leaves the run with a dangling reference
	w := testutil.DoRequest(router, "DELETE", "/machines/"+machine["id"].(string), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 deleting machine, got %d: %s", w.Code, w.Body.String())
	}

	w2 := testutil.DoRequest(router, "GET", "/production-runs/"+doc["id"].(string), nil, "")
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
	got := testutil.ParseDoc(t, w2)
	if got["machineId"] != machine["id"] {
		t.Errorf("Expected machineId to remain %v, got %v", machine["id"], got["machineId"])
	}
}
