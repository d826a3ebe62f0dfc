package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/fabworks/moldline/internal/repository"
	"github.com/fabworks/moldline/internal/service"
	"github.com/fabworks/moldline/internal/testutil"
	"github.com/gin-gonic/gin"
)

type checkFixture struct {
	router     *gin.Engine
	session    string
	machineID  string
	runID      string
	employeeID string
}

func setupQualityCheckTest(t *testing.T) *checkFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svcs := service.NewServices(repos, nil)

	router := testutil.SetupRouter()

	mh := NewMachineHandler(svcs.Machine)
	router.POST("/machines", mh.Create)
	rh := NewProductionRunHandler(svcs.ProductionRun)
	router.POST("/production-runs", rh.Create)
	eh := NewEmployeeHandler(svcs.Employee)
	router.POST("/employees", eh.Create)

	qh := NewQualityCheckHandler(svcs.QualityCheck)
	checks := testutil.SessionGroup(router, "/quality-checks", "quality", testutil.AuthConfig())
	checks.GET("", qh.List)
	checks.POST("", qh.Create)
	checks.GET("/recent", qh.Recent)
	checks.GET("/result/:result", qh.ListByResult)
	checks.GET("/export", qh.Export)
	checks.GET("/:id", qh.Get)
	checks.PUT("/:id", qh.Update)
	checks.DELETE("/:id", qh.Delete)

	session := testutil.DefaultTestSession()

	machine := createMachine(t, router, map[string]interface{}{
		"machineId": "IM-100", "name": "QC Press",
	})
	run := createRun(t, router, map[string]interface{}{
		"runId": "RUN-QC-1", "machineId": machine["id"], "partNumber": "PN-90",
		"partName": "Gasket", "material": "TPE", "targetQuantity": 200,
	})
	employee := createEmployee(t, router, "",
		employeePayload("EMP-100", "Quin", "Inspector", "quin.inspector@fabworks.com"))

	return &checkFixture{
		router:     router,
		session:    session,
		machineID:  machine["id"].(string),
		runID:      run["id"].(string),
		employeeID: employee["id"].(string),
	}
}

func (f *checkFixture) payload(checkID, result string, checkDate time.Time) map[string]interface{} {
	return map[string]interface{}{
		"checkId":    checkID,
		"runId":      f.runID,
		"machineId":  f.machineID,
		"employeeId": f.employeeID,
		"checkDate":  checkDate,
		"checkType":  "Dimensional",
		"result":     result,
	}
}

func (f *checkFixture) create(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(f.router, "POST", "/quality-checks", body, f.session)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return testutil.ParseDoc(t, w)
}

func TestQualityCheckRequiresSession(t *testing.T) {
	f := setupQualityCheckTest(t)

	w := testutil.DoRequest(f.router, "GET", "/quality-checks", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without session, got %d: %s", w.Code, w.Body.String())
	}
}

func TestQualityCheckCreatePopulated(t *testing.T) {
	f := setupQualityCheckTest(t)

	doc := f.create(t, f.payload("QC-001", "Pass", time.Now().UTC()))

	if doc["checkId"] != "QC-001" {
		t.Errorf("Expected checkId 'QC-001', got %v", doc["checkId"])
	}
	run, ok := doc["run"].(map[string]interface{})
	if !ok || run["runId"] != "RUN-QC-1" {
		t.Errorf("Expected embedded run 'RUN-QC-1', got %v", doc["run"])
	}
	employee, ok := doc["employee"].(map[string]interface{})
	if !ok || employee["employeeId"] != "EMP-100" {
		t.Errorf("Expected embedded employee 'EMP-100', got %v", doc["employee"])
	}
}

func TestQualityCheckCreateDanglingRun(t *testing.T) {
	f := setupQualityCheckTest(t)

	body := f.payload("QC-002", "Pass", time.Now().UTC())
	body["runId"] = "c2c9a1f0-0000-4000-8000-00000000000a"

	w := testutil.DoRequest(f.router, "POST", "/quality-checks", body, f.session)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseDoc(t, w)
	if resp["error"] != "DanglingReference" {
		t.Errorf("Expected error 'DanglingReference', got %v", resp["error"])
	}
	fields, _ := resp["fields"].([]interface{})
	if len(fields) != 1 || fields[0] != "runId" {
		t.Errorf("Expected fields [runId], got %v", resp["fields"])
	}
}

func TestQualityCheckMeasurementsRoundtrip(t *testing.T) {
	f := setupQualityCheckTest(t)

	body := f.payload("QC-003", "Fail", time.Now().UTC())
	body["measurements"] = []map[string]interface{}{
		{
			"parameter":   "Wall thickness",
			"targetValue": 2.5,
			"unit":        "mm",
			"tolerance":   0.1,
			"actualValue": 2.72,
			"status":      "fail",
		},
	}
	body["defectsFound"] = 3
	body["notes"] = "Thickness out of tolerance on cavity 4"

	doc := f.create(t, body)
	id := doc["id"].(string)

	w := testutil.DoRequest(f.router, "GET", "/quality-checks/"+id, nil, f.session)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	got := testutil.ParseDoc(t, w)
	measurements, ok := got["measurements"].([]interface{})
	if !ok || len(measurements) != 1 {
		t.Fatalf("Expected 1 measurement, got %v", got["measurements"])
	}
	m := measurements[0].(map[string]interface{})
	if m["parameter"] != "Wall thickness" {
		t.Errorf("Expected parameter 'Wall thickness', got %v", m["parameter"])
	}
	if m["actualValue"] != 2.72 {
		t.Errorf("Expected actualValue 2.72, got %v", m["actualValue"])
	}
	if got["defectsFound"] != 3.0 {
		t.Errorf("Expected defectsFound 3, got %v", got["defectsFound"])
	}
}

func TestQualityCheckNotesTooLong(t *testing.T) {
	f := setupQualityCheckTest(t)

	body := f.payload("QC-004", "Pass", time.Now().UTC())
	long := make([]byte, 1001)
	for i := range long {
		long[i] = 'x'
	}
	body["notes"] = string(long)

	w := testutil.DoRequest(f.router, "POST", "/quality-checks", body, f.session)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseDoc(t, w)
	if resp["error"] != "InvalidLength" {
		t.Errorf("Expected error 'InvalidLength', got %v", resp["error"])
	}
}

func TestQualityCheckRecent(t *testing.T) {
	f := setupQualityCheckTest(t)

	base := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		f.create(t, f.payload(fmt.Sprintf("QC-R%02d", i), "Pass", base.Add(time.Duration(i)*time.Hour)))
	}

	w := testutil.DoRequest(f.router, "GET", "/quality-checks/recent?limit=5", nil, f.session)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	list := testutil.ParseList(t, w)
	if len(list) != 5 {
		t.Fatalf("Expected 5 checks, got %d", len(list))
	}
	// Newest first
	first := list[0].(map[string]interface{})
	if first["checkId"] != "QC-R06" {
		t.Errorf("Expected newest check 'QC-R06' first, got %v", first["checkId"])
	}
}

func TestQualityCheckRecentBadLimit(t *testing.T) {
	f := setupQualityCheckTest(t)

	for _, limit := range []string{"0", "-3", "abc"} {
		w := testutil.DoRequest(f.router, "GET", "/quality-checks/recent?limit="+limit, nil, f.session)
		if w.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: expected 400, got %d", limit, w.Code)
			continue
		}
		resp := testutil.ParseDoc(t, w)
		if resp["error"] != "InvalidNumber" {
			t.Errorf("limit=%s: expected error 'InvalidNumber', got %v", limit, resp["error"])
		}
	}
}

func TestQualityCheckListByResult(t *testing.T) {
	f := setupQualityCheckTest(t)

	f.create(t, f.payload("QC-P1", "Pass", time.Now().UTC()))
	f.create(t, f.payload("QC-F1", "Fail", time.Now().UTC()))

	w := testutil.DoRequest(f.router, "GET", "/quality-checks/result/Fail", nil, f.session)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	list := testutil.ParseList(t, w)
	if len(list) != 1 {
		t.Fatalf("Expected 1 failing check, got %d", len(list))
	}
	if list[0].(map[string]interface{})["checkId"] != "QC-F1" {
		t.Errorf("Expected 'QC-F1', got %v", list[0])
	}

	// Unknown result values are rejected
	w2 := testutil.DoRequest(f.router, "GET", "/quality-checks/result/Maybe", nil, f.session)
	if w2.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown result, got %d", w2.Code)
	}
}

func TestQualityCheckDateFilters(t *testing.T) {
	f := setupQualityCheckTest(t)

	f.create(t, f.payload("QC-OLD", "Pass", time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)))
	f.create(t, f.payload("QC-NEW", "Pass", time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)))

	w := testutil.DoRequest(f.router, "GET", "/quality-checks?startDate=2026-08-01", nil, f.session)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	list := testutil.ParseList(t, w)
	if len(list) != 1 {
		t.Fatalf("Expected 1 check after startDate, got %d", len(list))
	}
	if list[0].(map[string]interface{})["checkId"] != "QC-NEW" {
		t.Errorf("Expected 'QC-NEW', got %v", list[0])
	}

	w2 := testutil.DoRequest(f.router, "GET", "/quality-checks?startDate=yesterday", nil, f.session)
	if w2.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed startDate, got %d", w2.Code)
	}
}

func TestQualityCheckExport(t *testing.T) {
	f := setupQualityCheckTest(t)

	f.create(t, f.payload("QC-X1", "Pass", time.Now().UTC()))

	w := testutil.DoRequest(f.router, "GET", "/quality-checks/export", nil, f.session)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Unexpected Content-Type %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("Expected non-empty export body")
	}
}

func TestQualityCheckUpdateResult(t *testing.T) {
	f := setupQualityCheckTest(t)

	doc := f.create(t, f.payload("QC-U1", "Hold", time.Now().UTC()))
	id := doc["id"].(string)

	w := testutil.DoRequest(f.router, "PUT", "/quality-checks/"+id, map[string]interface{}{
		"result":           "Rework",
		"correctiveAction": "Re-run cavity 2 after mold cleaning",
	}, f.session)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	got := testutil.ParseDoc(t, w)
	if got["result"] != "Rework" {
		t.Errorf("Expected result 'Rework', got %v", got["result"])
	}
}

func TestQualityCheckDelete(t *testing.T) {
	f := setupQualityCheckTest(t)

	doc := f.create(t, f.payload("QC-D1", "Pass", time.Now().UTC()))
	id := doc["id"].(string)

	w := testutil.DoRequest(f.router, "DELETE", "/quality-checks/"+id, nil, f.session)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w2 := testutil.DoRequest(f.router, "GET", "/quality-checks/"+id, nil, f.session)
	if w2.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w2.Code)
	}
}
