package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-assignment-service/internal/adapters/pdftext"
	"route-assignment-service/internal/adapters/repositories"
	"route-assignment-service/internal/adapters/sheets"
	"route-assignment-service/internal/api/dto"
	"route-assignment-service/internal/api/handlers"
	"route-assignment-service/internal/platform/db"
	"route-assignment-service/internal/services"
)

const (
	dopCSV = `DSP,Route Code,Service Type,Wave,Staging Location,Route Duration,Num Zones,Num Packages,Num Commercial Pkgs
NDAY,CX101,Custom Delivery Van 14ft,10:20 AM,STG.A-1,600,,,
NDAY,cx 102,CDV14,10:20 AM,STG.A-2,600,,,
NDAY,CX103,Rivian MEDIUM,10:40 AM,STG.A-3,540,,,
`
	fleetCSV = `VIN,Service Type,Vehicle Name,Fuel Type
vin001,Custom Delivery Van 14ft,Van 1,Gas
VIN002,CDV14,Van 2,Electric
VIN003,CDV14,Van 3 GROUNDED,Gas
`
	cortexCSV = `Route code,DSP,Transporter Id,Driver name,Route progress,Delivery Service Type
CX101,NDAY,A1B2C3,Ana Ruiz,Not started,Custom Delivery Van 14ft
`
	manifestCX101 = "STG.Q12.1\nCX101 NDAY • Custom Delivery Van 14ft\n1 B-7.3B Navy 4564 3\n"
	manifestCX102 = "STG.Q12.2\nCX102 NDAY • CDV14\n1 B-7.4A Black 4565 5\n"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T, allowReset bool) *testServer {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(context.Background(), conn))

	affinity := repositories.NewSQLAffinityRepository(conn, db.SQLite)
	history := repositories.NewSQLAssignmentRepository(conn, db.SQLite)
	reg := services.NewCycleRegistry(services.CycleDeps{
		Sheets:   sheets.NewReader(),
		Text:     pdftext.NewExtractor(),
		Affinity: affinity,
		History:  history,
		Now:      func() time.Time { return time.Date(2026, 2, 17, 6, 0, 0, 0, time.UTC) },
	})

	return &testServer{t: t, handler: NewRouter(Deps{
		Registry:   reg,
		Affinity:   affinity,
		History:    history,
		Ping:       conn.PingContext,
		AllowReset: allowReset,
	})}
}

func (s *testServer) do(req *http.Request, cycleID string) *httptest.ResponseRecorder {
	if cycleID != "" {
		req.Header.Set(handlers.CycleHeader, cycleID)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) json(method, path, cycleID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	return s.do(httptest.NewRequest(method, path, &buf), cycleID)
}

func (s *testServer) upload(path, cycleID, field string, files map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(s.t, err)
		_, err = part.Write([]byte(content))
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req, cycleID)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.json(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = s.do(req, "")
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = s.json(http.MethodPost, "/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestFullCycleOverHTTP(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.json(http.MethodPost, "/cycles", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	cycleID := decode[dto.CycleResponse](t, rec).CycleID
	require.NotEmpty(t, cycleID)

	rec = s.json(http.MethodPost, "/assign-vehicles", cycleID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "nothing uploaded yet")

	rec = s.upload("/uploads/dop", cycleID, "file", map[string]string{"dop.csv": dopCSV})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 3, decode[dto.IngestResponse](t, rec).RecordsParsed)

	rec = s.upload("/uploads/fleet", cycleID, "file", map[string]string{"fleet.csv": fleetCSV})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fleet := decode[dto.IngestResponse](t, rec)
	assert.Equal(t, 2, fleet.RecordsParsed)
	assert.Equal(t, 1, fleet.Skipped)

	rec = s.upload("/uploads/cortex", cycleID, "file", map[string]string{"cortex.csv": cortexCSV})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.upload("/uploads/route-sheets", cycleID, "files", map[string]string{
		"cx101.txt": manifestCX101,
		"cx102.txt": manifestCX102,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[dto.IngestResponse](t, rec).RecordsParsed)

	rec = s.json(http.MethodGet, "/status", cycleID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[dto.StatusResponse](t, rec)
	assert.True(t, st.ReadyToAssign)
	assert.Equal(t, cycleID, st.CycleID)
	assert.True(t, st.Sources["load_manifests"].Uploaded)
	assert.Contains(t, st.ValidationWarnings, "Route CX103 is in the route plan but has no load manifest.")

	rec = s.json(http.MethodPost, "/assign-vehicles", cycleID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[dto.AssignResponse](t, rec)
	assert.Equal(t, 3, res.TotalRoutes)
	assert.Equal(t, 1, res.AssignedCount)
	require.Len(t, res.Assignments, 3)
	assert.Equal(t, "VIN001", res.Assignments[0].VIN)
	assert.Equal(t, "Ana Ruiz", res.Assignments[0].DriverName)
	assert.Equal(t, "pending-violation", res.Assignments[1].Status)
	assert.Equal(t, "unresolved", res.Assignments[2].Status)
	assert.Len(t, res.FailedRoutes, 2)

	rec = s.json(http.MethodGet, "/violations", cycleID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	vl := decode[dto.ListViolationsResponse](t, rec)
	require.Len(t, vl.Pending, 1)
	assert.Equal(t, "electric", vl.Pending[0].Kind)

	decision := dto.ViolationDecisionRequest{RouteCode: "CX102", VIN: "VIN002"}
	rec = s.json(http.MethodPost, "/violations/authorize", cycleID, decision)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "reason is required")

	decision.Reason = "only van left"
	rec = s.json(http.MethodPost, "/violations/authorize", cycleID, decision)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.json(http.MethodGet, "/assignments", cycleID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[dto.ListAssignmentsResponse](t, rec)
	assert.Equal(t, "authorized-assigned", list.Assignments[1].Status)

	rec = s.json(http.MethodPost, "/assignments/manual", cycleID, dto.ManualAssignRequest{RouteCode: "CX103", VIN: "VIN999"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.json(http.MethodPost, "/assignments/manual", cycleID, dto.ManualAssignRequest{RouteCode: "CX103", VIN: "VIN001"})
	assert.Equal(t, http.StatusConflict, rec.Code, "VIN001 already serves CX101")

	rec = s.json(http.MethodGet, "/assignments/history", cycleID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decode[dto.ListHistoryResponse](t, rec)
	require.Len(t, hist.Entries, 3)
	assert.Equal(t, "CX101", hist.Entries[0].RouteCode)
	assert.Equal(t, "authorized-assigned", hist.Entries[1].Status)

	rec = s.json(http.MethodGet, "/affinity-stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[dto.ListAffinityStatsResponse](t, rec)
	require.Len(t, stats.Stats, 1)
	assert.Equal(t, "Ana Ruiz", stats.Stats[0].DriverName)
	assert.Equal(t, "VIN001", stats.Stats[0].VIN)

	rec = s.json(http.MethodGet, "/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[dto.StatusResponse](t, rec).ReadyToAssign, "default cycle is untouched")
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.json(http.MethodGet, "/status", "no-such-cycle", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.upload("/uploads/dop", "", "other", map[string]string{"dop.csv": dopCSV})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `multipart field \"file\" is required`)

	rec = s.upload("/uploads/dop", "", "file", map[string]string{"dop.csv": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/assignments/manual", strings.NewReader(`{"route_code":"CX1","vin":"V","extra":1}`))
	rec = s.do(req, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.json(http.MethodPost, "/reset", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReset(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.upload("/uploads/dop", "", "file", map[string]string{"dop.csv": dopCSV})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.json(http.MethodPost, "/reset", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.json(http.MethodGet, "/status", "", nil)
	st := decode[dto.StatusResponse](t, rec)
	assert.False(t, st.Sources["route_plan"].Uploaded)

	rec = s.json(http.MethodPost, "/cycles", "", nil)
	id := decode[dto.CycleResponse](t, rec).CycleID
	rec = s.json(http.MethodPost, "/reset", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.json(http.MethodGet, "/status", id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.json(http.MethodGet, "/cycles", "", nil)
	assert.Equal(t, []string{services.DefaultCycleID}, decode[dto.ListCyclesResponse](t, rec).CycleIDs)
}
