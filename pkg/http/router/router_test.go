package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
	"github.com/lintang-b-s/roadbisect/pkg/http/usecases"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	mp := da.NewMultilevelPartition(6, 3)
	cells := [][]uint32{
		{0, 0, 0, 0, 1, 1},
		{0, 0, 1, 2, 3, 3},
		{0, 1, 2, 3, 4, 4},
	}
	for l, level := range cells {
		for u, c := range level {
			mp.SetCell(l, da.Index(u), c)
		}
		mp.SetNumberOfCellsInLevel(l, int(mp.MaxCellId(l))+1)
	}
	require.NoError(t, mp.Validate())

	api := NewAPI(zap.NewNop())
	return api.Handler(false, usecases.NewPartitionService(mp))
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var body struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NoError(t, json.Unmarshal(body.Data, out))
}

func TestPartitionSummary(t *testing.T) {
	h := newTestHandler(t)
	rec := doGet(t, h, "/api/partition")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var summary usecases.PartitionSummary
	decodeData(t, rec, &summary)
	assert.Equal(t, 6, summary.NumVertices)
	assert.Equal(t, 3, summary.NumLevels)
	assert.Equal(t, []uint32{2, 4, 5}, summary.CellsPerLevel)
	assert.Equal(t, []uint8{1, 2, 3}, summary.BitWidths)
	assert.True(t, summary.PackedCellNumbers)
}

func TestNodeCells(t *testing.T) {
	h := newTestHandler(t)

	testCases := []struct {
		name       string
		target     string
		statusCode int
		cells      []uint32
		packed     da.Pv
	}{
		{name: "inner node", target: "/api/cells/3", statusCode: http.StatusOK, cells: []uint32{0, 2, 3}, packed: 0 | 2<<1 | 3<<3},
		{name: "last node", target: "/api/cells/5", statusCode: http.StatusOK, cells: []uint32{1, 3, 4}, packed: 1 | 3<<1 | 4<<3},
		{name: "node out of range", target: "/api/cells/99", statusCode: http.StatusNotFound},
		{name: "not a number", target: "/api/cells/abc", statusCode: http.StatusBadRequest},
		{name: "negative", target: "/api/cells/-1", statusCode: http.StatusBadRequest},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(t, h, tt.target)
			require.Equal(t, tt.statusCode, rec.Code, rec.Body.String())
			if tt.statusCode != http.StatusOK {
				return
			}
			var cells usecases.NodeCells
			decodeData(t, rec, &cells)
			assert.Equal(t, tt.cells, cells.Cells)
			assert.Equal(t, 2, cells.LeafLevel)
			require.NotNil(t, cells.PackedCellNumber)
			assert.Equal(t, tt.packed, *cells.PackedCellNumber)
		})
	}
}

func TestLevelCells(t *testing.T) {
	h := newTestHandler(t)

	rec := doGet(t, h, "/api/levels/1")
	require.Equal(t, http.StatusOK, rec.Code)
	var level usecases.LevelCells
	decodeData(t, rec, &level)
	assert.Equal(t, 1, level.Level)
	assert.Equal(t, 4, level.NumCells)
	assert.Equal(t, []int{2, 1, 1, 2}, level.Sizes)
	assert.Equal(t, 1, level.MinSize)
	assert.Equal(t, 2, level.MaxSize)
	assert.InDelta(t, 1.5, level.MeanSize, 1e-9)

	assert.Equal(t, http.StatusNotFound, doGet(t, h, "/api/levels/3").Code)
	assert.Equal(t, http.StatusNotFound, doGet(t, h, "/api/levels/-1").Code)
	assert.Equal(t, http.StatusBadRequest, doGet(t, h, "/api/levels/x").Code)
}

func TestFirstDifferingLevel(t *testing.T) {
	h := newTestHandler(t)

	testCases := []struct {
		name       string
		target     string
		statusCode int
		level      int
		differ     bool
	}{
		{name: "same coarse cell", target: "/api/firstDifferingLevel?u=0&v=3", statusCode: http.StatusOK, level: 1, differ: true},
		{name: "different top cell", target: "/api/firstDifferingLevel?u=1&v=4", statusCode: http.StatusOK, level: 0, differ: true},
		{name: "same leaf", target: "/api/firstDifferingLevel?u=4&v=5", statusCode: http.StatusOK, level: -1, differ: false},
		{name: "equal nodes", target: "/api/firstDifferingLevel?u=2&v=2", statusCode: http.StatusBadRequest},
		{name: "missing v", target: "/api/firstDifferingLevel?u=2", statusCode: http.StatusBadRequest},
		{name: "negative u", target: "/api/firstDifferingLevel?u=-2&v=1", statusCode: http.StatusBadRequest},
		{name: "unknown node", target: "/api/firstDifferingLevel?u=0&v=6", statusCode: http.StatusNotFound},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(t, h, tt.target)
			require.Equal(t, tt.statusCode, rec.Code, rec.Body.String())
			if tt.statusCode != http.StatusOK {
				return
			}
			var resp struct {
				Level  int  `json:"level"`
				Differ bool `json:"differ"`
			}
			decodeData(t, rec, &resp)
			assert.Equal(t, tt.level, resp.Level)
			assert.Equal(t, tt.differ, resp.Differ)
		})
	}
}

func TestErrorEnvelope(t *testing.T) {
	rec := doGet(t, newTestHandler(t), "/api/cells/99")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Not Found", body.Error.Code)
	assert.Contains(t, body.Error.Message, "node 99")
}

func TestHeartbeat(t *testing.T) {
	rec := doGet(t, newTestHandler(t), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ".", rec.Body.String())
}

func TestLimit(t *testing.T) {
	h := Limit(0.001, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.Equal(t, http.StatusNoContent, doGet(t, h, "/").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(t, h, "/").Code)
}

func TestRecoverPanic(t *testing.T) {
	api := NewAPI(zap.NewNop())
	h := api.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := doGet(t, h, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRealIP(t *testing.T) {
	testCases := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{name: "x-real-ip", headers: map[string]string{"X-Real-IP": "10.0.0.7"}, expected: "10.0.0.7"},
		{name: "x-forwarded-for", headers: map[string]string{"X-Forwarded-For": "10.0.0.8, 10.0.0.9"}, expected: "10.0.0.8"},
		{name: "invalid header", headers: map[string]string{"X-Real-IP": "nope"}, expected: "192.0.2.1:1234"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.expected, got)
		})
	}
}
