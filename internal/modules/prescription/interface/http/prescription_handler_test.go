package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MediLink/pkg/back"
	"MediLink/pkg/xerr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTransitionSvc struct {
	err error

	gotID     string
	gotStatus string
	gotActor  string
	gotNotes  string
}

func (s *stubTransitionSvc) UpdateStatus(ctx context.Context, prescriptionID, newStatus, actorID, notes string) error {
	s.gotID = prescriptionID
	s.gotStatus = newStatus
	s.gotActor = actorID
	s.gotNotes = notes
	return s.err
}

func (s *stubTransitionSvc) ExpireStale(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	return 0, nil
}

func postJSON(t *testing.T, body string, uuid string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/prescription/status", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if uuid != "" {
		c.Set("uuid", uuid)
	}
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) back.Response {
	t.Helper()
	var resp back.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestUpdateStatusHandlerSuccess(t *testing.T) {
	svc := &stubTransitionSvc{}
	h := NewPrescriptionHandler(nil, svc, nil, nil)

	c, w := postJSON(t, `{"prescription_id":"RX700","new_status":"processing","notes":"开始审方"}`, "pharmacist-1")
	h.UpdateStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, xerr.OK, resp.Code)

	// 操作人取登录态，不信任请求体
	assert.Equal(t, "RX700", svc.gotID)
	assert.Equal(t, "processing", svc.gotStatus)
	assert.Equal(t, "pharmacist-1", svc.gotActor)
	assert.Equal(t, "开始审方", svc.gotNotes)
}

func TestUpdateStatusHandlerInvalidTransitionCode(t *testing.T) {
	svc := &stubTransitionSvc{err: xerr.NewInvalidTransition("fulfilled", "processing")}
	h := NewPrescriptionHandler(nil, svc, nil, nil)

	c, w := postJSON(t, `{"prescription_id":"RX701","new_status":"processing"}`, "pharmacist-1")
	h.UpdateStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, xerr.InvalidTransitionCode, resp.Code)
	assert.NotEmpty(t, resp.Message)
}

func TestUpdateStatusHandlerStatusConflictCode(t *testing.T) {
	svc := &stubTransitionSvc{err: xerr.NewStatusConflict("processing")}
	h := NewPrescriptionHandler(nil, svc, nil, nil)

	c, w := postJSON(t, `{"prescription_id":"RX702","new_status":"validated"}`, "pharmacist-1")
	h.UpdateStatus(c)

	resp := decodeResponse(t, w)
	assert.Equal(t, xerr.StatusConflictCode, resp.Code)
}

func TestUpdateStatusHandlerBadBody(t *testing.T) {
	svc := &stubTransitionSvc{}
	h := NewPrescriptionHandler(nil, svc, nil, nil)

	c, w := postJSON(t, `{invalid`, "pharmacist-1")
	h.UpdateStatus(c)

	resp := decodeResponse(t, w)
	assert.Equal(t, xerr.BadRequest, resp.Code)
	assert.Empty(t, svc.gotID)
}

func TestUpdateStatusHandlerUnknownErrorMapsToServerError(t *testing.T) {
	svc := &stubTransitionSvc{err: assert.AnError}
	h := NewPrescriptionHandler(nil, svc, nil, nil)

	c, w := postJSON(t, `{"prescription_id":"RX703","new_status":"processing"}`, "pharmacist-1")
	h.UpdateStatus(c)

	resp := decodeResponse(t, w)
	assert.Equal(t, xerr.ErrServerError.Code, resp.Code)
	assert.Equal(t, xerr.ErrServerError.Message, resp.Message)
}
