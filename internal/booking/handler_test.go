package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) View {
	t.Helper()
	var v View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHandlerStart(t *testing.T) {
	h := NewHandler(newTestManager(nil), nil).Routes()

	rec := doJSON(t, h, http.MethodPost, "/?flow=long&service=mock-interview&mentor=2", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	v := decodeView(t, rec)
	assert.Equal(t, FlowLong, v.Flow)
	assert.Equal(t, StepPickDateTime, v.StepKind)
	assert.NotEmpty(t, v.SessionID)

	rec = doJSON(t, h, http.MethodPost, "/?flow=medium", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerStatusCodes(t *testing.T) {
	h := NewHandler(newTestManager(nil), nil).Routes()
	id := decodeView(t, doJSON(t, h, http.MethodPost, "/?flow=long", "")).SessionID

	rec := doJSON(t, h, http.MethodGet, "/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/"+id+"/continue", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/"+id+"/service", `{"id":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/"+id+"/service", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/"+id+"/payment-method", `{"method":"upi"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/"+id+"/service", `{"id":"mock-interview"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StepSelectMentor, decodeView(t, rec).StepKind)

	rec = doJSON(t, h, http.MethodPost, "/"+id+"/back", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeView(t, rec).Step)
}

func TestHandlerLongFlowDetails(t *testing.T) {
	h := NewHandler(newTestManager(nil), nil).Routes()
	id := decodeView(t, doJSON(t, h, http.MethodPost, "/?flow=long&service=mock-interview&mentor=1", "")).SessionID

	rec := doJSON(t, h, http.MethodPost, "/"+id+"/date", `{"date":"12/03/2025"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/"+id+"/date", `{"date":"2025-03-12"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/"+id+"/time", `{"time":"04:00 PM"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/"+id+"/continue", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPatch, "/"+id+"/contact", `{"email":"abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/"+id+"/continue", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error   string `json:"error"`
		Session View   `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, MsgEmailInvalid, resp.Session.Draft.Errors[FieldEmail])
	assert.Equal(t, MsgNameRequired, resp.Session.Draft.Errors[FieldName])
}

func TestHandlerSubmitFailure(t *testing.T) {
	m := newTestManager(SubmitterFunc(func(context.Context, SubmitTicket) (Confirmation, error) {
		return Confirmation{}, errors.New("upstream down")
	}))
	h := NewHandler(m, nil).Routes()
	id := atPayment(t, m)

	rec := doJSON(t, h, http.MethodPost, "/"+id+"/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeView(t, rec).Confirmation)

	rec = doJSON(t, h, http.MethodPost, "/"+id+"/payment-method", `{"method":"card"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/"+id+"/submit", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp struct {
		Error   string `json:"error"`
		Session View   `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, SubmitErrorMessage, resp.Error)
	assert.Equal(t, SubmitErrorMessage, resp.Session.SubmitError)
}

func TestHandlerSubmitConfirms(t *testing.T) {
	m := newTestManager(nil)
	h := NewHandler(m, nil).Routes()
	id := atPayment(t, m)

	rec := doJSON(t, h, http.MethodPost, "/"+id+"/payment-method", `{"method":"bitcoin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	doJSON(t, h, http.MethodPost, "/"+id+"/payment-method", `{"method":"upi"}`)
	rec = doJSON(t, h, http.MethodPost, "/"+id+"/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	assert.Equal(t, StepConfirmed, v.StepKind)
	assert.Regexp(t, ReferencePattern, v.Receipt.Reference)
	assert.Equal(t, ConfirmedLinks, v.Receipt.Links)
}

func TestHandlerReceiveScheduling(t *testing.T) {
	h := NewHandler(newTestManager(nil), nil).Routes()
	id := decodeView(t, doJSON(t, h, http.MethodPost, "/?flow=short&service=mock-interview&mentor=1", "")).SessionID

	rec := doJSON(t, h, http.MethodPost, "/"+id+"/scheduling", `{"event":"calendly.profile_page_viewed"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/"+id+"/scheduling", `{"event":"scheduled","payload":{"event":{}}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/"+id+"/scheduling",
		`{"event":"calendly.event_scheduled","payload":{"event":{"start_time":"2025-03-14T09:30:00Z"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	assert.Equal(t, "2025-03-14", v.Draft.ScheduledDate)
	assert.Equal(t, "03:00 PM", v.Draft.ScheduledTime)
}

func TestHandlerRestartAndDiscard(t *testing.T) {
	h := NewHandler(newTestManager(nil), nil).Routes()
	id := decodeView(t, doJSON(t, h, http.MethodPost, "/?flow=long&service=mock-interview&mentor=1", "")).SessionID

	rec := doJSON(t, h, http.MethodPost, "/"+id+"/restart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	assert.Equal(t, 1, v.Step)
	assert.Nil(t, v.Draft.Service)

	rec = doJSON(t, h, http.MethodDelete, "/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSchedulingRelay(t *testing.T) {
	m := newTestManager(nil)
	srv := httptest.NewServer(NewHandler(m, nil).Routes())
	defer srv.Close()

	view, err := m.Start(context.Background(), FlowShort, "mock-interview", "2")
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/" + view.SessionID + "/scheduling/ws"
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	require.NoError(t, err)
	defer conn.Close()

	var msg RelayMessage
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	assert.Equal(t, "session", msg.Type)
	require.NotNil(t, msg.Session)
	assert.Equal(t, view.SessionID, msg.Session.SessionID)

	require.NoError(t, websocket.JSON.Send(conn, map[string]string{"type": "ping"}))
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	assert.Equal(t, "pong", msg.Type)

	require.NoError(t, websocket.JSON.Send(conn, map[string]string{"event": "calendly.date_and_time_selected"}))
	msg = RelayMessage{}
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	assert.Equal(t, "ignored", msg.Type)

	require.NoError(t, websocket.JSON.Send(conn, map[string]any{"event": "scheduled", "payload": map[string]any{}}))
	msg = RelayMessage{}
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	assert.Equal(t, "error", msg.Type)

	require.NoError(t, websocket.JSON.Send(conn, map[string]any{
		"event": "calendly.event_scheduled",
		"payload": map[string]any{
			"event": map[string]string{"start_time": "2025-03-14T06:30:00Z"},
		},
	}))
	msg = RelayMessage{}
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	assert.Equal(t, "session", msg.Type)
	require.NotNil(t, msg.Session)
	assert.Equal(t, "12:00 PM", msg.Session.Draft.ScheduledTime)
}

func TestSchedulingRelayUnknownSession(t *testing.T) {
	srv := httptest.NewServer(NewHandler(newTestManager(nil), nil).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/missing/scheduling/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
