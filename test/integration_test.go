package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/biokuam/portal/internal/events"
)

func postJSON(t *testing.T, url, body string, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// TestHealthEndpoint verifies the liveness endpoint
func TestHealthEndpoint(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL() + "/healthz")
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	defer resp.Body.Close()

	AssertStatusCode(t, resp, http.StatusOK)
}

// TestReadinessEndpoint verifies the readiness endpoint
func TestReadinessEndpoint(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL() + "/readyz")
	if err != nil {
		t.Fatalf("Readiness check failed: %v", err)
	}
	AssertStatusCode(t, resp, http.StatusOK)

	var body map[string]any
	decode(t, resp, &body)
	if body["status"] != "ready" {
		t.Errorf("Expected ready, got %v", body["status"])
	}
}

// TestRegistrationFlow walks the register -> login -> finca -> listing path
func TestRegistrationFlow(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	// 1. Register an account
	resp := postJSON(t, server.URL()+"/api/registro", `{
		"nombre": "Ana Torres",
		"celular": "3001234567",
		"correo": "ana@example.com",
		"tipoDoc": "CC",
		"numDoc": "1010101010",
		"contrasena": "Password123"
	}`, nil)
	AssertStatusCode(t, resp, http.StatusOK)
	var reg struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		Usuario struct {
			ID string `json:"id"`
		} `json:"usuario"`
	}
	decode(t, resp, &reg)
	if !reg.Success || reg.Token == "" || reg.Usuario.ID == "" {
		t.Fatalf("unexpected register response %+v", reg)
	}

	// 2. Login with the same credentials
	resp = postJSON(t, server.URL()+"/api/login",
		`{"correo":"ana@example.com","contrasena":"Password123"}`, nil)
	AssertStatusCode(t, resp, http.StatusOK)
	var login struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	decode(t, resp, &login)
	if !login.Success || login.Message != "Login exitoso" || login.Token == "" {
		t.Fatalf("unexpected login response %+v", login)
	}

	// 3. Register a finca with the bearer token
	resp = postJSON(t, server.URL()+"/api/registro-finca", `{
		"nombre_finca": "La Esperanza",
		"vereda": "El Pantano",
		"hectareas": 2.5,
		"fecha_cultivo": "2026-03-01",
		"dificultades": "heladas"
	}`, map[string]string{"Authorization": "Bearer " + login.Token})
	AssertStatusCode(t, resp, http.StatusOK)
	var finca struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Archivo string `json:"archivo"`
		ID      string `json:"id"`
	}
	decode(t, resp, &finca)
	if !finca.Success || finca.Message != "FINCA registrado" {
		t.Fatalf("unexpected finca response %+v", finca)
	}
	if finca.Archivo != "fincas.txt" || !strings.HasPrefix(finca.ID, "FINCA_") {
		t.Fatalf("unexpected record reference %+v", finca)
	}

	// 4. The listing shows the caller's finca
	req, _ := http.NewRequest(http.MethodGet, server.URL()+"/api/fincas", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	listResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list request failed: %v", err)
	}
	AssertStatusCode(t, listResp, http.StatusOK)
	var farms []map[string]any
	decode(t, listResp, &farms)
	if len(farms) != 1 || farms[0]["usuario_id"] != reg.Usuario.ID {
		t.Fatalf("unexpected farm listing %v", farms)
	}
}

// TestProtectedRoutesRequireToken verifies the bearer contract
func TestProtectedRoutesRequireToken(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	for _, path := range []string{"/api/fincas", "/api/barcos"} {
		resp, err := http.Get(server.URL() + path)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		AssertStatusCode(t, resp, http.StatusUnauthorized)
		var body map[string]any
		decode(t, resp, &body)
		if body["message"] != "Token requerido" {
			t.Errorf("%s: expected Token requerido, got %v", path, body["message"])
		}
	}

	// A malformed token is rejected with a different message.
	req, _ := http.NewRequest(http.MethodGet, server.URL()+"/api/fincas", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	AssertStatusCode(t, resp, http.StatusUnauthorized)
	var body map[string]any
	decode(t, resp, &body)
	if body["message"] != "Token inválido" {
		t.Errorf("expected Token inválido, got %v", body["message"])
	}
}

// TestVesselRegistrationFlow verifies barco registration and IMEI uniqueness
func TestVesselRegistrationFlow(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	resp := postJSON(t, server.URL()+"/api/registro", `{
		"nombre": "Luis Rojas",
		"correo": "luis@example.com",
		"tipoDoc": "CC",
		"numDoc": "2020202020",
		"contrasena": "Password123"
	}`, nil)
	AssertStatusCode(t, resp, http.StatusOK)
	var reg struct {
		Token string `json:"token"`
	}
	decode(t, resp, &reg)

	vesselBody := `{
		"nombre_barco": "Sonda Norte",
		"imei_barco": "356938035643809",
		"funcionalidades": ["ph", "temperatura"],
		"correo": "luis@example.com"
	}`
	authHeader := map[string]string{"Authorization": "Bearer " + reg.Token}

	resp = postJSON(t, server.URL()+"/api/registro-barco", vesselBody, authHeader)
	AssertStatusCode(t, resp, http.StatusOK)
	var vessel struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Archivo string `json:"archivo"`
	}
	decode(t, resp, &vessel)
	if !vessel.Success || vessel.Message != "BARCO registrado" || vessel.Archivo != "barcos.txt" {
		t.Fatalf("unexpected vessel response %+v", vessel)
	}

	// Same IMEI again conflicts
	resp = postJSON(t, server.URL()+"/api/registro-barco", vesselBody, authHeader)
	AssertStatusCode(t, resp, http.StatusConflict)
	var conflict map[string]any
	decode(t, resp, &conflict)
	if conflict["message"] != "IMEI ya registrado" {
		t.Fatalf("unexpected conflict message %v", conflict["message"])
	}
}

// TestStaticFallback verifies unmatched routes fall through to static files
func TestStaticFallback(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL() + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)

	resp, err = http.Get(server.URL() + "/no-such-page.html")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusNotFound)
}

// TestEventStream verifies the websocket delivers registration events
func TestEventStream(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	resp := postJSON(t, server.URL()+"/api/registro", `{
		"nombre": "Ana Torres",
		"correo": "ana@example.com",
		"tipoDoc": "CC",
		"numDoc": "1010101010",
		"contrasena": "Password123"
	}`, nil)
	AssertStatusCode(t, resp, http.StatusOK)
	var reg struct {
		Token string `json:"token"`
	}
	decode(t, resp, &reg)

	wsURL := "ws" + strings.TrimPrefix(server.URL(), "http") + "/ws/eventos?token=" + reg.Token
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer ws.Close()

	server.Hub.Publish(events.Event{Tipo: "finca", ID: "FINCA_1", Fecha: "2026-08-30T10:00:00Z"})

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev struct {
		Tipo string `json:"tipo"`
		ID   string `json:"id"`
	}
	if err := ws.ReadJSON(&ev); err != nil {
		t.Fatalf("read event failed: %v", err)
	}
	if ev.Tipo != "finca" || ev.ID != "FINCA_1" {
		t.Fatalf("unexpected event %+v", ev)
	}
}
