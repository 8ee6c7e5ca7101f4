package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"keepers-ledger/internal/db"
)

func TestHealthz(t *testing.T) {
	router, _ := newTestServer(t)
	rec := doJSON(t, router, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	router, _ := newTestServer(t)
	rec := doJSON(t, router, http.MethodGet, "/api/campaigns", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list = %d, want 401", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/campaigns", "not-a-jwt", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token list = %d, want 401", rec.Code)
	}
}

func TestCampaignJoinFlow(t *testing.T) {
	router, conn := newTestServer(t)
	gm := bearerToken(t, "gm@x.test", "GM")
	p1 := bearerToken(t, "p1@x.test", "Alex")

	rec := doJSON(t, router, http.MethodPost, "/api/campaigns", gm, `{"name":"Masks of Nyarlathotep"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create campaign = %d: %s", rec.Code, rec.Body.String())
	}
	var campaign db.Campaign
	if err := json.Unmarshal(rec.Body.Bytes(), &campaign); err != nil {
		t.Fatalf("decode campaign: %v", err)
	}
	if campaign.Status != db.CampaignPlanning {
		t.Fatalf("campaign status = %q, want planning", campaign.Status)
	}

	joinPath := fmt.Sprintf("/api/campaigns/%d/join", campaign.ID)
	rec = doJSON(t, router, http.MethodPost, joinPath, p1, `{"display_name":"Alex"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("join = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/campaigns", p1, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list campaigns = %d", rec.Code)
	}
	var listResp struct {
		Campaigns []db.Campaign `json:"campaigns"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listResp.Campaigns) != 1 || listResp.Campaigns[0].ID != campaign.ID {
		t.Fatalf("player campaigns = %#v", listResp.Campaigns)
	}

	// Re-joining is a soft success, not a conflict.
	rec = doJSON(t, router, http.MethodPost, joinPath, p1, `{"display_name":"Alex"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("re-join = %d: %s", rec.Code, rec.Body.String())
	}
	var joinResp struct {
		AlreadyMember bool `json:"already_member"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &joinResp); err != nil {
		t.Fatalf("decode join: %v", err)
	}
	if !joinResp.AlreadyMember {
		t.Fatal("re-join did not report already_member")
	}

	var count int64
	conn.Model(&db.CampaignPlayer{}).Where("campaign_id = ?", campaign.ID).Count(&count)
	if count != 1 {
		t.Fatalf("membership count = %d, want 1", count)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/campaigns/9999/join", p1, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("join missing campaign = %d, want 404", rec.Code)
	}
}

func TestCharacterActivationFlow(t *testing.T) {
	router, _ := newTestServer(t)
	gm := bearerToken(t, "gm@x.test", "GM")
	p1 := bearerToken(t, "p1@x.test", "Alex")

	rec := doJSON(t, router, http.MethodPost, "/api/campaigns", gm, `{"name":"The Haunting"}`)
	var campaign db.Campaign
	if err := json.Unmarshal(rec.Body.Bytes(), &campaign); err != nil {
		t.Fatalf("decode campaign: %v", err)
	}
	doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/campaigns/%d/join", campaign.ID), p1, "")

	charPath := fmt.Sprintf("/api/campaigns/%d/characters", campaign.ID)
	rec = doJSON(t, router, http.MethodPost, charPath, p1, `{"name":"Jane","sheet":{"str":65,"pow":50}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create character = %d: %s", rec.Code, rec.Body.String())
	}
	var jane db.Character
	if err := json.Unmarshal(rec.Body.Bytes(), &jane); err != nil {
		t.Fatalf("decode character: %v", err)
	}
	rec = doJSON(t, router, http.MethodPost, charPath, p1, `{"name":"Bob"}`)
	var bob db.Character
	if err := json.Unmarshal(rec.Body.Bytes(), &bob); err != nil {
		t.Fatalf("decode character: %v", err)
	}

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/characters/%d/activate", jane.ID), p1, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("activate Jane = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/characters/%d/activate", bob.ID), p1, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("activate Bob = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, charPath, p1, "")
	var listResp struct {
		Characters []db.Character `json:"characters"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode characters: %v", err)
	}
	active := 0
	for _, ch := range listResp.Characters {
		if ch.Status == db.CharacterActive {
			active++
			if ch.Name != "Bob" {
				t.Fatalf("active character = %q, want Bob", ch.Name)
			}
		}
	}
	if active != 1 {
		t.Fatalf("active count = %d, want 1", active)
	}

	// Another player cannot activate Bob.
	p2 := bearerToken(t, "p2@x.test", "Morgan")
	doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/campaigns/%d/join", campaign.ID), p2, "")
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/characters/%d/activate", bob.ID), p2, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("foreign activate = %d, want 409", rec.Code)
	}
}

func TestCatalogRoutes(t *testing.T) {
	router, conn := newTestServer(t)
	admin := bearerToken(t, "admin@x.test", "Admin")
	player := bearerToken(t, "p1@x.test", "Alex")
	promoteToAdmin(t, conn, "admin@x.test")

	body := `{"name":".38 Revolver","category":"handgun","skill":"Firearms (Handgun)","damage":"1D10"}`
	rec := doJSON(t, router, http.MethodPost, "/api/weapons", player, body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("player catalog write = %d, want 403", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/api/weapons", "", body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous catalog write = %d, want 401", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/weapons", admin, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin catalog write = %d: %s", rec.Code, rec.Body.String())
	}
	var weapon db.Weapon
	if err := json.Unmarshal(rec.Body.Bytes(), &weapon); err != nil {
		t.Fatalf("decode weapon: %v", err)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/weapons", admin, body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate name = %d, want 409", rec.Code)
	}

	// Reads are public and reflect the write immediately.
	rec = doJSON(t, router, http.MethodGet, "/api/weapons?category=handgun", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("public list = %d", rec.Code)
	}
	var listResp struct {
		Items []db.Weapon `json:"items"`
		Total int64       `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listResp.Total != 1 || len(listResp.Items) != 1 {
		t.Fatalf("list = %#v", listResp)
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/weapons/%d", weapon.ID), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("public get = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/weapons/%d", weapon.ID), admin, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/weapons/%d", weapon.ID), "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", rec.Code)
	}
}

func TestSessionCookieFallback(t *testing.T) {
	router, _ := newTestServer(t)
	p1 := bearerToken(t, "p1@x.test", "Alex")

	rec := doJSON(t, router, http.MethodGet, "/api/me", p1, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me with token = %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie issued")
	}

	req := doJSONWithCookies(t, router, http.MethodGet, "/api/me", cookies)
	if req.Code != http.StatusOK {
		t.Fatalf("me with cookie only = %d, want 200", req.Code)
	}
	var user db.User
	if err := json.Unmarshal(req.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Email != "p1@x.test" {
		t.Fatalf("cookie session resolved %q", user.Email)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	router, _ := newTestServer(t)
	p1 := bearerToken(t, "p1@x.test", "Alex")

	rec := doJSON(t, router, http.MethodGet, "/api/me", p1, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me with token = %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie issued")
	}

	rec = doJSONWithCookies(t, router, http.MethodPost, "/api/logout", cookies)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout = %d, want 204", rec.Code)
	}
	expired := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "kl_session" && cookie.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Fatal("logout did not expire the session cookie")
	}

	// The server-side session row is gone; the old cookie no longer
	// authenticates even if the client replays it.
	rec = doJSONWithCookies(t, router, http.MethodGet, "/api/me", cookies)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d, want 401", rec.Code)
	}
}
