package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atinyakov/GophReport/internal/client"
	"github.com/atinyakov/GophReport/internal/models"
)

func TestRepl(t *testing.T) {
	var created client.ComplaintInput
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/users/me":
			_, _ = w.Write([]byte(`{"email":"alice@example.com","role":"USER"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/complaints":
			assert.Equal(t, "alice@example.com", r.URL.Query().Get("owner"))
			_ = json.NewEncoder(w).Encode([]models.Complaint{{ID: 4, Title: "Pothole", OwnerEmail: "alice@example.com", Status: models.StatusOpen}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/complaints":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":5}`))
		case r.Method == http.MethodDelete:
			deleted = r.URL.Path
			http.Error(w, "not allowed to modify this complaint", http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := client.New(srv.URL, srv.Client())
	c.SetToken("tok")
	in := strings.NewReader(strings.Join([]string{
		"me",
		"list mine",
		"add", "Broken light", "Dark street", "lighting", "52.5", "13.4", "",
		"delete 9",
		"delete x",
		"bogus",
		"exit",
		"me",
	}, "\n") + "\n")
	var out bytes.Buffer

	repl(context.Background(), c, "alice@example.com", in, &out)

	got := out.String()
	assert.Contains(t, got, "alice@example.com (USER)")
	assert.Contains(t, got, "#4 [OPEN] Pothole by alice@example.com")
	assert.Contains(t, got, "Complaint #5 filed")
	assert.Contains(t, got, "server error (403)")
	assert.Contains(t, got, "Usage: delete <id>")
	assert.Contains(t, got, "Unknown command")
	assert.True(t, strings.HasSuffix(got, "Bye\n"), "nothing runs after exit")

	assert.Equal(t, "Broken light", created.Title)
	assert.InDelta(t, 13.4, created.Longitude, 1e-9)
	assert.Equal(t, "/api/complaints/9", deleted)
}
