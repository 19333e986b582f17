package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/GophReport/internal/auth"
	"github.com/atinyakov/GophReport/internal/models"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	registered  models.User
	registerErr error
	token       string
	loginErr    error
}

func (f *fakeAuthService) Register(ctx context.Context, email, name, password string) (models.User, error) {
	if f.registerErr != nil {
		return models.User{}, f.registerErr
	}
	f.registered = models.User{ID: 1, Email: email, Name: name, Role: models.RoleUser, Active: true}
	return f.registered, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return f.token, f.loginErr
}

// fakeUserService implements UserService for testing.
type fakeUserService struct {
	roleEmail   string
	role        models.Role
	deactivated []string
	err         error
}

func (f *fakeUserService) ChangeRole(ctx context.Context, email string, role models.Role) error {
	f.roleEmail, f.role = email, role
	return f.err
}

func (f *fakeUserService) Deactivate(ctx context.Context, email string) error {
	f.deactivated = append(f.deactivated, email)
	return f.err
}

// fakeComplaintService implements ComplaintService and records what it saw.
type fakeComplaintService struct {
	mu        sync.Mutex
	filter    *models.ComplaintFilter
	created   *models.Complaint
	owner     string
	updatedID int64
	deleted   []int64
	getErr    error
	err       error
}

func (f *fakeComplaintService) Create(ctx context.Context, owner string, c models.Complaint) (models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owner, f.created = owner, &c
	c.ID, c.OwnerEmail, c.Status = 10, owner, models.StatusOpen
	return c, f.err
}

func (f *fakeComplaintService) Get(ctx context.Context, id int64) (models.Complaint, error) {
	if f.getErr != nil {
		return models.Complaint{}, f.getErr
	}
	return models.Complaint{ID: id, OwnerEmail: "bob@example.com", Title: "Pothole", Status: models.StatusOpen}, nil
}

func (f *fakeComplaintService) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = &filter
	return []models.Complaint{}, f.err
}

func (f *fakeComplaintService) Update(ctx context.Context, id int64, changes models.Complaint) (models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatedID = id
	changes.ID = id
	return changes, f.err
}

func (f *fakeComplaintService) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeComplaintService) Export(ctx context.Context, filter models.ComplaintFilter, w io.Writer) error {
	f.mu.Lock()
	f.filter = &filter
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	_, err := fmt.Fprint(w, "id,owner,title\n")
	return err
}

type staticPolicy bool

func (p staticPolicy) CanMutate(ctx context.Context, resourceID int64) bool {
	return bool(p)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withPrincipal(r *http.Request, subject string, role models.Role) *http.Request {
	p := auth.Principal{Subject: subject, Roles: []models.Role{role}, Active: true}
	return r.WithContext(auth.ContextWithPrincipal(r.Context(), p))
}
