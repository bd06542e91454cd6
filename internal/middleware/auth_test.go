package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"school-fundraiser-platform/internal/models"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStudentRepo backs the auth middleware in tests
type mockStudentRepo struct {
	students map[int]*models.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[int]*models.Student)}
}

func (m *mockStudentRepo) GetByID(id int) (*models.Student, error) {
	if s, exists := m.students[id]; exists {
		return s, nil
	}
	return nil, models.ErrStudentNotFound
}

func (m *mockStudentRepo) GetByUserID(userID int) (*models.Student, error) {
	for _, s := range m.students {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, models.ErrStudentNotFound
}

func loggedInCookies(t *testing.T, store sessions.Store, userID int) []*http.Cookie {
	t.Helper()

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	session, err := store.Get(req, SessionName)
	require.NoError(t, err)
	session.Values["user_id"] = userID
	require.NoError(t, session.Save(req, rec))

	return rec.Result().Cookies()
}

func TestLoadStudentAddsStudentToContext(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-key"))
	students := newMockStudentRepo()
	students.students[3] = &models.Student{ID: 3, UserID: 42, FirstName: "Sam", LastName: "Okafor"}

	m := NewAuthMiddleware(students, store)

	var loaded *models.Student
	handler := m.LoadStudent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loaded = GetStudentFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	for _, cookie := range loggedInCookies(t, store, 42) {
		req.AddCookie(cookie)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, loaded)
	assert.Equal(t, 3, loaded.ID)
}

func TestLoadStudentAnonymousRequest(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-key"))
	m := NewAuthMiddleware(newMockStudentRepo(), store)

	var loaded *models.Student
	handler := m.LoadStudent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loaded = GetStudentFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	assert.Nil(t, loaded)
}

func TestLoadStudentStaleSession(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-key"))
	m := NewAuthMiddleware(newMockStudentRepo(), store)

	var loaded *models.Student
	called := false
	handler := m.LoadStudent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		loaded = GetStudentFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	for _, cookie := range loggedInCookies(t, store, 99) { // no student for this user
		req.AddCookie(cookie)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
	assert.Nil(t, loaded)
}

func TestLoadStudentStaleSessionKeepsCart(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-key"))
	m := NewAuthMiddleware(newMockStudentRepo(), store)

	// Session carries both a login and other state (the anonymous cart
	// lives in the same cookie)
	seedReq := httptest.NewRequest("GET", "/", nil)
	seedRec := httptest.NewRecorder()
	session, err := store.Get(seedReq, SessionName)
	require.NoError(t, err)
	session.Values["user_id"] = 99 // no student exists for this user
	session.Values["cart_marker"] = "still-here"
	require.NoError(t, session.Save(seedReq, seedRec))

	handler := m.LoadStudent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/", nil)
	for _, cookie := range seedRec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// The re-saved session drops the stale login but nothing else
	verifyReq := httptest.NewRequest("GET", "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		require.NotEqual(t, -1, cookie.MaxAge, "session cookie must not be expired")
		verifyReq.AddCookie(cookie)
	}
	saved, err := store.Get(verifyReq, SessionName)
	require.NoError(t, err)

	_, hasLogin := saved.Values["user_id"]
	assert.False(t, hasLogin)
	assert.Equal(t, "still-here", saved.Values["cart_marker"])
}

func TestRequireStudentRejectsAnonymous(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-key"))
	m := NewAuthMiddleware(newMockStudentRepo(), store)

	called := false
	handler := m.RequireStudent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireStudentAllowsAuthenticated(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-key"))
	students := newMockStudentRepo()
	students.students[3] = &models.Student{ID: 3, UserID: 42}
	m := NewAuthMiddleware(students, store)

	called := false
	handler := m.LoadStudent(m.RequireStudent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})))

	req := httptest.NewRequest("GET", "/", nil)
	for _, cookie := range loggedInCookies(t, store, 42) {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
